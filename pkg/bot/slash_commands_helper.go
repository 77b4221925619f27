package bot

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var errNoInteractionUser = errors.New("could not determine user from interaction")

// getUserFromInteraction returns the invoking user's ID and display name for
// both guild (Member) and DM (User) interactions.
func getUserFromInteraction(i *discordgo.InteractionCreate) (string, string, error) {
	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user == nil {
		return "", "", errNoInteractionUser
	}
	return user.ID, displayName(user), nil
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
