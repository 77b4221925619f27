package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

const statusText = "和小可爱们聊天 💕"

// SetStatus publishes the bot's custom status.
func SetStatus(s Session) {
	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{
			{
				Name:  "Custom Status",
				Type:  discordgo.ActivityTypeCustom,
				State: statusText,
				Emoji: discordgo.Emoji{Name: "💕"},
			},
		},
		Status: "online",
	})
	if err != nil {
		log.Printf("Error setting custom status: %v", err)
	}
}
