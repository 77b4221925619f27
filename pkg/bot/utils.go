package bot

import (
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLength is Discord's limit for a single message.
const maxMessageLength = 2000

func (h *Handler) sendSplitMessage(s Session, channelID, content string, reference *discordgo.MessageReference) {
	isFirstPart := true
	for _, part := range splitMessage(content, maxMessageLength) {
		var err error
		if reference == nil {
			_, err = s.ChannelMessageSend(channelID, part)
		} else if isFirstPart {
			// The first part of a reply pings the user by default
			_, err = s.ChannelMessageSendReply(channelID, part, reference)
			isFirstPart = false
		} else {
			_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
				Content:   part,
				Reference: reference,
				AllowedMentions: &discordgo.MessageAllowedMentions{
					RepliedUser: false,
				},
			})
		}

		if err != nil {
			log.Printf("Error sending message part: %v", err)
		}
	}
}

// splitMessage breaks content into chunks of at most limit runes, preferring
// paragraph and then line boundaries.
func splitMessage(content string, limit int) []string {
	content = strings.TrimSpace(content)
	var parts []string

	for utf8.RuneCountInString(content) > limit {
		cut := byteOffset(content, limit)
		head := content[:cut]

		if i := strings.LastIndex(head, "\n\n"); i > 0 {
			cut = i
		} else if i := strings.LastIndex(head, "\n"); i > 0 {
			cut = i
		}

		if part := strings.TrimSpace(content[:cut]); part != "" {
			parts = append(parts, part)
		}
		content = strings.TrimSpace(content[cut:])
	}

	if content != "" {
		parts = append(parts, content)
	}
	return parts
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	i := 0
	for n > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n--
	}
	return i
}

// userLocks serialises message handling per user.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// lock blocks until userID is free and returns the matching unlock.
func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()

	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func (l *userLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
