package bot

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"aiboyfriend/pkg/chat"
	"aiboyfriend/pkg/config"
	"aiboyfriend/pkg/cooldown"
	"aiboyfriend/pkg/emotion"
	"aiboyfriend/pkg/pipeline"
	"aiboyfriend/pkg/profile"
	"aiboyfriend/pkg/relationship"
	"aiboyfriend/pkg/reward"
)

// EventMessageSent is logged once per handled chat message.
const EventMessageSent = "message_sent"

// Options tune the message flow.
type Options struct {
	CostPerMessage int
	HistorySize    int
	MessageTimeout time.Duration
	// ProgressHintChance is the probability of appending the intimacy total
	// to a rewarded reply.
	ProgressHintChance float64
	// OccasionalNicknameChance is the probability of drawing from the tier's
	// occasional nicknames as well.
	OccasionalNicknameChance float64
}

func OptionsFromConfig(c *config.Config) Options {
	return Options{
		CostPerMessage:           c.DOL.CostPerMessage,
		HistorySize:              c.Chat.HistorySize,
		MessageTimeout:           c.ChatTimeout()*time.Duration(max(len(c.Chat.Providers), 1)) + c.EmotionTimeout(),
		ProgressHintChance:       0.1,
		OccasionalNicknameChance: 0.3,
	}
}

type Handler struct {
	store    profile.Store
	pipeline *pipeline.Pipeline
	chat     ChatClient
	gate     *cooldown.Gate
	opts     Options
	botID    string
	users    *userLocks
	rand     func() float64
}

func NewHandler(store profile.Store, p *pipeline.Pipeline, c ChatClient, gate *cooldown.Gate, opts Options) *Handler {
	if opts.MessageTimeout <= 0 {
		opts.MessageTimeout = 2 * time.Minute
	}
	return &Handler{
		store:    store,
		pipeline: p,
		chat:     c,
		gate:     gate,
		opts:     opts,
		users:    newUserLocks(),
		rand:     rand.Float64,
	}
}

func (h *Handler) SetBotID(id string) {
	h.botID = id
}

func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.HandleMessage(&DiscordSession{s}, m)
}

func (h *Handler) HandleMessage(s Session, m *discordgo.MessageCreate) {
	// Ignore bots, including ourselves
	if m.Author == nil || m.Author.Bot || m.Author.ID == h.botID {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	// Turns for the same user must not interleave: the cooldown check and
	// the reward write have to happen as one unit.
	unlock := h.users.lock(m.Author.ID)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.MessageTimeout)
	defer cancel()

	replies, err := h.handleTurn(ctx, s, m.ChannelID, m.Author.ID, content)
	if err != nil {
		log.Printf("Error handling message from %s: %v", m.Author.ID, err)
		replies = []string{chat.ErrorMessage()}
	}

	for _, reply := range replies {
		h.sendSplitMessage(s, m.ChannelID, reply, m.Reference())
	}
}

// handleTurn runs one chat turn and returns the messages to send back.
func (h *Handler) handleTurn(ctx context.Context, s Session, channelID, userID, content string) ([]string, error) {
	p, created, err := h.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if created {
		log.Printf("New user %s joined group %s with %d DOL", userID, p.Group, p.DOL)
		return []string{chat.WelcomeMessage()}, nil
	}

	cost := h.opts.CostPerMessage
	if p.DOL < cost {
		return []string{chat.InsufficientDOLMessage(p.DOL, cost)}, nil
	}

	if err := s.ChannelTyping(channelID); err != nil {
		log.Printf("Error sending typing indicator: %v", err)
	}

	history, err := h.store.RecentSessions(ctx, userID, h.opts.HistorySize)
	if err != nil {
		log.Printf("Error loading chat history for %s: %v", userID, err)
	}

	nickname := relationship.GetNickname(p.Intimacy, h.rand() < h.opts.OccasionalNicknameChance)
	messages := chat.BuildMessages(chat.SystemPrompt(p.Intimacy, nickname), history, content, h.opts.HistorySize)

	reply, err := h.chat.Generate(ctx, messages, p.Intimacy)
	if err != nil {
		log.Printf("Reply generation failed for %s, sending fallback: %v", userID, err)
	}

	res, err := h.pipeline.Process(ctx, content, reply.Tokens, pipeline.UserState{
		UserID:         userID,
		IntimacyPoints: p.Intimacy,
		Group:          p.Group,
		LastRewardAt:   p.LastRewardAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to score message: %w", err)
	}

	updated, err := h.store.ApplyTurn(ctx, userID, profile.Turn{
		DOLDelta:      -cost,
		IntimacyDelta: res.IntimacyDelta,
		RewardedAt:    res.RewardedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply turn: %w", err)
	}

	h.record(ctx, userID, p.Group, content, reply, res)

	text := reply.Content
	switch {
	case res.ThresholdReached:
		text += fmt.Sprintf("\n\n%s 感受到你满满的爱意！亲密度 +%d", emotion.Emoji(res.Emotion, float64(res.HETValue)), res.IntimacyDelta)
	case res.IntimacyDelta > 0 && h.rand() < h.opts.ProgressHintChance:
		text += fmt.Sprintf("\n\n💕 亲密度: %d (+%d)", updated.Intimacy, res.IntimacyDelta)
	}

	replies := []string{text}

	if change := relationship.CheckLevelUp(p.Intimacy, updated.Intimacy); change.LeveledUp {
		log.Printf("User %s leveled up: %s -> %s", userID, change.Old.Name, change.New.Name)
		replies = append(replies, relationship.LevelUpMessage(change.New, relationship.GetNickname(updated.Intimacy, false)))
	}

	if res.ThresholdReached && res.HETValue >= reward.MaxHET {
		replies = append(replies, chat.HighEmotionMessage())
	}

	return replies, nil
}

// record persists the session and the analytics event. Failures are logged;
// the turn itself has already been applied.
func (h *Handler) record(ctx context.Context, userID string, group reward.Group, content string, reply chat.Reply, res pipeline.Result) {
	err := h.store.SaveSession(ctx, profile.Session{
		UserID:       userID,
		UserMessage:  content,
		BotReply:     reply.Content,
		Tokens:       reply.Tokens,
		HET:          res.HETValue,
		EmotionScore: res.EmotionScore,
	})
	if err != nil {
		log.Printf("Error saving session for %s: %v", userID, err)
	}

	err = h.store.LogEvent(ctx, profile.Event{
		UserID: userID,
		Type:   EventMessageSent,
		Group:  group,
		Data: map[string]interface{}{
			"het":               res.HETValue,
			"intimacy_gain":     res.IntimacyDelta,
			"threshold_reached": res.ThresholdReached,
			"tokens":            reply.Tokens,
			"emotion_source":    string(res.Emotion.Source),
			"in_cooldown":       res.InCooldown,
			"fallback_reply":    reply.Fallback,
		},
	})
	if err != nil {
		log.Printf("Error logging event for %s: %v", userID, err)
	}
}
