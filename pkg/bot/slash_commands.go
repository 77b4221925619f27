package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"aiboyfriend/pkg/cooldown"
	"aiboyfriend/pkg/profile"
	"aiboyfriend/pkg/relationship"
)

const (
	commandTimeout   = 10 * time.Second
	leaderboardLimit = 10
	embedColor       = 0xFF69B4
)

// SlashCommands defines all available slash commands
var SlashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "stats",
		Description: "查看你的个人数据 - 亲密度、DOL余额等",
	},
	{
		Name:        "leaderboard",
		Description: "查看亲密度排行榜",
	},
	{
		Name:        "help",
		Description: "查看使用帮助和功能介绍",
	},
}

// SlashCommandHandlers maps command names to their handler functions
var SlashCommandHandlers = map[string]func(ctx context.Context, h *Handler, s Session, i *discordgo.InteractionCreate){
	"stats":       handleStatsCommand,
	"leaderboard": handleLeaderboardCommand,
	"help":        handleHelpCommand,
}

func handleStatsCommand(ctx context.Context, h *Handler, s Session, i *discordgo.InteractionCreate) {
	userID, userName, err := getUserFromInteraction(i)
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	p, err := h.store.Get(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		respondText(s, i, "❌ 找不到你的数据，请先发送一条消息给我！", true)
		return
	}
	if err != nil {
		log.Printf("Error loading profile for stats: %v", err)
		respondText(s, i, "❌ 获取数据时出现错误，请稍后再试！", true)
		return
	}

	var status cooldown.Status
	if h.gate != nil {
		if status, err = h.gate.Status(ctx, userID, p.LastRewardAt); err != nil {
			log.Printf("Error loading cooldown status: %v", err)
		}
	}

	respondEmbed(s, i, statsEmbed(userName, p, status))
}

func handleLeaderboardCommand(ctx context.Context, h *Handler, s Session, i *discordgo.InteractionCreate) {
	top, err := h.store.Leaderboard(ctx, leaderboardLimit)
	if err != nil {
		log.Printf("Error loading leaderboard: %v", err)
		respondText(s, i, "❌ 获取排行榜时出现错误，请稍后再试！", true)
		return
	}
	respondEmbed(s, i, leaderboardEmbed(top))
}

func handleHelpCommand(ctx context.Context, h *Handler, s Session, i *discordgo.InteractionCreate) {
	respondEmbed(s, i, helpEmbed(h.opts.CostPerMessage))
}

func statsEmbed(userName string, p profile.Profile, status cooldown.Status) *discordgo.MessageEmbed {
	tier := relationship.GetTier(p.Intimacy)

	nextLevel := "已达到最高等级 👑"
	if next, needed := relationship.NextLevel(p.Intimacy); next != nil {
		nextLevel = fmt.Sprintf("%s %s (还需 %d 点)", next.Emoji, next.LocalName, needed)
	}

	rewardState := "✅ 可以获得完整亲密度"
	if status.InCooldown {
		rewardState = fmt.Sprintf("⏳ 冷却中 (剩余 %s，奖励 ×%.1f)", status.Remaining.Round(time.Second), status.ReductionFactor)
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("💕 %s 的恋爱档案", userName),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "❤️ 亲密度",
				Value:  fmt.Sprintf("%d 点\n%s %s\n%s", p.Intimacy, tier.Emoji, tier.LocalName, relationship.ProgressBar(p.Intimacy)),
				Inline: true,
			},
			{
				Name:   "💎 DOL余额",
				Value:  fmt.Sprintf("%d DOL", p.DOL),
				Inline: true,
			},
			{
				Name:   "📊 聊天统计",
				Value:  fmt.Sprintf("消息数: %d", p.TotalMessages),
				Inline: true,
			},
			{
				Name:  "🎯 下一阶段",
				Value: nextLevel,
			},
			{
				Name:  "🕒 亲密度奖励",
				Value: rewardState,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "继续和我聊天来提升亲密度吧~ 💖"},
	}
}

func leaderboardEmbed(top []profile.Profile) *discordgo.MessageEmbed {
	var sb strings.Builder
	if len(top) == 0 {
		sb.WriteString("_还没有人上榜，快来和我聊天吧！_")
	}
	for rank, p := range top {
		tier := relationship.GetTier(p.Intimacy)
		fmt.Fprintf(&sb, "**%d.** <@%s> %s %s · %d\n", rank+1, p.UserID, tier.Emoji, tier.LocalName, p.Intimacy)
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 亲密度排行榜",
		Color:       embedColor,
		Description: strings.TrimRight(sb.String(), "\n"),
	}
}

func helpEmbed(cost int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "📖 使用帮助 - AI男友使用指南",
		Description: "欢迎使用AI男友！这里是完整的使用指南 💕",
		Color:       0x9932CC,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "💬 聊天功能",
				Value: fmt.Sprintf("• 直接发消息和我聊天\n• 每条消息消耗%d DOL\n• 我会记住我们的对话历史\n• 情感化的对话会增加亲密度", cost),
			},
			{
				Name:  "📊 斜杠命令",
				Value: "• `/stats` - 查看个人数据\n• `/leaderboard` - 查看亲密度排行榜\n• `/help` - 查看帮助",
			},
			{
				Name:  "💖 亲密度系统",
				Value: "• 通过温馨的对话提升亲密度\n• 亲密度越高，我的回复越甜蜜\n• 短时间内连续获得亲密度会减半",
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "有任何问题都可以直接问我哦~ 💕"},
	}
}

func respondText(s Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	respond(s, i, data)
}

func respondEmbed(s Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	respond(s, i, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

func respond(s Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// InteractionCreate handles all slash command interactions
func (h *Handler) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.HandleInteraction(&DiscordSession{s}, i)
}

func (h *Handler) HandleInteraction(s Session, i *discordgo.InteractionCreate) {
	// Only handle application commands (slash commands)
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	commandName := i.ApplicationCommandData().Name

	handler, ok := SlashCommandHandlers[commandName]
	if !ok {
		log.Printf("Unknown slash command: %s", commandName)
		respondText(s, i, "❌ 未知命令！使用 `/help` 查看所有可用命令。", true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	handler(ctx, h, s, i)
}

// RegisterSlashCommands registers all slash commands with Discord
func RegisterSlashCommands(s *discordgo.Session, guildID string) ([]*discordgo.ApplicationCommand, error) {
	log.Println("Registering slash commands...")

	registeredCommands := make([]*discordgo.ApplicationCommand, len(SlashCommands))

	for i, cmd := range SlashCommands {
		// Register globally (guildID = "") or for a specific guild
		registeredCmd, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			log.Printf("Cannot create '%s' command: %v", cmd.Name, err)
			return nil, err
		}
		registeredCommands[i] = registeredCmd
		log.Printf("Registered command: %s", cmd.Name)
	}

	return registeredCommands, nil
}

// UnregisterSlashCommands removes all registered slash commands
func UnregisterSlashCommands(s *discordgo.Session, guildID string, commands []*discordgo.ApplicationCommand) error {
	log.Println("Unregistering slash commands...")

	for _, cmd := range commands {
		err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID)
		if err != nil {
			log.Printf("Cannot delete '%s' command: %v", cmd.Name, err)
			return err
		}
		log.Printf("Unregistered command: %s", cmd.Name)
	}

	return nil
}
