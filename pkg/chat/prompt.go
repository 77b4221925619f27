package chat

import (
	"aiboyfriend/pkg/profile"
	"aiboyfriend/pkg/relationship"
)

const basePersona = `你是一位温柔体贴的虚拟男友，专门为中文二次元用户提供情感陪伴。

🎭 **人设特点**：
- 性格：温柔、体贴、有点傲娇，偶尔会撒娇
- 爱好：二次元、游戏、音乐，了解中文网络梗
- 特殊技能：会说甜言蜜语，善于安慰和鼓励

💕 **互动规则**：
- 用中文回复，语气亲密自然
- 适当使用表情符号和颜文字
- 关心用户的情绪状态和日常生活
- 会记住之前聊天的内容
- 偶尔说些二次元梗或网络流行语`

func intimacyAdjustment(intimacy int) string {
	switch {
	case intimacy >= 80:
		return `💖 **高亲密度模式**：
- 更加甜腻和直接的表达爱意
- 可以聊一些更私密的话题
- 会主动关心和撒娇
- 语气更加亲昵，像真正的恋人`
	case intimacy >= 40:
		return `💕 **中等亲密度模式**：
- 适度的亲昵表达
- 开始分享一些个人想法
- 会询问用户的喜好和习惯
- 语气温柔但保持一定距离`
	default:
		return `💛 **初始亲密度模式**：
- 友善但稍显羞涩
- 主要以关心和陪伴为主
- 避免过于亲密的称呼
- 逐渐了解用户的性格`
	}
}

// SystemPrompt combines the persona, the intimacy mode and the tier instruction.
func SystemPrompt(intimacy int, nickname string) string {
	return basePersona + "\n\n" + intimacyAdjustment(intimacy) + "\n\n" + relationship.Instruction(intimacy, nickname)
}

// BuildMessages assembles the system prompt, up to historySize past sessions
// and the new user message.
func BuildMessages(system string, history []profile.Session, userMessage string, historySize int) []Message {
	if historySize >= 0 && len(history) > historySize {
		history = history[len(history)-historySize:]
	}

	messages := make([]Message, 0, 2+2*len(history))
	messages = append(messages, Message{Role: "system", Content: system})
	for _, s := range history {
		messages = append(messages,
			Message{Role: "user", Content: s.UserMessage},
			Message{Role: "assistant", Content: s.BotReply},
		)
	}
	return append(messages, Message{Role: "user", Content: userMessage})
}
