package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

const (
	defaultOpenAIChatModel   = "gpt-4o-mini"
	defaultDeepSeekChatModel = "deepseek-chat"
	defaultChatMaxTokens     = 400
	defaultChatTemperature   = 0.7
	maxChatMessageRuneCount  = 2000
	maxChatAttempts          = 3
	recentMoodContextLimit   = 5
)

const defaultMoodChatSystemPrompt = "你是一位温和的校园心理陪伴助手。倾听学生的感受，用温暖、不评判的语气回应，" +
	"给出贴近学生生活的小建议。不要进行医疗诊断；当学生表达严重困扰时，建议寻求学校心理老师或专业帮助。"

// 所有重试失败后的兜底回复，保证对话永远有回应
const moodChatFallbackReply = "谢谢你愿意说出自己的感受。我现在有点连接不上，不过你的心情已经被记录下来了。" +
	"深呼吸一下，对自己温柔一点；如果情绪持续低落，可以联系学校的心理老师聊聊。"

// ErrChatMessageEmpty 当学生提交的消息为空时返回
var ErrChatMessageEmpty = errors.New("chat message is empty")

// ChatTurn 表示一轮历史对话，role 为 user/assistant
type ChatTurn struct {
	Role    string
	Content string
}

// ChatReply 返回模型回复及少量元数据。
// Fallback 为 true 表示模型不可用，内容是预置的兜底文案。
type ChatReply struct {
	Content          string
	Fallback         bool
	PromptTokens     int
	CompletionTokens int
}

// MoodChatService 基于大模型接口提供心情陪伴对话。
// 模型调用失败时重试，超过次数后返回兜底回复，从不向学生暴露错误。
type MoodChatService struct {
	client *aiChatClient
	moods  *MoodService
}

// NewMoodChatService 构造默认的 MoodChatService。
func NewMoodChatService(settings *SystemSettingService, moods *MoodService) *MoodChatService {
	return &MoodChatService{
		client: newAIChatClient(settings, defaultOpenAIChatModel, defaultDeepSeekChatModel),
		moods:  moods,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *MoodChatService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOpenAIBaseURL 覆盖默认的 OpenAI API 地址。
func (s *MoodChatService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// SetDeepSeekBaseURL 覆盖默认的 DeepSeek API 地址。
func (s *MoodChatService) SetDeepSeekBaseURL(base string) {
	s.client.SetDeepSeekBaseURL(base)
}

// SetOpenAIModel 指定 OpenAI 对话所使用的模型名称。
func (s *MoodChatService) SetOpenAIModel(model string) {
	s.client.SetOpenAIModel(model)
}

// SetDeepSeekModel 指定 DeepSeek 对话所使用的模型名称。
func (s *MoodChatService) SetDeepSeekModel(model string) {
	s.client.SetDeepSeekModel(model)
}

// Reply 回应学生的一条消息。上下文由系统提示词、最近的心情打卡和历史对话拼装而成；
// 最多尝试 maxChatAttempts 次，之后返回兜底回复。
func (s *MoodChatService) Reply(ctx context.Context, userID uint, message string, history []ChatTurn) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, ErrChatMessageEmpty
	}
	message = truncateRunes(message, maxChatMessageRuneCount)
	logAIExchange("MOODCHAT", "prompt", message)

	settings, err := s.client.settings.GetSettings()
	if err != nil {
		return ChatReply{}, fmt.Errorf("读取系统设置失败: %w", err)
	}

	systemPrompt := strings.TrimSpace(settings.MoodChatPrompt)
	if systemPrompt == "" {
		systemPrompt = defaultMoodChatSystemPrompt
	}
	if moodContext := s.recentMoodContext(userID); moodContext != "" {
		systemPrompt = systemPrompt + "\n\n" + moodContext
	}

	req := aiChatRequest{
		SystemPrompt: systemPrompt,
		History:      historyToMessages(history),
		UserPrompt:   message,
		MaxTokens:    defaultChatMaxTokens,
		Temperature:  defaultChatTemperature,
	}

	var lastErr error
	for attempt := 1; attempt <= maxChatAttempts; attempt++ {
		result, err := s.client.callWithSettings(ctx, settings, req)
		if err == nil {
			logAIExchange("MOODCHAT", "response", result.Content)
			return ChatReply{
				Content:          result.Content,
				PromptTokens:     result.PromptTokens,
				CompletionTokens: result.CompletionTokens,
			}, nil
		}

		lastErr = err
		// 未配置 Key 时重试没有意义，直接兜底
		if errors.Is(err, ErrAIAPIKeyMissing) {
			break
		}
		log.Printf("[AI MOODCHAT] attempt %d/%d failed: %v", attempt, maxChatAttempts, err)
	}

	log.Printf("[AI MOODCHAT] falling back to canned reply: %v", lastErr)
	return ChatReply{Content: moodChatFallbackReply, Fallback: true}, nil
}

// recentMoodContext 把最近的心情打卡拼成一段提示词上下文，失败时返回空串。
func (s *MoodChatService) recentMoodContext(userID uint) string {
	if s.moods == nil || userID == 0 {
		return ""
	}

	checkins, err := s.moods.Recent(userID, recentMoodContextLimit)
	if err != nil {
		log.Printf("[AI MOODCHAT] load recent moods failed: %v", err)
		return ""
	}
	if len(checkins) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("该学生最近的心情打卡（由近到远）：")
	for _, checkin := range checkins {
		builder.WriteString(fmt.Sprintf("\n- %s：%s（强度 %d/5", checkin.CreatedAt.Format("2006-01-02"), checkin.Mood, checkin.Intensity))
		if note := strings.TrimSpace(checkin.Note); note != "" {
			builder.WriteString("，备注：" + note)
		}
		builder.WriteString("）")
	}
	return builder.String()
}

func historyToMessages(history []ChatTurn) []chatMessage {
	messages := make([]chatMessage, 0, len(history))
	for _, turn := range history {
		role := strings.ToLower(strings.TrimSpace(turn.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		messages = append(messages, chatMessage{Role: role, Content: truncateRunes(content, maxChatMessageRuneCount)})
	}
	return messages
}

func truncateRunes(value string, limit int) string {
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
