package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/mindhaven/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeHTTPClient struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return f.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func setupMoodChatTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.SystemSetting{}, &db.MoodCheckin{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func newMoodChatServiceForTest(t *testing.T, provider string) (*MoodChatService, *SystemSettingService) {
	t.Helper()

	settings := NewSystemSettingService(db.DB)
	input := SystemSettingsInput{AIProvider: provider}
	switch provider {
	case AIProviderDeepSeek:
		input.DeepSeekAPIKey = "sk-deepseek-test"
	case AIProviderOpenAI:
		input.OpenAIAPIKey = "sk-openai-test"
	}
	if _, err := settings.UpdateSettings(input); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	return NewMoodChatService(settings, NewMoodService(db.DB)), settings
}

func TestMoodChatReplySuccess(t *testing.T) {
	cleanup := setupMoodChatTestDB(t)
	defer cleanup()

	svc, _ := newMoodChatServiceForTest(t, AIProviderOpenAI)

	moods := NewMoodService(db.DB)
	if _, err := moods.Checkin(7, MoodInput{Mood: "焦虑", Intensity: 4, Note: "期中周压力大"}); err != nil {
		t.Fatalf("Checkin returned error: %v", err)
	}

	var captured chatCompletionRequest
	var capturedAuth string
	var capturedURL string
	svc.SetHTTPClient(&fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		capturedAuth = req.Header.Get("Authorization")
		capturedURL = req.URL.String()
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"听起来这周确实不容易，先照顾好睡眠。"}}],"usage":{"prompt_tokens":120,"completion_tokens":30}}`), nil
	}})

	history := []ChatTurn{
		{Role: "user", Content: "我最近睡不好"},
		{Role: "assistant", Content: "可以试试睡前放下手机"},
		{Role: "system", Content: "应当被过滤"},
	}
	reply, err := svc.Reply(context.Background(), 7, "今天还是很累", history)
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if reply.Fallback {
		t.Fatal("expected a live reply, got fallback")
	}
	if reply.Content != "听起来这周确实不容易，先照顾好睡眠。" {
		t.Fatalf("unexpected reply content: %s", reply.Content)
	}
	if reply.PromptTokens != 120 || reply.CompletionTokens != 30 {
		t.Fatalf("unexpected token usage: %d/%d", reply.PromptTokens, reply.CompletionTokens)
	}

	if capturedAuth != "Bearer sk-openai-test" {
		t.Fatalf("unexpected authorization header: %s", capturedAuth)
	}
	if !strings.HasSuffix(capturedURL, "/chat/completions") {
		t.Fatalf("unexpected endpoint: %s", capturedURL)
	}

	// system + 2 条有效历史 + 当前消息
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Fatalf("expected first message to be system, got %s", captured.Messages[0].Role)
	}
	if !strings.Contains(captured.Messages[0].Content, "焦虑") {
		t.Fatal("expected system prompt to include recent mood context")
	}
	last := captured.Messages[len(captured.Messages)-1]
	if last.Role != "user" || last.Content != "今天还是很累" {
		t.Fatalf("unexpected final message: %+v", last)
	}
}

func TestMoodChatReplyRetriesThenFallback(t *testing.T) {
	cleanup := setupMoodChatTestDB(t)
	defer cleanup()

	svc, _ := newMoodChatServiceForTest(t, AIProviderOpenAI)

	attempts := 0
	svc.SetHTTPClient(&fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		attempts++
		return nil, errors.New("connection refused")
	}})

	reply, err := svc.Reply(context.Background(), 7, "我有点难过", nil)
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if attempts != maxChatAttempts {
		t.Fatalf("expected %d attempts, got %d", maxChatAttempts, attempts)
	}
	if !reply.Fallback {
		t.Fatal("expected fallback reply after retries exhausted")
	}
	if reply.Content != moodChatFallbackReply {
		t.Fatalf("unexpected fallback content: %s", reply.Content)
	}
}

func TestMoodChatReplyUpstreamErrorStatus(t *testing.T) {
	cleanup := setupMoodChatTestDB(t)
	defer cleanup()

	svc, _ := newMoodChatServiceForTest(t, AIProviderDeepSeek)

	attempts := 0
	svc.SetHTTPClient(&fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`), nil
	}})

	reply, err := svc.Reply(context.Background(), 7, "压力好大", nil)
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if attempts != maxChatAttempts {
		t.Fatalf("expected %d attempts, got %d", maxChatAttempts, attempts)
	}
	if !reply.Fallback {
		t.Fatal("expected fallback reply when upstream keeps failing")
	}
}

func TestMoodChatReplyMissingAPIKey(t *testing.T) {
	cleanup := setupMoodChatTestDB(t)
	defer cleanup()

	settings := NewSystemSettingService(db.DB)
	svc := NewMoodChatService(settings, NewMoodService(db.DB))

	attempts := 0
	svc.SetHTTPClient(&fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusOK, `{}`), nil
	}})

	reply, err := svc.Reply(context.Background(), 7, "在吗", nil)
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected no HTTP attempts without api key, got %d", attempts)
	}
	if !reply.Fallback {
		t.Fatal("expected fallback reply when api key is missing")
	}
}

func TestMoodChatReplyEmptyMessage(t *testing.T) {
	cleanup := setupMoodChatTestDB(t)
	defer cleanup()

	svc, _ := newMoodChatServiceForTest(t, AIProviderOpenAI)
	svc.SetHTTPClient(&fakeHTTPClient{handler: func(req *http.Request) (*http.Response, error) {
		t.Fatal("unexpected HTTP call for empty message")
		return nil, nil
	}})

	if _, err := svc.Reply(context.Background(), 7, "   ", nil); !errors.Is(err, ErrChatMessageEmpty) {
		t.Fatalf("expected ErrChatMessageEmpty, got %v", err)
	}
}
