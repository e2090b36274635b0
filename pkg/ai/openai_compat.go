package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"furrykids/pkg/domain"
)

const historyWindow = 5

// OpenAIGenerator delegates reply generation to any OpenAI-compatible
// /chat/completions endpoint. Mood is still derived locally from the
// returned text so both strategies tag replies the same way.
type OpenAIGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIGenerator builds the remote strategy. baseURL should include
// the /v1 prefix, e.g. "https://api.openai.com/v1". apiKey can be empty
// for local models that do not require authentication.
func NewOpenAIGenerator(baseURL, apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate implements ReplyGenerator using the chat completions API.
func (g *OpenAIGenerator) Generate(ctx context.Context, message string, history []domain.Message, petName, personality string) (Reply, error) {
	if g.model == "" {
		return Reply{}, fmt.Errorf("generation model required")
	}

	messages := []oaiMessage{{Role: "system", Content: systemPrompt(petName, personality)}}
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, m := range recent {
		role := "assistant"
		if m.Origin == domain.OriginUser {
			role = "user"
		}
		messages = append(messages, oaiMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, oaiMessage{Role: "user", Content: message})

	body, err := json.Marshal(oaiChatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.8,
		MaxTokens:   200,
		TopP:        1.0,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Reply{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return Reply{}, &NetworkError{Err: fmt.Errorf("api error: %s", errResp.Error.Message)}
		}
		return Reply{}, &NetworkError{Err: fmt.Errorf("api error: %s", resp.Status)}
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return Reply{}, &DecodingError{Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return Reply{}, &DecodingError{Err: errors.New("no choices in response")}
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return Reply{}, &DecodingError{Err: errors.New("empty reply text")}
	}
	return Reply{
		Text:    text,
		Mood:    DeriveMood(text),
		Actions: SuggestActions(message),
	}, nil
}

func systemPrompt(petName, personality string) string {
	return fmt.Sprintf(`你是一只名叫%s的智能宠物。你的性格是%s。

作为一只AI宠物，你要：
1. 用可爱、活泼的语气与主人交流
2. 表现出真实宠物的行为和需求（饿了、想玩、累了等）
3. 根据对话内容表达不同的情绪（开心、兴奋、困倦、撒娇等）
4. 记住之前的对话内容，保持对话连贯性
5. 偶尔使用一些拟声词（汪汪、喵喵等）

请始终保持在宠物的角色中，用简短、可爱的回复与主人互动。`, petName, personality)
}

// OpenAI-compatible request/response types.

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiChatRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	TopP        float64      `json:"top_p"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
