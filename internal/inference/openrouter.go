package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openRouterURL          = "https://openrouter.ai/api/v1/chat/completions"
	openRouterDefaultModel = "openai/gpt-3.5-turbo"
	defaultSystemPrompt    = "You are a helpful AI assistant."
	defaultMaxTokens       = 500

	defaultInferenceTimeout = 60 * time.Second
	maxInferenceBody        = 1 * 1024 * 1024 // 1 MB
)

// OpenRouter — клиент OpenRouter chat completions API.
// Через OpenRouter доступны модели OpenAI, Anthropic, Meta и других.
type OpenRouter struct {
	apiKey string
	client *http.Client
}

// NewOpenRouter создаёт клиент с ключом из окружения (может быть
// пустым: тогда Generate без ключа в запросе вернёт ErrNoCredentials).
func NewOpenRouter(apiKey string) *OpenRouter {
	return &OpenRouter{
		apiKey: apiKey,
		client: &http.Client{Timeout: defaultInferenceTimeout},
	}
}

// Name возвращает имя провайдера.
func (p *OpenRouter) Name() string {
	return "openrouter"
}

// chatRequest — тело запроса chat completions.
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse — интересующая часть ответа chat completions.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate выполняет chat completion через OpenRouter.
func (p *OpenRouter) Generate(ctx context.Context, req Request) (*Response, error) {
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = p.apiKey
	}
	if apiKey == "" {
		return nil, ErrNoCredentials
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = openRouterDefaultModel
	}
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	payload, err := json.Marshal(chatRequest{
		Model: modelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens: defaultMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", "https://forgeflow.app")
	httpReq.Header.Set("X-Title", "ForgeFlow")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderCall, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInferenceBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: openrouter returned %d: %s", ErrProviderCall, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderCall, err)
	}

	text := "No response"
	if len(parsed.Choices) > 0 && parsed.Choices[0].Message.Content != "" {
		text = parsed.Choices[0].Message.Content
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		raw = string(body)
	}

	return &Response{
		Model: modelID,
		Text:  text,
		Raw:   raw,
	}, nil
}
