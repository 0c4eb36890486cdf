package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	huggingFaceBaseURL      = "https://api-inference.huggingface.co/models/"
	huggingFaceDefaultModel = "gpt2"
)

// HuggingFace — клиент Hugging Face Inference API.
type HuggingFace struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewHuggingFace создаёт клиент с токеном из окружения.
func NewHuggingFace(token string) *HuggingFace {
	return &HuggingFace{
		token:   token,
		baseURL: huggingFaceBaseURL,
		client:  &http.Client{Timeout: defaultInferenceTimeout},
	}
}

// Name возвращает имя провайдера.
func (p *HuggingFace) Name() string {
	return "huggingface"
}

// Generate выполняет inference-запрос к модели.
//
// Ответ API зависит от модели (text-generation, classification и т.д.),
// поэтому возвращается как есть в Text.
func (p *HuggingFace) Generate(ctx context.Context, req Request) (*Response, error) {
	token := req.APIKey
	if token == "" {
		token = p.token
	}
	if token == "" {
		return nil, ErrNoCredentials
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = huggingFaceDefaultModel
	}

	payload, err := json.Marshal(map[string]string{"inputs": req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+modelID, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

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
		return nil, fmt.Errorf("%w: hugging face returned %d: %s", ErrProviderCall, resp.StatusCode, string(body))
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		result = string(body)
	}

	return &Response{
		Model: modelID,
		Text:  result,
	}, nil
}
