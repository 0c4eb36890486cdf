// Package inference содержит клиентов inference-провайдеров для
// ai-узлов: OpenRouter и Hugging Face Inference API.
package inference

import (
	"context"
	"errors"
)

// Ошибки провайдеров.
var (
	// ErrNoCredentials — у провайдера нет API-ключа. AI-узел в этом
	// случае возвращает симулированный ответ вместо сбоя.
	ErrNoCredentials = errors.New("inference provider has no credentials")

	// ErrProviderCall — вызов провайдера завершился ошибкой.
	ErrProviderCall = errors.New("inference provider call failed")
)

// Request — запрос на генерацию.
type Request struct {
	// Prompt — пользовательский prompt (после интерполяции).
	Prompt string

	// SystemPrompt — системный prompt. Пустой — провайдер подставит
	// значение по умолчанию.
	SystemPrompt string

	// ModelID — идентификатор модели у провайдера. Пустой — модель
	// по умолчанию провайдера.
	ModelID string

	// APIKey — ключ из конфигурации узла. Перекрывает ключ провайдера.
	APIKey string
}

// Response — ответ провайдера.
type Response struct {
	// Model — фактически использованная модель.
	Model string `json:"model"`

	// Text — сгенерированный текст (или сырой ответ для провайдеров
	// без единого текстового поля).
	Text any `json:"response"`

	// Raw — полный ответ провайдера, как есть.
	Raw any `json:"fullResult,omitempty"`
}

// Provider — клиент inference-провайдера.
type Provider interface {
	// Name возвращает имя провайдера ("openrouter", "huggingface").
	Name() string

	// Generate выполняет запрос. Возвращает ErrNoCredentials, если
	// ключ недоступен ни в запросе, ни в конфигурации провайдера.
	Generate(ctx context.Context, req Request) (*Response, error)
}
