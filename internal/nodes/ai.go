package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/engine"
	"github.com/0x-Shashi/Forge-Flow/internal/inference"
)

// AINode — ai-узел: генерация через inference-провайдера.
//
// Конфигурация:
//
//	{
//	    "prompt": "Summarize: {{api.data}}",
//	    "systemPrompt": "You are a helpful AI assistant.",
//	    "provider": "openrouter",   // или "huggingface"; пусто — авто
//	    "modelId": "openai/gpt-3.5-turbo",
//	    "apiKey": "..."             // перекрывает ключ провайдера
//	}
//
// prompt проходит интерполяцию по входу узла. При отсутствии
// credentials узел не падает, а возвращает симулированный ответ с
// пометкой simulated: true.
type AINode struct {
	openRouter inference.Provider
	hf         inference.Provider
}

// NewAINode создаёт исполнителя ai-узлов.
// Любой провайдер может быть nil: тогда соответствующий путь
// симулируется.
func NewAINode(openRouter, hf inference.Provider) *AINode {
	return &AINode{openRouter: openRouter, hf: hf}
}

// Kind возвращает тип узла.
func (n *AINode) Kind() domain.NodeKind {
	return domain.KindAI
}

// Execute выполняет inference-запрос.
func (n *AINode) Execute(ctx context.Context, req *Request) (*Response, error) {
	prompt := ConfigString(req.Config, "prompt")
	if prompt == "" {
		return nil, fmt.Errorf("%w: ai: prompt is required", ErrInvalidConfig)
	}

	if input := req.InputMap(); input != nil {
		prompt = engine.Interpolate(prompt, input)
	}

	infReq := inference.Request{
		Prompt:       prompt,
		SystemPrompt: ConfigString(req.Config, "systemPrompt"),
		ModelID:      ConfigString(req.Config, "modelId"),
		APIKey:       ConfigString(req.Config, "apiKey"),
	}

	provider := n.pick(ConfigString(req.Config, "provider"))
	if provider == nil {
		return &Response{Output: simulated(infReq.ModelID, prompt)}, nil
	}

	resp, err := provider.Generate(ctx, infReq)
	if errors.Is(err, inference.ErrNoCredentials) {
		return &Response{Output: simulated(infReq.ModelID, prompt)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("AI call failed: %w", err)
	}

	output := map[string]any{
		"model":    resp.Model,
		"prompt":   prompt,
		"response": resp.Text,
	}
	if resp.Raw != nil {
		output["fullResult"] = resp.Raw
	}
	return &Response{Output: output}, nil
}

// pick выбирает провайдера по конфигурации: явное имя, иначе
// OpenRouter, иначе Hugging Face.
func (n *AINode) pick(name string) inference.Provider {
	switch name {
	case "openrouter":
		return n.openRouter
	case "huggingface":
		return n.hf
	}
	if n.openRouter != nil {
		return n.openRouter
	}
	return n.hf
}

// simulated строит демонстрационный ответ без обращения к провайдеру.
func simulated(modelID, prompt string) map[string]any {
	if modelID == "" {
		modelID = "demo"
	}
	preview := prompt
	if runes := []rune(preview); len(runes) > 50 {
		preview = string(runes[:50])
	}
	return map[string]any{
		"model":     modelID,
		"prompt":    prompt,
		"response":  fmt.Sprintf(`[Demo Mode] AI would process: "%s..."`, preview),
		"simulated": true,
	}
}
