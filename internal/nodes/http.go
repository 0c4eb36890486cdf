package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/engine"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// HTTPNode — api-узел: HTTP запрос к внешнему API.
//
// Конфигурация:
//
//	{
//	    "url": "https://api.example.com/data?q={{weather.name}}",
//	    "method": "POST",
//	    "headers": {"Authorization": "Bearer ..."},
//	    "body": "{\"city\": \"{{weather.name}}\"}"
//	}
//
// url и body проходят интерполяцию {{path}} по входу узла (если вход —
// объект). body отправляется только для POST и PUT. Выход:
//
//	{"status": 200, "data": <parsed body>}
//
// Ответы вне 2xx считаются ошибкой узла.
type HTTPNode struct {
	client *http.Client
}

// NewHTTPNode создаёт исполнителя api-узлов.
func NewHTTPNode() *HTTPNode {
	return &HTTPNode{
		client: &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// NewHTTPNodeWithClient создаёт исполнителя с готовым клиентом.
// Используется в тестах.
func NewHTTPNodeWithClient(client *http.Client) *HTTPNode {
	return &HTTPNode{client: client}
}

// Kind возвращает тип узла.
func (n *HTTPNode) Kind() domain.NodeKind {
	return domain.KindAPI
}

// Execute выполняет HTTP запрос.
func (n *HTTPNode) Execute(ctx context.Context, req *Request) (*Response, error) {
	url := ConfigString(req.Config, "url")
	if url == "" {
		return nil, fmt.Errorf("%w: api: url is required", ErrInvalidConfig)
	}

	input := req.InputMap()
	if input != nil {
		url = engine.Interpolate(url, input)
	}

	method := strings.ToUpper(ConfigString(req.Config, "method"))
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body := ConfigString(req.Config, "body"); body != "" && (method == http.MethodPost || method == http.MethodPut) {
		if input != nil {
			body = engine.Interpolate(body, input)
		}
		bodyReader = strings.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for key, value := range ConfigMapString(req.Config, "headers") {
		httpReq.Header.Set(key, value)
	}
	if bodyReader != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	// Любой json-подтип (application/json, text/json, *+json)
	// парсится как JSON.
	var data any
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "json") {
		if err := json.Unmarshal(bodyBytes, &data); err != nil {
			data = string(bodyBytes)
		}
	} else {
		data = string(bodyBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, errorBody(bodyBytes))
	}

	return &Response{Output: map[string]any{
		"status": resp.StatusCode,
		"data":   data,
	}}, nil
}

// errorBody готовит тело ответа для сообщения об ошибке.
func errorBody(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "(empty body)"
	}
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
