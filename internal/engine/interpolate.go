package engine

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// placeholderRe — плейсхолдер вида {{path.to.field}}.
var placeholderRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Interpolate подставляет значения из data вместо плейсхолдеров
// {{path}} в template.
//
// Путь — последовательность ключей через точку, пробелы по краям
// отбрасываются. Неразрешимый путь (отсутствующий ключ, nil по дороге,
// не-объект) заменяется пустой строкой; функция никогда не возвращает
// ошибку. Плейсхолдеры в подставленных значениях повторно не
// обрабатываются.
func Interpolate(template string, data any) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-2])
		v, ok := Resolve(data, path)
		if !ok || v == nil {
			return ""
		}
		return Stringify(v)
	})
}

// Resolve возвращает значение по dot-path внутри data.
//
// Поддерживаются только map[string]any на каждом шаге: индексация
// срезов и обращение к полям структур не выполняются. Второе значение
// false означает, что путь не разрешился.
func Resolve(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	current := data
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[key]
		if !ok {
			return nil, false
		}
		current = v
	}
	return current, true
}

// Stringify приводит значение к строке для подстановки в шаблон.
// Скаляры приводятся через cast, составные значения — через JSON.
func Stringify(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return cast.ToString(v)
		}
		return string(b)
	default:
		return cast.ToString(v)
	}
}
