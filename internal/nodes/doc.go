// Package nodes содержит исполнителей типов узлов workflow.
//
// Пять типов:
//   - trigger.go     — стартовый узел, синтезирует стартовый выход
//   - http.go        — api-узел: HTTP запрос с интерполяцией url/body
//   - ai.go          — ai-узел: inference через OpenRouter / Hugging Face
//   - conditional.go — logic-узел: dot-path + оператор сравнения
//   - action.go      — action-узел: save, notify, webhook, blockchain
//
// Исполнители регистрируются в Registry и вызываются раннером по
// типу узла. Внешние коллабораторы (KV-хранилище, нотификатор,
// леджер, inference-провайдеры) передаются через Deps.
package nodes
