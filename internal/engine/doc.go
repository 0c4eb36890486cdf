// Package engine содержит ядро выполнения workflow.
//
// Включает:
//   - graph.go       — индекс графа: adjacency-структуры поверх Workflow
//   - validate.go    — валидация определения workflow (накопление ошибок)
//   - sort.go        — топологическая сортировка по алгоритму Кана
//   - interpolate.go — подстановка {{path}} из контекста выполнения
//
// Engine отвечает за понимание структуры workflow и определение
// порядка выполнения узлов на основе рёбер зависимостей. Сами узлы
// выполняет пакет nodes, координирует — runner.
package engine
