// Package runner содержит оркестратор прогонов workflow.
//
// Оркестратор выполняет узлы строго последовательно в топологическом
// порядке, собирает вход каждого узла из выходов предшественников и
// накапливает результаты в domain.Execution. Сбой узла не прерывает
// прогон: в контекст записывается nil, downstream-узлы видят
// отсутствие значения.
//
// Валидация — обязанность вызывающего: оркестратор предполагает уже
// проверенный workflow и не валидирует повторно.
package runner
