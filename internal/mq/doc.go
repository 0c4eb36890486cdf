// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queues, bindings
//   - publisher.go  — публикация событий прогонов и уведомлений
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - notification.send     — action-узел типа notify запросил уведомление
//   - execution.completed   — прогон workflow завершён
//
// Exchange:
//   - forgeflow.events — все события проходят через один direct exchange
package mq
