package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeNotify             MessageType = "notification.send"
	MessageTypeExecutionCompleted MessageType = "execution.completed"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NotifyPayload — payload уведомления от action-узла.
type NotifyPayload struct {
	WorkflowID  string `json:"workflowId"`
	ExecutionID string `json:"executionId"`
	Body        any    `json:"body"`
}

// ExecutionCompletedPayload — payload события завершения прогона.
type ExecutionCompletedPayload struct {
	ExecutionID string                 `json:"executionId"`
	WorkflowID  string                 `json:"workflowId"`
	Status      domain.ExecutionStatus `json:"status"`
	NodeCount   int                    `json:"nodeCount"`
	DurationMs  int64                  `json:"durationMs"`
}

// Publisher публикует события в RabbitMQ.
//
// Реализует nodes.Notifier: action-узлы типа notify публикуют
// уведомления через очередь вместо прямой доставки.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение с routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published message",
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// Notify публикует уведомление. Реализует nodes.Notifier.
// Потребитель: forgeflow-notifier.
func (p *Publisher) Notify(ctx context.Context, workflowID, executionID string, payload any) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeNotify,
		Payload: NotifyPayload{
			WorkflowID:  workflowID,
			ExecutionID: executionID,
			Body:        payload,
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, RoutingKeyNotify, msg)
}

// PublishExecutionCompleted публикует событие завершения прогона.
func (p *Publisher) PublishExecutionCompleted(ctx context.Context, exec *domain.Execution) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeExecutionCompleted,
		Payload: ExecutionCompletedPayload{
			ExecutionID: exec.ID,
			WorkflowID:  exec.WorkflowID,
			Status:      exec.Status,
			NodeCount:   len(exec.Results),
			DurationMs:  exec.CompletedAt.Sub(exec.StartedAt).Milliseconds(),
		},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, RoutingKeyCompleted, msg)
}
