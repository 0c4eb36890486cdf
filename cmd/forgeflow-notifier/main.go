package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0x-Shashi/Forge-Flow/internal/mq"
	"github.com/0x-Shashi/Forge-Flow/internal/telemetry"
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "forgeflow_notifications_total",
	Help: "Notifications processed by forgeflow-notifier",
}, []string{"outcome"})

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting forgeflow-notifier")

	mqURL := os.Getenv("MQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}
	conn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := mq.SetupTopology(context.Background(), conn); err != nil {
		logger.Error("failed to set up messaging topology", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to rabbitmq")

	// Если задан NOTIFY_WEBHOOK_URL — уведомления пробрасываются
	// POST-запросом. Иначе просто пишутся в лог.
	webhookURL := os.Getenv("NOTIFY_WEBHOOK_URL")
	httpClient := &http.Client{Timeout: 15 * time.Second}

	handler := func(ctx context.Context, d *mq.Delivery) error {
		payload, err := mq.ParsePayload[mq.NotifyPayload](&d.Message)
		if err != nil {
			notificationsTotal.WithLabelValues("invalid").Inc()
			logger.Error("invalid notification payload", "error", err)
			return d.Ack() // повтор не поможет
		}

		log := logger.With(
			"workflow_id", payload.WorkflowID,
			"execution_id", payload.ExecutionID,
		)

		if webhookURL != "" {
			if err := forward(ctx, httpClient, webhookURL, payload); err != nil {
				notificationsTotal.WithLabelValues("failed").Inc()
				log.Error("failed to deliver notification", "error", err)
				return d.Nack(true)
			}
		}

		notificationsTotal.WithLabelValues("delivered").Inc()
		log.Info("notification delivered")
		return d.Ack()
	}

	consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
		Queue:    mq.QueueNotifications,
		Handler:  handler,
		Prefetch: 10,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}

	logger.Info("stopped")
}

func forward(ctx context.Context, client *http.Client, url string, payload mq.NotifyPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
