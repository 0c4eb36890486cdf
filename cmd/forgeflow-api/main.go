package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0x-Shashi/Forge-Flow/internal/api"
	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/inference"
	"github.com/0x-Shashi/Forge-Flow/internal/ledger"
	"github.com/0x-Shashi/Forge-Flow/internal/mq"
	"github.com/0x-Shashi/Forge-Flow/internal/nodes"
	"github.com/0x-Shashi/Forge-Flow/internal/repo"
	"github.com/0x-Shashi/Forge-Flow/internal/runner"
	"github.com/0x-Shashi/Forge-Flow/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forgeflow_api_http_requests_total",
		Help: "Total HTTP requests handled by forgeflow-api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting forgeflow-api")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Создаём репозитории
	workflowRepo := repo.NewWorkflowRepo(pool)
	executionRepo := repo.NewExecutionRepo(pool)
	kvRepo := repo.NewKVRepo(pool)

	// RabbitMQ опционален: без него работаем в degraded mode
	// (узлы notify и события завершения становятся no-op).
	var publisher *mq.Publisher
	mqURL := os.Getenv("MQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}
	conn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, running without messaging", "error", err)
	} else {
		defer conn.Close()
		if err := mq.SetupTopology(context.Background(), conn); err != nil {
			logger.Error("failed to set up messaging topology", "error", err)
			os.Exit(1)
		}
		publisher = mq.NewPublisher(conn, logger)
		logger.Info("connected to rabbitmq")
	}

	// Леджер: внешний gateway или заглушка
	var ldg nodes.Ledger = ledger.NewNoop()
	if url := os.Getenv("LEDGER_URL"); url != "" {
		ldg = ledger.NewGateway(url)
		logger.Info("ledger gateway configured", "url", url)
	}

	// AI-провайдеры из окружения; без ключей узлы ai работают
	// в симулированном режиме.
	var openRouter, hf inference.Provider
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		openRouter = inference.NewOpenRouter(key)
	}
	if token := os.Getenv("HF_TOKEN"); token != "" {
		hf = inference.NewHuggingFace(token)
	}

	// Реестр исполнителей узлов
	deps := nodes.Deps{
		Store:      kvRepo,
		Ledger:     ldg,
		OpenRouter: openRouter,
		HF:         hf,
	}
	if publisher != nil {
		deps.Notifier = publisher
	}
	registry := nodes.DefaultRegistry(deps)

	// Оркестратор
	orch := runner.New(runner.Config{
		Registry:    registry,
		Logger:      logger,
		NodeTimeout: envDuration("NODE_TIMEOUT_SEC"),
		Retry: domain.RetryPolicy{
			MaxAttempts: envInt("NODE_MAX_ATTEMPTS"),
			Backoff:     os.Getenv("NODE_RETRY_BACKOFF"),
		},
	})

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		Workflows:    workflowRepo,
		Executions:   executionRepo,
		Orchestrator: orch,
		Publisher:    publisher,
		Ledger:       ldg,
		Logger:       logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

func envInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envDuration(name string) time.Duration {
	return time.Duration(envInt(name)) * time.Second
}
