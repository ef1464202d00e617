package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/clickhouse"
	"github.com/corray333/shopline/notify/internal/dal/postgres"
	"github.com/corray333/shopline/notify/internal/dal/pushgateway"
	"github.com/corray333/shopline/notify/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/shopline/notify/internal/dal/repositories/outbox/postgres"
	userrepo "github.com/corray333/shopline/notify/internal/dal/repositories/user/postgres"
	"github.com/corray333/shopline/notify/internal/otel"
	"github.com/corray333/shopline/notify/internal/service/services/authsvc"
	"github.com/corray333/shopline/notify/internal/service/services/broadcastsvc"
	"github.com/corray333/shopline/notify/internal/service/services/dispatchsvc"
	"github.com/corray333/shopline/notify/internal/service/services/ordersvc"
	"github.com/corray333/shopline/notify/internal/service/services/ratelimitsvc"
	"github.com/corray333/shopline/notify/internal/transport/consumer"
	httptransport "github.com/corray333/shopline/notify/internal/transport/http"
	outboxworker "github.com/corray333/shopline/notify/internal/worker/outbox"
	sweeperworker "github.com/corray333/shopline/notify/internal/worker/sweeper"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	consumerTransp *consumer.Consumer
	outboxWorker   *outboxworker.Worker
	sweeperWorker  *sweeperworker.Worker
	rabbitMqClient *rabbitmq.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	broadcastSvc := broadcastsvc.MustNewBroadcastService(
		broadcastsvc.WithPostgresClient(postgresClient),
	)

	rateLimitSvc := ratelimitsvc.MustNewRateLimitService(
		ratelimitsvc.WithPostgresClient(postgresClient),
	)

	authSvc := authsvc.MustNewAuthService(
		authsvc.WithLimiter(rateLimitSvc),
	)

	// The dispatch log is an analytics sink, not a dependency: the service
	// runs without it.
	clickhouseClient, err := clickhouse.NewClient()
	if err != nil {
		slog.Warn("ClickHouse unavailable, dispatch results will not be recorded", "error", err)
	}

	dispatchSvc := dispatchsvc.MustNewDispatchService(
		dispatchsvc.WithGateway(pushgateway.NewClient()),
		dispatchsvc.WithUserLister(userrepo.NewUserRepository(postgresClient.Pool())),
		dispatchsvc.WithDispatchLogger(clickhouseClient),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, broadcastSvc, authSvc)
	transport.RegisterRoutes()

	consumerTransp := consumer.NewConsumer(rabbitMqClient, dispatchSvc)

	outboxWorker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitMqClient,
	)

	sweeperWorker := sweeperworker.NewWorker(rateLimitSvc)

	return &App{
		transport:      transport,
		consumerTransp: consumerTransp,
		outboxWorker:   outboxWorker,
		sweeperWorker:  sweeperWorker,
		rabbitMqClient: rabbitMqClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting dispatch consumer")
		if err := a.consumerTransp.Run(ctx); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(ctx)
	}()

	go func() {
		slog.Info("Starting rate limit sweeper")
		a.sweeperWorker.Start(ctx)
	}()

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown performs graceful shutdown of all application components.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.outboxWorker.Stop()
	slog.Info("Outbox worker stopped gracefully")

	a.sweeperWorker.Stop()
	slog.Info("Rate limit sweeper stopped gracefully")

	if err := a.consumerTransp.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	} else {
		slog.Info("Consumer stopped gracefully")
	}

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
