package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/shopline/notify/internal/dal/rabbitmq"
	"github.com/corray333/shopline/notify/internal/service/models/event"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// service is the dispatch surface of the service layer.
type service interface {
	Dispatch(ctx context.Context, job event.Job) error
}

// Consumer consumes notification jobs from RabbitMQ and feeds them to the
// dispatcher.
type Consumer struct {
	client  *rabbitmq.Client
	service service
	queue   amqp.Queue
	stop    chan struct{}
	done    chan struct{}
}

// NewConsumer creates a new Consumer.
func NewConsumer(client *rabbitmq.Client, service service) *Consumer {
	queueName := viper.GetString("rabbitmq.notifications.queue")
	if queueName == "" {
		queueName = "notifications"
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		AutoDelete: false,
		Exclusive:  false,
		NoWait:     false,
	})
	if err != nil {
		panic(err)
	}

	return &Consumer{
		client:  client,
		service: service,
		queue:   queue,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Run starts consuming jobs from RabbitMQ.
func (c *Consumer) Run(ctx context.Context) error {
	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "notify-dispatch"
	}

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue.Name,
		Consumer: consumerTag,
	})
	if err != nil {
		return err
	}

	slog.Info("Dispatch consumer started", "queue", c.queue.Name, "consumer_tag", consumerTag)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(50)

	go func() {
		for {
			select {
			case <-c.stop:
				slog.Info("Stopping dispatch consumer")
				close(c.done)

				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed")
					close(c.done)

					return
				}

				g.Go(func() error {
					return c.processMessage(gctx, msg)
				})
			}
		}
	}()

	<-c.done
	if err := g.Wait(); err != nil {
		slog.Error("Error processing jobs", "error", err)
	}

	return nil
}

// processMessage dispatches a single job. Jobs that cannot be parsed are
// dropped; dispatch itself is best-effort and already swallows gateway
// failures, so every parsed job is acked.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	job, err := event.Unmarshal(msg.Body)
	if err != nil {
		slog.Error("Failed to unmarshal notification job", "error", err)
		if err := msg.Nack(false, false); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	if err := c.service.Dispatch(ctx, job); err != nil {
		slog.Error("Failed to dispatch notification job",
			"error", err,
			"job_id", job.JobID,
			"kind", job.Kind,
		)
		// Unknown kinds are permanent, drop them. Anything else that
		// surfaces here is infrastructure (account lookup), so requeue;
		// gateway failures are swallowed inside Dispatch.
		requeue := !errors.Is(err, event.ErrUnknownKind)
		if err := msg.Nack(false, requeue); err != nil {
			slog.Error("Failed to nack message", "error", err)
		}

		return err
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("Failed to ack message", "error", err)

		return err
	}

	return nil
}

// Shutdown gracefully shuts down the consumer.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down dispatch consumer")
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Dispatch consumer stopped")
	case <-time.After(10 * time.Second):
		slog.Warn("Dispatch consumer shutdown timeout")
	}

	return nil
}
