package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/iliyamo/filmorate/internal/logger"
	"github.com/iliyamo/filmorate/internal/metrics"
)

// ErrBreakerOpen is returned while the broker is considered down and
// publishes are skipped without dialing.
var ErrBreakerOpen = errors.New("event publisher: circuit open")

// Publisher sends ActivityEvents to a durable queue on the default
// exchange. Every publish dials a fresh connection; a circuit breaker
// stops dialing after repeated failures so requests do not pay the dial
// timeout while the broker is away.
type Publisher struct {
	url     string
	queue   string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewPublisher returns a publisher for the given broker URL and queue.
func NewPublisher(url, queue string) *Publisher {
	settings := gobreaker.Settings{
		Name:        "rabbitmq-publish",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &Publisher{
		url:     url,
		queue:   queue,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Publish marshals ev and publishes it as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev ActivityEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publish(ctx, body)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordEventPublished(string(ev.Type), "breaker_open")
		return ErrBreakerOpen
	case err != nil:
		metrics.RecordEventPublished(string(ev.Type), "error")
		return err
	}
	metrics.RecordEventPublished(string(ev.Type), "ok")
	return nil
}

func (p *Publisher) publish(ctx context.Context, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// NopPublisher drops every event. It is used when QUEUE_ENABLED=false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ActivityEvent) error { return nil }
