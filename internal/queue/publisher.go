package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher writes order events to the durable order.events queue.  A nil
// Publisher is valid and drops events, so the server runs without a broker.
type Publisher struct {
	url string
	log zerolog.Logger
}

// NewPublisher returns nil when no broker URL is configured.
func NewPublisher(url string, log zerolog.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log.With().Str("component", "queue").Logger()}
}

// Publish marshals the event and sends it with persistent delivery.  Errors
// are logged and returned; callers ignore them so order writes never block
// on the broker.
func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(OrderQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", OrderQueueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Msg("publish failed")
		return err
	}
	return nil
}
