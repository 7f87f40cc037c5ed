/**
 * @description
 * This package provides a simple producer for publishing mining events to RabbitMQ.
 * It encapsulates the logic for connecting to RabbitMQ and publishing a message
 * to a specific exchange and routing key.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/rabbitmq/amqp091-go: The RabbitMQ client library.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// RewardClaimedEvent is published after a mining claim has committed.
type RewardClaimedEvent struct {
	AccountID        uuid.UUID `json:"account_id"`
	Reward           int64     `json:"reward"`
	NewBalance       int64     `json:"new_balance"`
	LifetimeEarnings int64     `json:"lifetime_earnings"`
	ClaimedAt        time.Time `json:"claimed_at"`
}

// RankUpEvent is published when an account first reaches a rank tier.
type RankUpEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Tier      string    `json:"tier"`
	Bonus     int64     `json:"bonus"`
	Timestamp time.Time `json:"timestamp"`
}

// EventProducer holds the RabbitMQ connection and channel for publishing messages.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	PublishRewardClaimedEvent(ctx context.Context, exchange string, event RewardClaimedEvent) error
	PublishRankUpEvent(ctx context.Context, exchange string, event RankUpEvent) error
	Close()
}

// EventProducerFallback is a minimal no-op publisher used when RabbitMQ is unavailable at startup.
type EventProducerFallback struct{}

func (p *EventProducerFallback) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"publish skipped\" exchange=%s routing_key=%s", exchange, routingKey)
	return nil
}

func (p *EventProducerFallback) PublishRewardClaimedEvent(ctx context.Context, exchange string, event RewardClaimedEvent) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"reward claimed event publish skipped\" account_id=%s", event.AccountID)
	return nil
}

func (p *EventProducerFallback) PublishRankUpEvent(ctx context.Context, exchange string, event RankUpEvent) error {
	log.Printf("level=warn component=rabbitmq_producer mode=fallback msg=\"rank up event publish skipped\" account_id=%s", event.AccountID)
	return nil
}

func (p *EventProducerFallback) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	// If any stray characters precede the scheme, slice from first occurrence of amqp
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer creates and returns a new EventProducer.
func NewEventProducer(amqpURL string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Use a bounded dial timeout so startup does not hang indefinitely
	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: channel}, nil
}

// Publish marshals the body and publishes it to the exchange with the routing key.
// The exchange is declared idempotently as a durable topic exchange.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	})
}

// PublishRewardClaimedEvent publishes a mining.reward.claimed event.
func (p *EventProducer) PublishRewardClaimedEvent(ctx context.Context, exchange string, event RewardClaimedEvent) error {
	return p.Publish(ctx, exchange, "mining.reward.claimed", event)
}

// PublishRankUpEvent publishes a mining.rank.up event.
func (p *EventProducer) PublishRankUpEvent(ctx context.Context, exchange string, event RankUpEvent) error {
	return p.Publish(ctx, exchange, "mining.rank.up", event)
}

// Close shuts down the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
