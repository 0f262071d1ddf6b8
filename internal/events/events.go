// Package events publishes ledger events to an AMQP broker so downstream
// consumers (reporting, notifications) can react to balance changes.
//
// Publishing is best effort and optional: without a configured broker all
// publish functions are no-ops, and a failed publish is logged but never
// fails the request that triggered it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const publishTimeout = 5 * time.Second

// Routing keys double as queue names on the direct exchange.
const (
	keyTransactionPosted   = "transaction.posted"
	keyAllocationCompleted = "allocation.completed"
)

type client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// publisher is nil until Connect succeeds. All publish functions treat a
// nil publisher as "events disabled".
var publisher *client

// Connect dials the broker and declares the exchange and one durable
// queue per routing key. An empty URL leaves event publishing disabled.
func Connect(url, exchange string) error {
	if url == "" {
		return nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c := &client{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}

	err = c.setup()
	if err != nil {
		c.close()
		return fmt.Errorf("setup exchange and queues: %w", err)
	}

	publisher = c
	return nil
}

// Close shuts down the broker connection. Safe to call when publishing
// was never enabled.
func Close() {
	if publisher == nil {
		return
	}

	publisher.close()
	publisher = nil
}

func (c *client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, key := range []string{keyTransactionPosted, keyAllocationCompleted} {
		_, err = c.channel.QueueDeclare(
			key,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare queue: %w", err)
		}

		err = c.channel.QueueBind(key, key, c.exchange, false, nil)
		if err != nil {
			return fmt.Errorf("bind queue: %w", err)
		}
	}

	return nil
}

func (c *client) close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *client) publish(ctx context.Context, key string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// TransactionPostedMessage notifies consumers that a ledger row was
// written. Consumers fetch the full transaction from the API if they
// need more than the amount.
type TransactionPostedMessage struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"accountId"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// AllocationCompletedMessage notifies consumers that an allocation engine
// run finished for a period.
type AllocationCompletedMessage struct {
	OwnerID   uuid.UUID       `json:"ownerId"`
	PeriodID  uuid.UUID       `json:"periodId"`
	Pool      decimal.Decimal `json:"pool"`
	Remaining decimal.Decimal `json:"remaining"`
	Timestamp time.Time       `json:"timestamp"`
}

// PublishTransactionPosted announces a freshly posted transaction.
func PublishTransactionPosted(ctx context.Context, id, accountID uuid.UUID, amount decimal.Decimal) {
	if publisher == nil {
		return
	}

	err := publisher.publish(ctx, keyTransactionPosted, TransactionPostedMessage{
		ID:        id,
		AccountID: accountID,
		Amount:    amount,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Error().Str("event", keyTransactionPosted).Err(err).Msg("events")
	}
}

// PublishAllocationCompleted announces a finished allocation engine run.
func PublishAllocationCompleted(ctx context.Context, ownerID, periodID uuid.UUID, pool, remaining decimal.Decimal) {
	if publisher == nil {
		return
	}

	err := publisher.publish(ctx, keyAllocationCompleted, AllocationCompletedMessage{
		OwnerID:   ownerID,
		PeriodID:  periodID,
		Pool:      pool,
		Remaining: remaining,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Error().Str("event", keyAllocationCompleted).Err(err).Msg("events")
	}
}
