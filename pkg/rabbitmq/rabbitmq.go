package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"quickshelf/internal/models"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/streadway/amqp"
)

// ErrMalformedEvent marks a delivery whose body is not a product event.
// Such deliveries are dropped instead of requeued.
var ErrMalformedEvent = errors.New("malformed product event")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL            string
	Exchange       string
	Queue          string
	ConnectTimeout time.Duration
}

// NewClient connects to RabbitMQ, retrying with exponential backoff, and
// declares the product exchange and the queue bound to it.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	dial := func() (*amqp.Connection, error) {
		return amqp.Dial(cfg.URL)
	}
	opts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Printf("RabbitMQ not ready (%v), retrying in %s", err, next)
		}),
	}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(cfg.ConnectTimeout))
	}
	conn, err := backoff.Retry(ctx, dial, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("RabbitMQ client connected, exchange %s bound to queue %s", cfg.Exchange, cfg.Queue)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, "product.*", exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishProductEvent publishes event to the product exchange, routed by its type.
func (c *Client) PublishProductEvent(event models.ProductEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	err = c.channel.Publish(
		c.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// ConsumeProductEvents starts a goroutine delivering messages from the
// product queue to handler. Messages are acked when handler succeeds, dropped
// when it reports ErrMalformedEvent and requeued otherwise.
func (c *Client) ConsumeProductEvents(handler func(event models.ProductEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
		log.Println("RabbitMQ delivery channel closed, consumer stopped")
	}()

	return nil
}

func handleDelivery(msg amqp.Delivery, handler func(event models.ProductEvent) error) {
	event, err := DecodeProductEvent(msg.Body)
	if err == nil {
		err = handler(event)
	}

	if err != nil {
		requeue := !errors.Is(err, ErrMalformedEvent)
		log.Printf("Error processing message %d (requeue=%t): %v", msg.DeliveryTag, requeue, err)
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			log.Printf("Error nacking message %d: %v", msg.DeliveryTag, nackErr)
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
	}
}

// DecodeProductEvent parses a delivery body.
func DecodeProductEvent(body []byte) (models.ProductEvent, error) {
	var event models.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" || event.ProductID == "" {
		return event, fmt.Errorf("%w: missing type or productId", ErrMalformedEvent)
	}
	return event, nil
}

// LogProductEvent is the default consumer handler.
func LogProductEvent(event models.ProductEvent) error {
	log.Printf("Received %s for product %s at %s", event.Type, event.ProductID, event.OccurredAt.Format(time.RFC3339))
	return nil
}
