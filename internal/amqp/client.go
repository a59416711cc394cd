// Package amqp publishes ingestion events and delivers ingestion jobs over
// RabbitMQ. The client is optional everywhere it is injected; a nil client
// simply skips messaging.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// jobsRoutingKey carries IngestionJobMessage to the worker queue.
	jobsRoutingKey = "ingest.jobs"
	// completedRoutingKey carries IngestionCompletedMessage to listeners.
	completedRoutingKey = "ingest.completed"

	publishTimeout = 5 * time.Second
)

// Client wraps one AMQP connection and channel bound to the ingestion
// exchange and job queue.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	jobQueueName string
}

// NewClient dials the broker and declares the exchange, job queue and
// binding. The completed-events routing key is declared on the exchange
// only; consumers bind their own queues.
func NewClient(url, exchangeName, jobQueueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		jobQueueName: jobQueueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
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

	_, err = c.channel.QueueDeclare(
		c.jobQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare job queue: %w", err)
	}

	err = c.channel.QueueBind(c.jobQueueName, jobsRoutingKey, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind job queue: %w", err)
	}

	return nil
}

// PublishIngestionJob enqueues a statement file for the worker.
func (c *Client) PublishIngestionJob(ctx context.Context, msg *IngestionJobMessage) error {
	if err := c.publish(ctx, jobsRoutingKey, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published ingestion job",
		"run_id", msg.RunID,
		"property_id", msg.PropertyID,
		"path", msg.Path)
	return nil
}

// PublishIngestionCompleted announces a committed run.
func (c *Client) PublishIngestionCompleted(ctx context.Context, msg *IngestionCompletedMessage) error {
	if err := c.publish(ctx, completedRoutingKey, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published ingestion completed event",
		"run_id", msg.RunID,
		"property_id", msg.PropertyID,
		"accounts_upserted", msg.AccountsUpserted,
		"monthly_data_upserted", msg.MonthlyDataUpserted)
	return nil
}

type jsonMessage interface {
	ToJSON() ([]byte, error)
}

func (c *Client) publish(ctx context.Context, routingKey string, msg jsonMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeIngestionJobs delivers job messages to handler until ctx is
// cancelled. Messages that fail to decode are rejected without requeue;
// handler errors requeue the message.
func (c *Client) ConsumeIngestionJobs(ctx context.Context, handler func(context.Context, *IngestionJobMessage) error) error {
	msgs, err := c.channel.Consume(
		c.jobQueueName,
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming ingestion jobs", "queue", c.jobQueueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping job consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			msg, err := IngestionJobMessageFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal job message", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to handle ingestion job",
					"error", err,
					"run_id", msg.RunID,
					"property_id", msg.PropertyID)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

// Close shuts down the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
