package message_broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	broker "github.com/desync-labs/tx-manager/boc-submitter/internal/message-broker/interface"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

var _ broker.MessageBrokerInterface = (*RabbitMQ)(nil)

// RabbitMQ implements the MessageBroker interface for RabbitMQ.
type RabbitMQ struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	ctx       context.Context
	amqpURI   string
	exchanges *Exchanges
}

func NewRabbitMQ(amqpURI string, ctx context.Context) (*RabbitMQ, error) {
	r := &RabbitMQ{
		ctx:       ctx,
		amqpURI:   amqpURI,
		exchanges: InitExchanges(),
	}

	if err := r.connect(); err != nil {
		return nil, err
	}

	if err := r.setupRouting(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// PublishObject serializes data as JSON and publishes it to exchange with
// the routing key for priority.
func (r *RabbitMQ) PublishObject(exchange string, data interface{}, priority int, ctx context.Context) error {

	ex, err := r.exchanges.GetExchange(exchange)
	if err != nil {
		return fmt.Errorf("failed to get exchange: %w", err)
	}

	rk, err := ex.RoutingKey(priority)
	if err != nil {
		return fmt.Errorf("failed to get routing key from priority: %w", err)
	}

	messageData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize message data: %w", err)
	}

	messageID := uuid.NewString()
	err = r.ch.Publish(
		ex.exchangeName, // exchange
		rk,              // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         messageData,
			Priority:     uint8(priority),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	slog.Debug("Publishing message to message broker",
		"exchange", ex.Name(),
		"routing_key", rk,
		"message_id", messageID,
	)

	return nil
}

// ListenForMessages consumes the queue bound to exchangeName for priority
// and triggers the callback for every delivery. Deliveries the callback
// fails are nacked and requeued.
func (r *RabbitMQ) ListenForMessages(exchangeName string, priority int, callback broker.MessageHandler) error {

	ex, err := r.exchanges.GetExchange(exchangeName)
	if err != nil {
		return err
	}

	queueName, err := ex.QueueForPriority(priority)
	if err != nil {
		return err
	}

	msgs, err := r.ch.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack (set to false for manual ack)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer for queue %s: %w", queueName, err)
	}
	slog.Debug("Consumer registered", "exchange", ex.Name(), "queue", queueName)

	go func() {
		for {
			select {
			case <-r.ctx.Done():
				slog.Info("Shutting down consumer", "queue", queueName)
				return
			case msg, ok := <-msgs:
				if !ok {
					slog.Info("Message channel closed", "queue", queueName)
					return
				}

				if err := callback(msg.Body, r.ctx); err != nil {
					slog.Warn("Requeueing message", "queue", queueName, "error", err)
					if err := msg.Nack(false, true); err != nil {
						slog.Error("Failed to requeue message", "queue", queueName, "error", err)
					}
					continue
				}

				// Acknowledge the message after processing
				if err := msg.Ack(false); err != nil {
					slog.Error("Failed to acknowledge message", "queue", queueName, "error", err)
				}
			}
		}
	}()

	return nil
}

// Close closes the RabbitMQ connection and channel.
func (r *RabbitMQ) Close() {
	if r.ch != nil {
		r.ch.Close()
		slog.Debug("RabbitMQ channel closed")
	}
	if r.conn != nil {
		r.conn.Close()
		slog.Debug("RabbitMQ connection closed")
	}
}

// connect establishes a connection to RabbitMQ
func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.amqpURI)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	r.conn = conn
	r.ch = ch
	return nil
}

func (r *RabbitMQ) setupRouting() error {

	for _, ex := range r.exchanges.Exchanges {
		err := r.ch.ExchangeDeclare(
			ex.exchangeName, // name
			"direct",        // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", ex.exchangeName, err)
		}

		// One durable queue per routing key
		for _, rk := range ex.routingKeys {
			queue, err := r.ch.QueueDeclare(
				ex.Queue(rk), // name
				true,         // durable
				false,        // delete when unused
				false,        // exclusive
				false,        // no-wait
				nil,          // arguments
			)
			if err != nil {
				return fmt.Errorf("failed to declare queue %s: %w", ex.Queue(rk), err)
			}

			err = r.ch.QueueBind(
				queue.Name,      // queue name
				rk,              // routing key
				ex.exchangeName, // exchange
				false,
				nil,
			)
			if err != nil {
				return fmt.Errorf("failed to bind queue to exchange %s with routing key %s: %w",
					ex.exchangeName, rk, err)
			}
		}
	}

	return nil
}
