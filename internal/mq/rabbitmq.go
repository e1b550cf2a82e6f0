package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jobseeker-app/apiserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultContentType = "application/octet-stream"
	allEventsBinding   = "#"
)

// RabbitMQClient treats every channel name as a topic exchange. Messages are
// routed by their event_type attribute, so a consumer can bind to one kind
// of ledger change or to all of them.
type RabbitMQClient struct {
	conn            *amqp.Connection
	queueDurable    bool
	queueAutoDelete bool
	prefetch        int

	mu        sync.Mutex
	publisher *amqp.Channel
	confirms  chan amqp.Confirmation
	declared  map[string]bool
}

// NewRabbitMQClient dials the broker and opens a publishing channel in
// confirm mode.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	return &RabbitMQClient{
		conn:            conn,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
		prefetch:        cfg.PrefetchCount,
		publisher:       ch,
		confirms:        ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		declared:        make(map[string]bool),
	}, nil
}

// Publish routes data through the exchange named channel and waits for the
// broker to confirm it.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}

	contentType := defaultContentType
	routingKey := ""
	headers := amqp.Table{}
	for key, value := range attrs {
		switch key {
		case attrContentType:
			contentType = value
		case attrEventType:
			routingKey = value
			headers[key] = value
		default:
			headers[key] = value
		}
	}

	deliveryMode := amqp.Transient
	if r.queueDurable {
		deliveryMode = amqp.Persistent
	}
	messageID := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.declareExchange(r.publisher, channel); err != nil {
		return "", err
	}
	err := r.publisher.PublishWithContext(ctx, channel, routingKey, false, false, amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: deliveryMode,
		MessageId:    messageID,
		Headers:      headers,
		Body:         data,
	})
	if err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case confirm, ok := <-r.confirms:
		if !ok {
			return "", errors.New("rabbitmq publisher channel closed")
		}
		if !confirm.Ack {
			return "", fmt.Errorf("rabbitmq rejected message %s", messageID)
		}
	}
	return messageID, nil
}

// Subscribe binds a private queue to every event on the exchange and
// consumes it until ctx is done. Handler errors requeue the delivery.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if r.prefetch > 0 {
		if err := ch.Qos(r.prefetch, 0, false); err != nil {
			return err
		}
	}
	if err := r.declareExchange(ch, channel); err != nil {
		return err
	}

	queue, err := ch.QueueDeclare(channel+"."+uuid.NewString(), false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue.Name, allEventsBinding, channel, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			attrs := headersToAttributes(delivery.Headers)
			if delivery.ContentType != "" {
				if attrs == nil {
					attrs = make(map[string]string, 1)
				}
				attrs[attrContentType] = delivery.ContentType
			}
			message := Message{ID: delivery.MessageId, Data: delivery.Body, Attributes: attrs}
			if err := handler(ctx, message); err != nil {
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.publisher != nil {
		_ = r.publisher.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// declareExchange is idempotent on the broker; the cache only saves round
// trips on the publishing channel.
func (r *RabbitMQClient) declareExchange(ch *amqp.Channel, name string) error {
	if ch == r.publisher && r.declared[name] {
		return nil
	}
	if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, r.queueDurable, r.queueAutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	if ch == r.publisher {
		r.declared[name] = true
	}
	return nil
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	return attrs
}
