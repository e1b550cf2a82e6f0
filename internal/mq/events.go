package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType names a ledger change.
type EventType string

const (
	EventApplicationCreated       EventType = "application.created"
	EventApplicationUpdated       EventType = "application.updated"
	EventApplicationStatusChanged EventType = "application.status_changed"
	EventApplicationDeleted       EventType = "application.deleted"
	EventDocumentGenerated        EventType = "document.generated"
)

const (
	attrEventType   = "event_type"
	attrContentType = "content_type"
	attrOrderingKey = "ordering_key"
	jsonContentType = "application/json"
)

// Event is the JSON body published for every ledger change.
type Event struct {
	Type           EventType `json:"type"`
	UserID         string    `json:"user_id"`
	ApplicationID  string    `json:"application_id,omitempty"`
	JobID          string    `json:"job_id,omitempty"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	DocumentKind   string    `json:"document_kind,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher publishes ledger events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventPublisher encodes events as JSON and sends them on one channel.
type EventPublisher struct {
	queue   *MQ
	channel string
}

// NewEventPublisher returns a publisher writing to channel. A nil queue
// yields a publisher that drops every event.
func NewEventPublisher(queue *MQ, channel string) Publisher {
	if queue == nil {
		return NopPublisher{}
	}
	return &EventPublisher{queue: queue, channel: channel}
}

func (p *EventPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	attrs := map[string]string{
		attrEventType:   string(event.Type),
		attrContentType: jsonContentType,
	}
	if event.ApplicationID != "" {
		attrs[attrOrderingKey] = event.ApplicationID
	}
	id, err := p.queue.Publish(ctx, p.channel, data, attrs)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	log.Debug().Str("event_type", string(event.Type)).Str("message_id", id).Msg("event published")
	return nil
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// DecodeEvent parses a message produced by EventPublisher.
func DecodeEvent(msg Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	return event, nil
}
