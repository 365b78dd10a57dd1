package service

import (
	"context"
	"encoding/json"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/metrics"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const eventRelayModule = "NoteEventRelay"

// EventSink is the external bus the relay forwards to (NATS JetStream in
// production).
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type INoteEventRelay interface {
	// Run subscribes to the note events topic and forwards in the background
	// until ctx is cancelled or the subscriber is closed.
	Run(ctx context.Context) error
}

type noteEventRelay struct {
	subscriber message.Subscriber
	topic      string
	sink       EventSink
	metrics    *metrics.Manager
	logger     logger.ILogger
}

// NewNoteEventRelay builds the relay. A nil sink makes the relay log events
// and drop them.
func NewNoteEventRelay(
	subscriber message.Subscriber,
	topic string,
	sink EventSink,
	metrics *metrics.Manager,
	log logger.ILogger,
) INoteEventRelay {
	return &noteEventRelay{
		subscriber: subscriber,
		topic:      topic,
		sink:       sink,
		metrics:    metrics,
		logger:     log,
	}
}

func (r *noteEventRelay) Run(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			r.process(ctx, msg)
		}
	}()

	return nil
}

func (r *noteEventRelay) process(ctx context.Context, msg *message.Message) {
	// Ack everything: a poison message must not be redelivered forever.
	defer msg.Ack()

	var payload dto.NoteEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		r.logger.Error(eventRelayModule, "Failed to decode note event", map[string]interface{}{
			"message_uuid": msg.UUID,
			"error":        err,
		})
		r.metrics.NoteEvent("unknown", "invalid")
		return
	}

	evt := events.NewNoteEvent(payload.Type, payload.NoteId, payload.OwnerId, payload.Title, payload.Occurred)

	if r.sink == nil {
		r.logger.Debug(eventRelayModule, "Note event (no sink configured)", map[string]interface{}{
			"type":    payload.Type,
			"note_id": payload.NoteId.String(),
		})
		r.metrics.NoteEvent(payload.Type, "skipped")
		return
	}

	if err := r.sink.Publish(ctx, evt); err != nil {
		r.logger.Warn(eventRelayModule, "Failed to relay note event", map[string]interface{}{
			"type":    payload.Type,
			"note_id": payload.NoteId.String(),
			"error":   err,
		})
		r.metrics.NoteEvent(payload.Type, "error")
		return
	}

	r.metrics.NoteEvent(payload.Type, "ok")
}
