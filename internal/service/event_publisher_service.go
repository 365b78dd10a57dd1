package service

import (
	"context"
	"encoding/json"
	"fmt"

	"notekeeper-be/internal/dto"
	"notekeeper-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// INoteEventPublisher hands note lifecycle events to the in-process bus.
type INoteEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type noteEventPublisher struct {
	topic     string
	publisher message.Publisher
}

func NewNoteEventPublisher(topic string, publisher message.Publisher) INoteEventPublisher {
	return &noteEventPublisher{
		topic:     topic,
		publisher: publisher,
	}
}

func (p *noteEventPublisher) Publish(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	noteId, _ := uuid.Parse(fmt.Sprint(payload["note_id"]))
	ownerId, _ := uuid.Parse(fmt.Sprint(payload["owner_id"]))
	title, _ := payload["title"].(string)

	body, err := json.Marshal(dto.NoteEventMessage{
		Type:     event.EventType(),
		NoteId:   noteId,
		OwnerId:  ownerId,
		Title:    title,
		Occurred: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal note event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.EventType())

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.EventType(), p.topic, err)
	}
	return nil
}
