package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateNoteRequest lists every field a client may set on a new note.
// Anything else in the payload (id, owner, timestamps) is dropped on decode.
type CreateNoteRequest struct {
	Title    string `json:"title" form:"title" validate:"notblank,pgtext,max=255"`
	Body     string `json:"body" form:"body" validate:"pgtext,max=65535"`
	Category string `json:"category" form:"category" validate:"pgtext,max=255"`
}

// UpdateNoteRequest is a partial update: nil fields keep their stored value.
type UpdateNoteRequest struct {
	Title    *string `json:"title" form:"title" validate:"omitnil,notblank,pgtext,max=255"`
	Body     *string `json:"body" form:"body" validate:"omitnil,pgtext,max=65535"`
	Category *string `json:"category" form:"category" validate:"omitnil,pgtext,max=255"`
}

func (r *UpdateNoteRequest) IsEmpty() bool {
	return r.Title == nil && r.Body == nil && r.Category == nil
}

type NoteResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	OwnerId   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteEventMessage is the payload carried on the note events topic.
type NoteEventMessage struct {
	Type     string    `json:"type"`
	NoteId   uuid.UUID `json:"note_id"`
	OwnerId  uuid.UUID `json:"owner_id"`
	Title    string    `json:"title,omitempty"`
	Occurred time.Time `json:"occurred_at"`
}
