package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Note is the wire representation of a note.
type Note struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	OwnerId   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// noteFields is what the client sends; the server ignores anything else.
type noteFields struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

func fieldsOf(n *Note) noteFields {
	return noteFields{Title: n.Title, Body: n.Body, Category: n.Category}
}

func notePath(id uuid.UUID) string {
	return "/notes/" + id.String()
}

// GetNotes lists the caller's notes, newest first.
func (c *Client) GetNotes(ctx context.Context) (*Response[[]Note], error) {
	return call[[]Note](ctx, c, http.MethodGet, "/notes", nil)
}

func (c *Client) GetNote(ctx context.Context, id uuid.UUID) (*Response[Note], error) {
	return call[Note](ctx, c, http.MethodGet, notePath(id), nil)
}

// CreateNote expects 201 on success and 422 with field messages otherwise.
func (c *Client) CreateNote(ctx context.Context, note *Note) (*Response[Note], error) {
	if note == nil {
		return nil, ErrNilNote
	}
	return call[Note](ctx, c, http.MethodPost, "/notes", fieldsOf(note))
}

// UpdateNote sends the note's title, body and category to PATCH /notes/:id.
func (c *Client) UpdateNote(ctx context.Context, note *Note) (*Response[Note], error) {
	if note == nil || note.Id == uuid.Nil {
		return nil, ErrMissingNoteID
	}
	return call[Note](ctx, c, http.MethodPatch, notePath(note.Id), fieldsOf(note))
}

// DeleteNote expects 204 on success.
func (c *Client) DeleteNote(ctx context.Context, id uuid.UUID) (*Response[struct{}], error) {
	return call[struct{}](ctx, c, http.MethodDelete, notePath(id), nil)
}
