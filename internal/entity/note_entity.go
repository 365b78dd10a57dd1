package entity

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID
	Title     string
	Body      string
	Category  string
	OwnerId   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
