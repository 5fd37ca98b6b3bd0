package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id            uuid.UUID
	Title         string
	SelectedModel string
	// State is the serialized dialogue snapshot taken at archive time.
	State     json.RawMessage
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
