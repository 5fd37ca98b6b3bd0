package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChatEntryDTO is one line of a conversation transcript.
type ChatEntryDTO struct {
	Role string `json:"role"`
	Chat string `json:"chat"`
}

type SendChatRequest struct {
	SessionId string `json:"session_id" form:"session_id"`
	Message   string `json:"message" form:"message"`
	// Model switches the session when set and no message/image accompanies it.
	Model string `json:"model,omitempty" form:"model" validate:"omitempty,oneof=diabetes movie"`
}

type SendChatResponse struct {
	SessionId     string `json:"session_id"`
	SelectedModel string `json:"selected_model,omitempty"`
	// Messages holds only the entries appended by this turn, in order.
	Messages []ChatEntryDTO `json:"messages"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

type ClearHistoryRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}

// RecommendRequest serves the stateless recommend endpoint, which bypasses
// the dialogue and returns the raw resolver outcome.
type RecommendRequest struct {
	Title string `json:"title" validate:"required"`
}

type RecommendResponse struct {
	Status  string   `json:"status"`
	Titles  []string `json:"titles,omitempty"`
	Posters []string `json:"posters,omitempty"`
	Options []string `json:"options,omitempty"`
	Message string   `json:"message,omitempty"`
}

// PublishArchiveTurnMessage is the payload emitted after every completed turn
// and consumed by the archiver.
type PublishArchiveTurnMessage struct {
	SessionId     string          `json:"session_id"`
	Title         string          `json:"title"`
	SelectedModel string          `json:"selected_model"`
	State         json.RawMessage `json:"state"`
	Messages      []ChatEntryDTO  `json:"messages"`
}
