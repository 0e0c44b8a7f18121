package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Dislike is what gets stored per disliked place id.
type Dislike struct {
	Name string `json:"name,omitempty"`
}

type User struct {
	ID                uuid.UUID          `json:"id"`
	Name              *string            `json:"name,omitempty"`
	Email             *string            `json:"email,omitempty"`
	Phone             *string            `json:"phone,omitempty"`
	PasswordHash      string             `json:"-"`
	Preferences       json.RawMessage    `json:"preferences"`
	Dislikes          map[string]Dislike `json:"dislikes"`
	LocationAwareness bool               `json:"location_awareness"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// UserProfile is what /auth/me returns.
type UserProfile struct {
	ID                uuid.UUID          `json:"id"`
	Email             *string            `json:"email"`
	Phone             *string            `json:"phone"`
	Preferences       json.RawMessage    `json:"preferences"`
	Dislikes          map[string]Dislike `json:"dislikes"`
	LocationAwareness bool               `json:"location_awareness"`
}

func (u *User) Profile() UserProfile {
	prefs := u.Preferences
	if len(prefs) == 0 {
		prefs = json.RawMessage("{}")
	}
	dislikes := u.Dislikes
	if dislikes == nil {
		dislikes = map[string]Dislike{}
	}
	return UserProfile{
		ID:                u.ID,
		Email:             u.Email,
		Phone:             u.Phone,
		Preferences:       prefs,
		Dislikes:          dislikes,
		LocationAwareness: u.LocationAwareness,
	}
}

// PreferencesUpdate replaces the stored preferences document wholesale.
type PreferencesUpdate struct {
	Preferences json.RawMessage `json:"preferences" swaggertype:"object"`
}

type DislikeAction string

const (
	DislikeAdd    DislikeAction = "add"
	DislikeRemove DislikeAction = "remove"
)

type DislikeUpdate struct {
	PlaceID string        `json:"place_id" example:"4b0588f7f964a52079c322e3"`
	Name    string        `json:"name,omitempty" example:"Loud Cafe"`
	Action  DislikeAction `json:"action" example:"add"`
}

type HistorySession struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Stops     []PlannedTask `json:"stops"`
	CreatedAt time.Time     `json:"created_at"`
}

type HistoryResponse struct {
	Sessions []HistorySession `json:"sessions"`
}

type StatusMessage struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message"`
}
