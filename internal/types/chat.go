package types

import "time"

// ChatLocation uses pointers so a missing coordinate can be told apart from zero.
type ChatLocation struct {
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Name string   `json:"name,omitempty"`
}

type ChatRequest struct {
	Message  string        `json:"message"`
	UserID   string        `json:"user_id,omitempty"`
	Location *ChatLocation `json:"location,omitempty"`
}

type ChatUserInfo struct {
	Name        *string       `json:"name"`
	Location    *ChatLocation `json:"location"`
	Preferences []string      `json:"preferences"`
}

type ChatResponse struct {
	Response string       `json:"response"`
	UserID   string       `json:"user_id"`
	UserInfo ChatUserInfo `json:"user_info"`
}

type ChatUserResponse struct {
	UserID   string       `json:"user_id"`
	UserInfo ChatUserInfo `json:"user_info"`
}

type ChatClearResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type ChatHealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
