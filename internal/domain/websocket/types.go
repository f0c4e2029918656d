// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Session events
	EventTypeForceLogout EventType = "session:force_logout"

	// Review events
	EventTypeReviewCreated EventType = "review:created"
	EventTypeReviewList    EventType = "review:list"

	// Admin events
	EventTypeAccountUpdated EventType = "admin:account_updated"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType              `json:"type"`
	Data      interface{}            `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ID        string                 `json:"id,omitempty"`
}

// Subscription channels that clients can subscribe to
type ChannelType string

const (
	ChannelSystem  ChannelType = "system"
	ChannelReviews ChannelType = "reviews"
	ChannelAdmin   ChannelType = "admin"
)

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SessionEventData for session events
type SessionEventData struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

// ReviewEventData tells a submitter someone reviewed their book
type ReviewEventData struct {
	ReviewUID string `json:"review_uid"`
	BookUID   string `json:"book_uid"`
	BookTitle string `json:"book_title"`
	Rating    int    `json:"rating"`
	ReviewBy  string `json:"review_by"`
}

// AccountEventData tells admins an account's role or verification changed
type AccountEventData struct {
	UserUID    string `json:"user_uid"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

// Helper to create messages
func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
