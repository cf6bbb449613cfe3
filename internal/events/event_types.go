package events

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered  EventType = "user_registered"
	EventLoginSucceeded  EventType = "login_succeeded"
	EventLoginFailed     EventType = "login_failed"
	EventTokenRefreshed  EventType = "token_refreshed"
	EventPasswordChanged EventType = "password_changed"
	EventUserDeleted     EventType = "user_deleted"
)

// Event represents a security-relevant occurrence emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Email     string      `json:"email,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload records why a login attempt was rejected.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// UserRegisteredPayload carries the initial role of the new account.
type UserRegisteredPayload struct {
	Role domain.Role `json:"role"`
}

// TokenRefreshedPayload links the rotation to the redeemed token.
type TokenRefreshedPayload struct {
	RedeemedJTI string `json:"redeemed_jti"`
}
