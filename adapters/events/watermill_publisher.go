package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/edushare/auth/ports"
)

// SessionsTopic is the topic session lifecycle events are published on.
const SessionsTopic = "auth.sessions"

// Event types carried in SessionEvent.Type.
const (
	EventLoggedOut           = "logged_out"
	EventSessionsInvalidated = "sessions_invalidated"
)

// SessionEvent is the JSON payload published for every lifecycle change.
type SessionEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	At     int64  `json:"at"`
}

// WatermillPublisher implements the EventPublisher port on a watermill
// message publisher.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a publisher on the given watermill backend.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishLoggedOut(ctx context.Context, userID uuid.UUID) error {
	return p.publish(EventLoggedOut, userID)
}

func (p *WatermillPublisher) PublishSessionsInvalidated(ctx context.Context, userID uuid.UUID) error {
	return p.publish(EventSessionsInvalidated, userID)
}

func (p *WatermillPublisher) publish(eventType string, userID uuid.UUID) error {
	event := SessionEvent{
		Type:   eventType,
		UserID: userID.String(),
		At:     time.Now().UnixMilli(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.publisher.Publish(SessionsTopic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}
