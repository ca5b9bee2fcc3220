package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeSessionUpdated EventType = "session.updated"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Channel returns the Pub/Sub channel carrying events for a session.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("quest-events:%s", sessionID.String())
}

// Broadcaster publishes session events to Redis Pub/Sub.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// SessionUpdated publishes a session.updated event. It satisfies the
// engine's Notifier interface.
func (b *Broadcaster) SessionUpdated(ctx context.Context, s *state.Session) error {
	event := Event{
		Type:      EventTypeSessionUpdated,
		SessionID: s.ID.String(),
		Data: map[string]any{
			"location": s.Location,
			"health":   s.Health,
			"terminal": s.IsTerminal(),
		},
	}
	return b.publishToSession(ctx, s.ID, event)
}

// Subscribe opens a subscription to a session's event channel. The caller
// closes the returned PubSub.
func (b *Broadcaster) Subscribe(ctx context.Context, sessionID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(sessionID))
}

// publishToSession publishes an event to the session-specific channel
func (b *Broadcaster) publishToSession(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
