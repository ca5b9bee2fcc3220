package state

import (
	"time"

	"github.com/google/uuid"
)

// Item is one inventory entry owned by a session. Several items may share
// a name; stacking is by duplication, not by count.
type Item struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ItemSpec describes an item to be granted, before it has an identity.
type ItemSpec struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// NewItem builds an unsaved item for sessionID from spec.
func NewItem(sessionID uuid.UUID, spec ItemSpec) *Item {
	return &Item{
		SessionID:   sessionID,
		Name:        spec.Name,
		Description: spec.Description,
	}
}

// ItemNames returns the names of items in order.
func ItemNames(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}
