// Package state defines the persisted shape of a quest: the session a
// player advances turn by turn and the items held in its inventory.
package state

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

const (
	MaxHealth = 100
	MinHealth = 0
)

// OpeningNarrative is shown on a new or restarted session.
const OpeningNarrative = "Вы просыпаетесь в древнем лесу. Вокруг густая листва и странные звуки. Выберите путь."

// RiddleMarker prefixes the narrative while a riddle question is open.
const RiddleMarker = "[RIDDLE]"

// DeathSuffix is appended when a turn drops health to zero and the event
// text did not already end the game.
const DeathSuffix = " Вы умерли. Игра окончена."

// TerminalMarkers end the game when found in the narrative (case-insensitive).
// Narrative text is the only record of a finished game, so these literals
// must not change.
var TerminalMarkers = []string{"конец!", "игра окончена"}

// Session is one player's live game instance.
type Session struct {
	ID        uuid.UUID `json:"id"`                   // Assigned on creation, immutable
	OwnerID   string    `json:"owner_id"`             // Owning user, never changed
	Location  string    `json:"location"`             // Display name; see LocationKey
	Narrative string    `json:"narrative"`            // Latest event text, may carry markers
	Health    int       `json:"health"`               // Always within [MinHealth, MaxHealth]
	CreatedAt time.Time `json:"created_at,omitempty"` // Set by storage on first save
	UpdatedAt time.Time `json:"updated_at,omitempty"` // Set by storage on every save
}

// NewSession creates a fresh session at the forest with full health.
func NewSession(ownerID string) *Session {
	s := &Session{
		ID:      uuid.New(),
		OwnerID: ownerID,
	}
	s.Reset()
	return s
}

// Reset puts health, location and narrative back to their opening values.
// ID, owner and timestamps are kept.
func (s *Session) Reset() {
	s.Health = MaxHealth
	s.Location = world.Forest.DisplayName()
	s.Narrative = OpeningNarrative
}

// LocationKey resolves the stored display name to its canonical key.
func (s *Session) LocationKey() world.Location {
	return world.ResolveLocation(s.Location)
}

// SetLocation stores the display name of loc.
func (s *Session) SetLocation(loc world.Location) {
	s.Location = loc.DisplayName()
}

// IsTerminal reports whether the session can no longer accept turns:
// the player is dead or the narrative carries an end marker.
func (s *Session) IsTerminal() bool {
	if s.Health <= MinHealth {
		return true
	}
	return ContainsTerminalMarker(s.Narrative)
}

// RiddleActive reports whether the narrative is showing the riddle prompt.
func (s *Session) RiddleActive() bool {
	return strings.Contains(s.Narrative, RiddleMarker)
}

// AdjustHealth adds delta and clamps the result into the valid range.
func (s *Session) AdjustHealth(delta int) int {
	s.Health = Clamp(s.Health+delta, MinHealth, MaxHealth)
	return s.Health
}

// ContainsTerminalMarker reports whether text holds any terminal marker.
func ContainsTerminalMarker(text string) bool {
	for _, m := range TerminalMarkers {
		if textnorm.Contains(text, m) {
			return true
		}
	}
	return false
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
