// Package rules decides what happens when a player takes an action at a
// location. The decision table is pure apart from an injected Roller.
package rules

import (
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Event is the outcome of one action. It lives for a single turn and is
// folded into the session by the engine.
type Event struct {
	Message             string
	HealthDelta         int
	Grant               *state.ItemSpec // nil when nothing is granted
	NewLocation         world.Location  // empty when the player stays
	RemoveArtifact      bool
	GrantSwordIfMissing bool
}

// Flags are the inventory facts the decision table depends on.
type Flags struct {
	HasSword      bool
	HasArtifact   bool
	HasLightBlade bool
}

// FlagsFromNames derives Flags from a set of folded item names.
func FlagsFromNames(names map[string]bool) Flags {
	return Flags{
		HasSword:      names[textnorm.Fold(world.ItemSword)],
		HasArtifact:   names[textnorm.Fold(world.ItemArtifact)],
		HasLightBlade: names[textnorm.Fold(world.ItemLightBlade)],
	}
}
