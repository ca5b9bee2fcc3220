// Package world holds the fixed vocabulary of the quest: the locations a
// player can stand in, the actions they can choose, and the names of the
// items the rules care about.
package world

import (
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/textnorm"
)

// Location is the canonical key of a place in the quest.
type Location string

const (
	Forest  Location = "forest"
	Castle  Location = "castle"
	Cave    Location = "cave"
	Village Location = "village"
)

// UnknownLocationName is shown for a key outside the closed set.
const UnknownLocationName = "неизвестно"

type locationDef struct {
	key     Location
	display string
}

// Order matters: ResolveLocation returns the first match.
var locationDefs = []locationDef{
	{Forest, "лес"},
	{Castle, "замок"},
	{Cave, "пещера"},
	{Village, "деревня"},
}

// Locations returns every known location in registry order.
func Locations() []Location {
	out := make([]Location, 0, len(locationDefs))
	for _, d := range locationDefs {
		out = append(out, d.key)
	}
	return out
}

// ResolveLocation maps a free-text location (usually the stored display
// name) to its canonical key. The first key whose display name, or the key
// itself, appears in the folded text wins. Empty or unrecognized input
// resolves to Forest.
func ResolveLocation(display string) Location {
	s := textnorm.Fold(display)
	if s == "" {
		return Forest
	}
	for _, d := range locationDefs {
		if strings.Contains(s, d.display) || strings.Contains(s, string(d.key)) {
			return d.key
		}
	}
	return Forest
}

// DisplayName returns the player-facing name of the location.
func (l Location) DisplayName() string {
	for _, d := range locationDefs {
		if d.key == l {
			return d.display
		}
	}
	return UnknownLocationName
}

// Valid reports whether l is one of the registry's keys.
func (l Location) Valid() bool {
	for _, d := range locationDefs {
		if d.key == l {
			return true
		}
	}
	return false
}
