package state

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func TestNewSession(t *testing.T) {
	s := NewSession("owner-1")

	if s.ID == uuid.Nil {
		t.Error("expected an assigned ID")
	}
	if s.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q", s.OwnerID)
	}
	if s.Health != MaxHealth {
		t.Errorf("Health = %d, want %d", s.Health, MaxHealth)
	}
	if s.LocationKey() != world.Forest {
		t.Errorf("LocationKey() = %q, want forest", s.LocationKey())
	}
	if s.Narrative != OpeningNarrative {
		t.Errorf("Narrative = %q", s.Narrative)
	}
	if s.IsTerminal() || s.RiddleActive() {
		t.Error("new session should be neither terminal nor in a riddle")
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession("owner-1")
	id := s.ID
	s.Health = 5
	s.SetLocation(world.Castle)
	s.Narrative = "anything"

	s.Reset()

	if s.ID != id || s.OwnerID != "owner-1" {
		t.Error("Reset must keep identity")
	}
	if s.Health != MaxHealth || s.Location != "лес" || s.Narrative != OpeningNarrative {
		t.Errorf("Reset left %+v", s)
	}
}

func TestSession_IsTerminal(t *testing.T) {
	tests := []struct {
		name      string
		health    int
		narrative string
		want      bool
	}{
		{"alive plain text", 50, "Вы в деревне.", false},
		{"dead", 0, "Вы в деревне.", true},
		{"negative health", -10, "", true},
		{"victory marker", 80, "С мечом вы побеждаете дракона после тяжёлой схватки. Конец!", true},
		{"game over marker upper case", 10, "ИГРА ОКОНЧЕНА", true},
		{"end without exclamation", 10, "конец пути", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Health: tt.health, Narrative: tt.narrative}
			if got := s.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSession_AdjustHealth(t *testing.T) {
	tests := []struct {
		start, delta, want int
	}{
		{100, 30, 100},
		{75, 30, 100},
		{90, -30, 60},
		{20, -50, 0},
		{0, -10, 0},
		{50, 0, 50},
	}

	for _, tt := range tests {
		s := &Session{Health: tt.start}
		if got := s.AdjustHealth(tt.delta); got != tt.want {
			t.Errorf("AdjustHealth(%d) from %d = %d, want %d", tt.delta, tt.start, got, tt.want)
		}
		if s.Health != tt.want {
			t.Errorf("Health = %d, want %d", s.Health, tt.want)
		}
	}
}

func TestSession_RiddleActive(t *testing.T) {
	s := &Session{Narrative: RiddleMarker + " Загадка: ..."}
	if !s.RiddleActive() {
		t.Error("expected riddle to be active")
	}
}

func TestItemNames(t *testing.T) {
	sid := uuid.New()
	items := []Item{
		*NewItem(sid, ItemSpec{Name: "меч"}),
		*NewItem(sid, ItemSpec{Name: "зелье", Description: "Зелье лечения"}),
	}
	names := ItemNames(items)
	if len(names) != 2 || names[0] != "меч" || names[1] != "зелье" {
		t.Errorf("ItemNames() = %v", names)
	}
	if items[1].SessionID != sid || items[1].Description != "Зелье лечения" {
		t.Errorf("NewItem did not copy spec: %+v", items[1])
	}
}
