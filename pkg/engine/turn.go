package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/rules"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// ApplyTurn resolves rawAction against the session's current location.
// Terminal sessions are returned untouched. An action that is not legal
// here only replaces the narrative with the unavailable message.
func (e *Engine) ApplyTurn(ctx context.Context, id uuid.UUID, rawAction string) (*state.Session, error) {
	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	log := logger.WithSessionID(e.logger, id)
	if s.IsTerminal() {
		log.Debug("Turn ignored for terminal session")
		return s, nil
	}

	loc := s.LocationKey()
	action := world.NormalizeAction(rawAction)
	log.Debug("Applying turn",
		"location", loc,
		"action_raw", rawAction,
		"action", action,
		"allowed", e.table.LegalActions(loc))

	if !e.table.Allowed(loc, action) {
		s.Narrative = rules.UnavailableMessage
		if err := e.save(ctx, s); err != nil {
			return nil, err
		}
		return s, nil
	}

	names, err := e.inventory.Names(ctx, id)
	if err != nil {
		return nil, e.internal("load inventory", err)
	}
	event := e.table.Decide(loc, action, rules.FlagsFromNames(names))

	s.AdjustHealth(event.HealthDelta)
	s.Narrative = event.Message
	if event.NewLocation != "" {
		s.SetLocation(event.NewLocation)
	}
	if s.Health <= state.MinHealth && !textnorm.Contains(event.Message, "игра окончена") {
		s.Narrative = event.Message + state.DeathSuffix
	}

	if err := e.applySideEffects(ctx, id, event); err != nil {
		return nil, err
	}

	log.Debug("Turn applied",
		"health", s.Health,
		"location", s.Location,
		"terminal", s.IsTerminal())

	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// applySideEffects runs the event's inventory changes in a fixed order:
// grant, artifact removal, then sword grant.
func (e *Engine) applySideEffects(ctx context.Context, id uuid.UUID, event rules.Event) error {
	if event.Grant != nil {
		if _, err := e.inventory.GrantIfAbsent(ctx, id, *event.Grant); err != nil {
			return e.internal("grant item", err)
		}
	}
	if event.RemoveArtifact {
		if err := e.inventory.RemoveOneBestEffort(ctx, id, world.ItemArtifact); err != nil {
			return e.internal("remove artifact", err)
		}
	}
	if event.GrantSwordIfMissing {
		sword := state.ItemSpec{Name: world.ItemSword, Description: world.DescSword}
		if _, err := e.inventory.GrantIfAbsent(ctx, id, sword); err != nil {
			return e.internal("grant sword", err)
		}
	}
	return nil
}

// LegalActions lists the actions available at the session's location.
func (e *Engine) LegalActions(ctx context.Context, id uuid.UUID) ([]world.Action, error) {
	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.table.LegalActions(s.LocationKey()), nil
}

// Label returns the display label for an action key, or the key itself
// when it is unknown.
func (e *Engine) Label(actionKey string) string {
	return world.Action(actionKey).Label()
}
