package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/rules"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// AnswerRiddle checks an answer to the cave riddle. Outside the cave the
// session is returned unchanged. A right answer grants the artifact; a
// wrong one costs health.
func (e *Engine) AnswerRiddle(ctx context.Context, id uuid.UUID, rawAnswer string) (*state.Session, error) {
	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.LocationKey() != world.Cave {
		return s, nil
	}

	if rules.CheckRiddleAnswer(rawAnswer) {
		s.Narrative = rules.RiddleCorrectMessage
		artifact := state.ItemSpec{Name: world.ItemArtifact, Description: world.DescArtifact}
		if _, err := e.inventory.GrantIfAbsent(ctx, id, artifact); err != nil {
			return nil, e.internal("grant artifact", err)
		}
	} else {
		s.AdjustHealth(-rules.RiddlePenalty)
		s.Narrative = rules.RiddleWrongMessage
	}

	logger.WithSessionID(e.logger, id).Debug("Riddle answered", "health", s.Health)
	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
