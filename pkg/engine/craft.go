package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/crafting"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// AvailableRecipes returns the recipes the session can craft right now.
func (e *Engine) AvailableRecipes(ctx context.Context, id uuid.UUID) ([]crafting.Recipe, error) {
	if _, err := e.load(ctx, id); err != nil {
		return nil, err
	}
	names, err := e.inventory.Names(ctx, id)
	if err != nil {
		return nil, e.internal("load inventory", err)
	}
	return crafting.Available(names), nil
}

// Craft makes the recipe's result from its inputs. Unknown recipes leave
// the session unchanged. Inputs are removed one by one before the result
// is granted, without a wrapping transaction.
func (e *Engine) Craft(ctx context.Context, id uuid.UUID, recipeKey string) (*state.Session, error) {
	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe, ok := crafting.Lookup(recipeKey)
	if !ok {
		return s, nil
	}

	names, err := e.inventory.Names(ctx, id)
	if err != nil {
		return nil, e.internal("load inventory", err)
	}

	switch missing := recipe.Missing(names); {
	case recipe.ResultOwned(names):
		s.Narrative = "У вас уже есть: " + recipe.Result.Name + ". Крафт не требуется."
	case len(missing) > 0:
		s.Narrative = "Не хватает компонентов: " + strings.Join(missing, ", ") + "."
	default:
		for _, req := range recipe.Requires {
			if err := e.inventory.RemoveOneBestEffort(ctx, id, req); err != nil {
				return nil, e.internal("consume ingredient", err)
			}
		}
		if _, err := e.inventory.GrantIfAbsent(ctx, id, recipe.Result); err != nil {
			return nil, e.internal("grant crafted item", err)
		}
		s.Narrative = "Вы создали: " + recipe.Result.Name + ". " + s.Narrative
		logger.WithSessionID(e.logger, id).Debug("Item crafted", "recipe", recipe.Key)
	}

	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
