package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/gameerr"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// ListInventory returns the items held by the session.
func (e *Engine) ListInventory(ctx context.Context, id uuid.UUID) ([]state.Item, error) {
	if _, err := e.load(ctx, id); err != nil {
		return nil, err
	}
	items, err := e.inventory.List(ctx, id)
	if err != nil {
		return nil, e.internal("list inventory", err)
	}
	return items, nil
}

// UseItem applies an inventory item. Potions heal and are consumed; other
// items only explain themselves in the narrative.
func (e *Engine) UseItem(ctx context.Context, sessionID, itemID uuid.UUID) (*state.Session, error) {
	s, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	item, err := e.inventory.Find(ctx, itemID)
	if err != nil {
		return nil, e.internal("find item", err)
	}
	if item.SessionID != sessionID {
		return nil, gameerr.Validation("item does not belong to session")
	}

	name := textnorm.Fold(item.Name)
	if name == "" {
		name = "(безымянный)"
	}
	prev := s.Narrative

	switch name {
	case world.ItemPotion:
		s.AdjustHealth(world.PotionHealValue)
		s.Narrative = "Вы использовали зелье. Здоровье +30.\n" + prev
		if err := e.inventory.Consume(ctx, item); err != nil {
			return nil, e.internal("consume potion", err)
		}
	case world.ItemHerb, world.ItemFlask:
		s.Narrative = "Это компонент. Используйте крафт, чтобы получить зелье.\n" + prev
	case world.ItemSword, world.ItemLightBlade, world.ItemArtifact:
		s.Narrative = "Этот предмет нельзя использовать напрямую сейчас.\n" + prev
	default:
		s.Narrative = "Неизвестный предмет: " + name + ".\n" + prev
	}

	if err := e.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
