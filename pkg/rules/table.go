package rules

import (
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// UnavailableMessage is the narrative for an action that is not legal at
// the current location.
const UnavailableMessage = "Действие недоступно здесь. Выберите один из предложенных вариантов."

const unknownPlaceMessage = "Вы в неизвестном месте. Попробуйте вернуться в лес."

// Treasure roll buckets over [0, 10): 7-9 sword, 5-6 herb, 3-4 flask, 0-2 potion.
const (
	treasureSides      = 10
	treasureSwordFrom  = 7
	treasureHerbFrom   = 5
	treasureFlaskFrom  = 3
	treasureSwordCost  = -20
	treasurePotionHeal = 30
	dragonDamage       = -50
	castleRiddleBurn   = -10
)

type handler func(t *Table, f Flags) Event

type rule struct {
	action world.Action
	handle handler
}

// locationRules lists, per location, the legal actions in display order
// together with their outcome.
var locationRules = map[world.Location][]rule{
	world.Forest: {
		{world.GoCastle, moveTo(world.Castle,
			"Вы подошли к замку. У входа — дракон. Если у вас есть меч/клинок — сражайтесь, иначе попробуйте решить загадку.")},
		{world.SearchTreasure, (*Table).searchTreasure},
		{world.RunAway, moveTo(world.Forest, "Вы бежите по лесу, но всё ещё тут. Попробуйте другой путь.")},
		{world.GoCave, moveTo(world.Cave, "Вы в тёмной пещере. Здесь можно попытаться решить загадку.")},
		{world.GoVillage, moveTo(world.Village, "Вы в деревне. Жители просят найти артефакт в пещере.")},
	},
	world.Cave: {
		{world.SolveRiddle, func(*Table, Flags) Event {
			return Event{Message: RiddlePrompt(), NewLocation: world.Cave}
		}},
		{world.GoVillage, moveTo(world.Village, "Вы вернулись в деревню. Жители ждут артефакт.")},
	},
	world.Village: {
		{world.ReturnArtifact, returnArtifact},
		{world.GoCave, moveTo(world.Cave, "Вы снова в пещере.")},
		{world.RunAway, moveTo(world.Forest, "Вы уходите из деревни и вскоре снова оказываетесь в лесу.")},
	},
	world.Castle: {
		{world.FightDragon, fightDragon},
		{world.SolveRiddle, func(*Table, Flags) Event {
			return Event{
				Message:     "Загадка решена: иногда у дракона больше голов, чем тел. Но вы получили ожог. Здоровье -10.",
				HealthDelta: castleRiddleBurn,
				NewLocation: world.Castle,
			}
		}},
		{world.RunAway, moveTo(world.Forest, "Вы отступили к лесу, чтобы подготовиться.")},
	},
}

// handlers is the two-level lookup built from locationRules.
var handlers = buildHandlers()

func buildHandlers() map[world.Location]map[world.Action]handler {
	out := make(map[world.Location]map[world.Action]handler, len(locationRules))
	for loc, rs := range locationRules {
		byAction := make(map[world.Action]handler, len(rs))
		for _, r := range rs {
			byAction[r.action] = r.handle
		}
		out[loc] = byAction
	}
	return out
}

// Table evaluates actions against the rule set.
type Table struct {
	roller Roller
}

// NewTable creates a Table drawing randomness from roller.
// A nil roller uses NewRoller(0).
func NewTable(roller Roller) *Table {
	if roller == nil {
		roller = NewRoller(0)
	}
	return &Table{roller: roller}
}

// LegalActions returns the actions allowed at loc, in display order.
// A location outside the registry only allows running away.
func (t *Table) LegalActions(loc world.Location) []world.Action {
	rs, ok := locationRules[loc]
	if !ok {
		return []world.Action{world.RunAway}
	}
	out := make([]world.Action, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.action)
	}
	return out
}

// Allowed reports whether action is legal at loc.
func (t *Table) Allowed(loc world.Location, action world.Action) bool {
	for _, a := range t.LegalActions(loc) {
		if a == action {
			return true
		}
	}
	return false
}

// Decide returns the event for taking action at loc with the given
// inventory flags. An action with no rule at a known location yields the
// unavailable message and leaves everything unchanged; an unknown location
// sends the player back to the forest.
func (t *Table) Decide(loc world.Location, action world.Action, f Flags) Event {
	byAction, ok := handlers[loc]
	if !ok {
		return Event{Message: unknownPlaceMessage, NewLocation: world.Forest}
	}
	h, ok := byAction[action]
	if !ok {
		return Event{Message: UnavailableMessage, NewLocation: loc}
	}
	return h(t, f)
}

func moveTo(loc world.Location, message string) handler {
	return func(*Table, Flags) Event {
		return Event{Message: message, NewLocation: loc}
	}
}

func (t *Table) searchTreasure(Flags) Event {
	roll := t.roller.Intn(treasureSides)
	switch {
	case roll >= treasureSwordFrom:
		return Event{
			Message:     "Вы нашли меч! Но волк нападает. Здоровье -20.",
			HealthDelta: treasureSwordCost,
			Grant:       &state.ItemSpec{Name: world.ItemSword, Description: world.DescSword},
			NewLocation: world.Forest,
		}
	case roll >= treasureHerbFrom:
		return Event{
			Message:     "Вы нашли траву с сильным ароматом. Похоже, из неё можно сварить зелье.",
			Grant:       &state.ItemSpec{Name: world.ItemHerb, Description: world.DescIngredient},
			NewLocation: world.Forest,
		}
	case roll >= treasureFlaskFrom:
		return Event{
			Message:     "Вы нашли пустую флягу. Пригодится для алхимии.",
			Grant:       &state.ItemSpec{Name: world.ItemFlask, Description: world.DescIngredient},
			NewLocation: world.Forest,
		}
	default:
		return Event{
			Message:     "Вы нашли зелье! Здоровье +30.",
			HealthDelta: treasurePotionHeal,
			Grant:       &state.ItemSpec{Name: world.ItemPotion, Description: world.DescPotion},
			NewLocation: world.Forest,
		}
	}
}

func returnArtifact(_ *Table, f Flags) Event {
	if !f.HasArtifact {
		msg := "У вас нет артефакта. Сначала найдите его в пещере."
		if f.HasLightBlade {
			msg = "Вы перековали артефакт в Клинок света — жители впечатлены, но артефакта нет."
		}
		return Event{Message: msg, NewLocation: world.Village}
	}
	return Event{
		Message:             "Вы вернули артефакт. Жители благодарят и дают вам зелье. Пора к замку.",
		Grant:               &state.ItemSpec{Name: world.ItemPotion, Description: world.DescPotion},
		NewLocation:         world.Village,
		RemoveArtifact:      true,
		GrantSwordIfMissing: true,
	}
}

func fightDragon(_ *Table, f Flags) Event {
	switch {
	case f.HasLightBlade:
		return Event{
			Message:     "Клинок света пронзает чешую дракона. Победа и сокровища. Конец!",
			NewLocation: world.Castle,
		}
	case f.HasSword:
		return Event{
			Message:     "С мечом вы побеждаете дракона после тяжёлой схватки. Конец!",
			NewLocation: world.Castle,
		}
	default:
		return Event{
			Message:     "У вас нет оружия! Дракон ранит вас. Здоровье -50. Попробуйте решить загадку или найти/создать оружие.",
			HealthDelta: dragonDamage,
			NewLocation: world.Castle,
		}
	}
}
