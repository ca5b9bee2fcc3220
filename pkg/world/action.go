package world

import "github.com/jwebster45206/quest-engine/pkg/textnorm"

// Action is the canonical key of something a player can choose to do.
type Action string

const (
	GoCastle       Action = "go_castle"
	SearchTreasure Action = "search_treasure"
	RunAway        Action = "run_away"
	GoCave         Action = "go_cave"
	GoVillage      Action = "go_village"
	SolveRiddle    Action = "solve_riddle"
	FightDragon    Action = "fight_dragon"
	ReturnArtifact Action = "return_artifact"
)

type actionDef struct {
	key      Action
	label    string
	synonyms []string
}

var actionDefs = []actionDef{
	{GoCastle, "Идти в замок", []string{"идти в замок", "go to castle"}},
	{SearchTreasure, "Искать сокровища", []string{"искать сокровища", "search for treasure"}},
	{RunAway, "Бежать", []string{"бежать", "run away"}},
	{GoCave, "Идти в пещеру", []string{"идти в пещеру", "go to cave"}},
	{GoVillage, "Идти в деревню", []string{"идти в деревню", "go to village"}},
	{SolveRiddle, "Решить загадку", []string{"решить загадку", "solve riddle"}},
	{FightDragon, "Сражаться с драконом", []string{"сражаться с драконом", "fight dragon"}},
	{ReturnArtifact, "Вернуться с артефактом", []string{"вернуться с артефактом", "return with artifact"}},
}

// actionIndex maps every folded key and synonym to its action.
var actionIndex = buildActionIndex()

func buildActionIndex() map[string]Action {
	idx := make(map[string]Action)
	for _, d := range actionDefs {
		for _, s := range append([]string{string(d.key)}, d.synonyms...) {
			f := textnorm.Fold(s)
			if _, exists := idx[f]; !exists {
				idx[f] = d.key
			}
		}
	}
	return idx
}

// Actions returns every canonical action in catalog order.
func Actions() []Action {
	out := make([]Action, 0, len(actionDefs))
	for _, d := range actionDefs {
		out = append(out, d.key)
	}
	return out
}

// NormalizeAction folds raw player input and maps it to a canonical
// action. Input that matches no key or synonym is returned folded but
// otherwise untouched, so it fails the legality check downstream instead
// of erroring here.
func NormalizeAction(raw string) Action {
	f := textnorm.Fold(raw)
	if a, ok := actionIndex[f]; ok {
		return a
	}
	return Action(f)
}

// Label returns the display label for the action, or the raw key when
// the action is not in the catalog.
func (a Action) Label() string {
	for _, d := range actionDefs {
		if d.key == a {
			return d.label
		}
	}
	return string(a)
}
