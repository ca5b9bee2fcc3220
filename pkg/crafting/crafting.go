// Package crafting holds the static recipe catalog and the checks that
// decide which recipes a player can currently make.
package crafting

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/textnorm"
	"gopkg.in/yaml.v3"
)

//go:embed recipes.yaml
var catalogYAML []byte

// Recipe turns a list of required items into a single result item.
type Recipe struct {
	Key      string         `yaml:"key" json:"key"`
	Title    string         `yaml:"title" json:"title"`
	Requires []string       `yaml:"requires" json:"requires"`
	Result   state.ItemSpec `yaml:"result" json:"result"`
}

type catalogFile struct {
	Recipes []Recipe `yaml:"recipes"`
}

// catalog is parsed once at startup and never mutated.
var catalog = mustParseCatalog(catalogYAML)

func mustParseCatalog(data []byte) []Recipe {
	recipes, err := ParseCatalog(data)
	if err != nil {
		panic(fmt.Sprintf("crafting: invalid embedded catalog: %v", err))
	}
	return recipes
}

// ParseCatalog decodes and validates a recipe catalog document.
func ParseCatalog(data []byte) ([]Recipe, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Recipes))
	for i, r := range f.Recipes {
		switch {
		case strings.TrimSpace(r.Key) == "":
			return nil, fmt.Errorf("recipe %d: key is required", i)
		case seen[r.Key]:
			return nil, fmt.Errorf("recipe %q: duplicate key", r.Key)
		case len(r.Requires) == 0:
			return nil, fmt.Errorf("recipe %q: requires at least one item", r.Key)
		case strings.TrimSpace(r.Result.Name) == "":
			return nil, fmt.Errorf("recipe %q: result name is required", r.Key)
		}
		seen[r.Key] = true
	}
	return f.Recipes, nil
}

// Catalog returns a copy of every recipe in catalog order.
func Catalog() []Recipe {
	out := make([]Recipe, len(catalog))
	for i, r := range catalog {
		out[i] = r.clone()
	}
	return out
}

// Lookup finds a recipe by key.
func Lookup(key string) (Recipe, bool) {
	for _, r := range catalog {
		if r.Key == key {
			return r.clone(), true
		}
	}
	return Recipe{}, false
}

// Available returns the recipes whose inputs are all owned and whose
// result is not, in catalog order. owned holds folded item names.
func Available(owned map[string]bool) []Recipe {
	var out []Recipe
	for _, r := range catalog {
		if r.ResultOwned(owned) || len(r.Missing(owned)) > 0 {
			continue
		}
		out = append(out, r.clone())
	}
	return out
}

// ResultOwned reports whether the player already holds the result item.
func (r Recipe) ResultOwned(owned map[string]bool) bool {
	return owned[textnorm.Fold(r.Result.Name)]
}

// Missing returns the required names not present in owned, in recipe order.
func (r Recipe) Missing(owned map[string]bool) []string {
	var missing []string
	for _, req := range r.Requires {
		if !owned[textnorm.Fold(req)] {
			missing = append(missing, req)
		}
	}
	return missing
}

func (r Recipe) clone() Recipe {
	r.Requires = append([]string(nil), r.Requires...)
	return r
}
