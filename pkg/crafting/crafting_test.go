package crafting

import (
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/textnorm"
)

func TestCatalog_Order(t *testing.T) {
	c := Catalog()
	if len(c) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(c))
	}
	if c[0].Key != "potion_from_herb" || c[1].Key != "light_blade" {
		t.Errorf("unexpected order: %q, %q", c[0].Key, c[1].Key)
	}
	if c[1].Result.Name != "клинок света" {
		t.Errorf("light_blade result = %q", c[1].Result.Name)
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := Catalog()
	c[0].Requires[0] = "камень"

	r, ok := Lookup("potion_from_herb")
	if !ok {
		t.Fatal("potion_from_herb not found")
	}
	if r.Requires[0] != "трава" {
		t.Error("mutating a returned recipe changed the catalog")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("nope"); ok {
		t.Error("unknown key should not be found")
	}
	r, ok := Lookup("light_blade")
	if !ok {
		t.Fatal("light_blade not found")
	}
	if len(r.Requires) != 2 || r.Requires[0] != "меч" || r.Requires[1] != "артефакт" {
		t.Errorf("Requires = %v", r.Requires)
	}
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name  string
		owned []string
		want  []string
	}{
		{"empty inventory", nil, nil},
		{"partial ingredients", []string{"трава"}, nil},
		{"potion ingredients", []string{"Трава", "ФЛЯГА"}, []string{"potion_from_herb"}},
		{"potion already owned", []string{"трава", "фляга", "зелье"}, nil},
		{"both", []string{"трава", "фляга", "меч", "артефакт"}, []string{"potion_from_herb", "light_blade"}},
		{"light blade already owned", []string{"меч", "артефакт", "клинок света"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Available(textnorm.FoldSet(tt.owned))
			if len(got) != len(tt.want) {
				t.Fatalf("Available() = %d recipes, want %v", len(got), tt.want)
			}
			for i := range got {
				if got[i].Key != tt.want[i] {
					t.Errorf("Available()[%d] = %q, want %q", i, got[i].Key, tt.want[i])
				}
			}
		})
	}
}

func TestRecipe_Missing(t *testing.T) {
	r, _ := Lookup("light_blade")
	missing := r.Missing(textnorm.FoldSet([]string{"артефакт"}))
	if len(missing) != 1 || missing[0] != "меч" {
		t.Errorf("Missing() = %v, want [меч]", missing)
	}
	if m := r.Missing(textnorm.FoldSet([]string{"меч", "артефакт"})); len(m) != 0 {
		t.Errorf("Missing() = %v, want none", m)
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "recipes: ["},
		{"missing key", "recipes:\n  - requires: [a]\n    result: {name: b}\n"},
		{"duplicate key", "recipes:\n  - key: x\n    requires: [a]\n    result: {name: b}\n  - key: x\n    requires: [a]\n    result: {name: c}\n"},
		{"no requirements", "recipes:\n  - key: x\n    result: {name: b}\n"},
		{"no result", "recipes:\n  - key: x\n    requires: [a]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(tt.doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
