package gamedata

import (
	"errors"
	"strings"
	"testing"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return c
}

func TestDefaultCatalogLoads(t *testing.T) {
	c := mustDefault(t)
	if len(c.Berries) != 18 {
		t.Errorf("berries = %d, want 18", len(c.Berries))
	}
	if len(c.Skills) != 31 {
		t.Errorf("skills = %d, want 31", len(c.Skills))
	}
	if len(c.Natures) != 25 {
		t.Errorf("natures = %d, want 25", len(c.Natures))
	}
	for _, mt := range MealTypes {
		if !c.MixedRecipe(mt).Mixed {
			t.Errorf("%s mixed recipe not flagged mixed", mt)
		}
		recipes := c.RecipesFor(mt)
		if len(recipes) == 0 {
			t.Fatalf("%s has no recipes", mt)
		}
		for i := 1; i < len(recipes); i++ {
			if recipes[i].Value > recipes[i-1].Value {
				t.Errorf("%s recipes not sorted: %s (%d) after %s (%d)",
					mt, recipes[i].Name, recipes[i].Value, recipes[i-1].Name, recipes[i-1].Value)
			}
		}
	}
}

func TestRecipeValue(t *testing.T) {
	c := mustDefault(t)
	tests := []struct {
		name  string
		size  int
		value int
	}{
		// 7 apples at 90 with a 2% bonus
		{"FANCY_APPLE_CURRY", 7, 643},
		// 9 ginger at 109 plus 7 apples at 90, 19% bonus
		{"EMBER_GINGER_TEA", 16, 1917},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.Recipe(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if r.Size != tt.size {
				t.Errorf("size = %d, want %d", r.Size, tt.size)
			}
			if r.Value != tt.value {
				t.Errorf("value = %d, want %d", r.Value, tt.value)
			}
		})
	}
}

func TestBerryPower(t *testing.T) {
	tests := []struct {
		value, level int
		want         float64
	}{
		{30, 1, 30},
		{30, 10, 39},  // linear 39 beats round(30*1.025^9)=37
		{30, 60, 129}, // geometric round(30*1.025^59)=129 beats linear 89
		{30, 0, 30},
	}
	for _, tt := range tests {
		if got := BerryPower(tt.value, tt.level); got != tt.want {
			t.Errorf("BerryPower(%d, %d) = %v, want %v", tt.value, tt.level, got, tt.want)
		}
	}
}

func TestLookupNormalizesNames(t *testing.T) {
	c := mustDefault(t)
	for _, name := range []string{"fancy apple", "Fancy-Apple", "FANCY_APPLE"} {
		ing, err := c.Ingredient(name)
		if err != nil {
			t.Errorf("Ingredient(%q): %v", name, err)
			continue
		}
		if ing.Name != "FANCY_APPLE" {
			t.Errorf("Ingredient(%q) = %s", name, ing.Name)
		}
	}
}

func TestUnknownNameSuggestion(t *testing.T) {
	c := mustDefault(t)
	_, err := c.SpeciesByName("PIKACHOO")
	var une *UnknownNameError
	if !errors.As(err, &une) {
		t.Fatalf("error = %v, want *UnknownNameError", err)
	}
	if une.Suggestion != "PIKACHU" {
		t.Errorf("suggestion = %q, want PIKACHU", une.Suggestion)
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Errorf("message %q lacks suggestion", err.Error())
	}

	_, err = c.Berry("QWERTYUIOP")
	if !errors.As(err, &une) || une.Suggestion != "" {
		t.Errorf("far-off name got suggestion %q", une.Suggestion)
	}
}

func TestSpeciesSlotsResolved(t *testing.T) {
	c := mustDefault(t)
	for _, s := range c.Species {
		for slot, opts := range s.IngredientOptions {
			if len(opts) == 0 {
				t.Errorf("%s slot %d empty", s.Name, slot)
			}
		}
		if _, err := c.Skill(s.Skill); err != nil {
			t.Errorf("%s: %v", s.Name, err)
		}
	}
}

func TestSkillAmountClampsLevel(t *testing.T) {
	s := MainSkill{Amounts: []float64{10, 20, 30}}
	tests := []struct {
		level int
		want  float64
	}{{0, 10}, {1, 10}, {3, 30}, {9, 30}}
	for _, tt := range tests {
		if got := s.Amount(tt.level); got != tt.want {
			t.Errorf("Amount(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
	if got := s.TeamAmount(2); got != 0 {
		t.Errorf("TeamAmount without team amounts = %v, want 0", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"missing mixed", `{"ingredients":[{"name":"A","value":1}],"recipes":[{"name":"X","type":"curry","ingredients":[{"name":"A","amount":1}]}]}`},
		{"unknown ingredient", `{"ingredients":[{"name":"A","value":1}],"recipes":[{"name":"X","type":"curry","ingredients":[{"name":"B","amount":1}]}]}`},
		{"bad meal type", `{"recipes":[{"name":"X","type":"soup","mixed":true}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseMealType(t *testing.T) {
	for _, mt := range MealTypes {
		got, err := ParseMealType(strings.ToUpper(mt.String()))
		if err != nil || got != mt {
			t.Errorf("ParseMealType(%s) = %v, %v", mt, got, err)
		}
	}
	if _, err := ParseMealType("soup"); err == nil {
		t.Error("soup accepted")
	}
}
