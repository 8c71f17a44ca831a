package cooking

import (
	"slices"
	"testing"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
)

func testCatalog(t *testing.T) *gamedata.Catalog {
	t.Helper()
	c, err := gamedata.Default()
	if err != nil {
		t.Fatalf("gamedata.Default: %v", err)
	}
	return c
}

func ingredient(t *testing.T, c *gamedata.Catalog, name string) int {
	t.Helper()
	ing, err := c.Ingredient(name)
	if err != nil {
		t.Fatal(err)
	}
	return ing.Index
}

func recipeIngredients(t *testing.T, c *gamedata.Catalog, name string) []gamedata.IngredientAmount {
	t.Helper()
	r, err := c.Recipe(name)
	if err != nil {
		t.Fatal(err)
	}
	return slices.Clone(r.Ingredients)
}

func newState(t *testing.T, c *gamedata.Catalog, settings Settings) *State {
	t.Helper()
	return New(c, DefaultRules(), settings, rng.New(), nil)
}

func TestCookFallsBackToMixed(t *testing.T) {
	c := testCatalog(t)
	s := newState(t, c, Settings{PotSize: 30})
	cooked := s.Cook(false)
	if len(cooked) != len(gamedata.MealTypes) {
		t.Fatalf("cooked %d meals, want one per meal type", len(cooked))
	}
	for _, meal := range cooked {
		if want := c.MixedRecipe(meal.Type).Name; meal.Recipe != want {
			t.Errorf("%s cooked %s, want %s", meal.Type, meal.Recipe, want)
		}
		if meal.Value != 0 {
			t.Errorf("%s empty pot value = %v", meal.Type, meal.Value)
		}
	}
}

func TestMixedUsesMostValuableFirst(t *testing.T) {
	c := testCatalog(t)
	tail := ingredient(t, c, "SLOWPOKE_TAIL")
	coffee := ingredient(t, c, "ROUSING_COFFEE")
	s := newState(t, c, Settings{PotSize: 10})
	s.AddIngredients([]gamedata.IngredientAmount{{Ingredient: tail, Amount: 5}, {Ingredient: coffee, Amount: 10}})

	curry := s.Cook(false)[0]
	if curry.Recipe != "MIXED_CURRY" {
		t.Fatalf("cooked %s", curry.Recipe)
	}
	if want := 5*342.0 + 5*153.0; curry.Value != want {
		t.Errorf("value = %v, want %v", curry.Value, want)
	}
	stock := s.Stockpile(gamedata.MealCurry)
	if stock[tail] != 0 || stock[coffee] != 5 {
		t.Errorf("left tail %v coffee %v, want 0 and 5", stock[tail], stock[coffee])
	}
}

func TestExcludedRecipeNeverChosen(t *testing.T) {
	c := testCatalog(t)
	leek := ingredient(t, c, "LARGE_LEEK")
	add := append(recipeIngredients(t, c, "FANCY_APPLE_CURRY"), recipeIngredients(t, c, "SPICY_LEEK_CURRY")...)

	tests := []struct {
		name     string
		excluded []int
		want     string
	}{
		{"best recipe without exclusion", nil, "SPICY_LEEK_CURRY"},
		{"leek excluded", []int{leek}, "FANCY_APPLE_CURRY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, c, Settings{PotSize: 69, Excluded: tt.excluded})
			s.AddIngredients(add)
			if got := s.Cook(false)[gamedata.MealCurry].Recipe; got != tt.want {
				t.Errorf("cooked %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPotSizeLimitsAndBoostResets(t *testing.T) {
	c := testCatalog(t)
	scones := recipeIngredients(t, c, "TEATIME_CORN_SCONES")
	s := newState(t, c, Settings{PotSize: 15})

	s.AddIngredients(scones)
	if got := s.Cook(false)[gamedata.MealDessert].Recipe; got == "TEATIME_CORN_SCONES" {
		t.Fatal("67-ingredient recipe cooked in a 15 pot")
	}

	s.StartNewWeek(nil)
	s.AddIngredients(scones)
	s.AddPotSize(60)
	if got := s.PotSize(gamedata.MealDessert); got != 75 {
		t.Errorf("boosted pot = %d, want 75", got)
	}
	if got := s.Cook(false)[gamedata.MealDessert].Recipe; got != "TEATIME_CORN_SCONES" {
		t.Errorf("boosted pot cooked %s", got)
	}
	if got := s.PotSize(gamedata.MealDessert); got != 15 {
		t.Errorf("pot after meal = %d, want 15", got)
	}
}

func TestStartNewWeekRestoresBaseline(t *testing.T) {
	c := testCatalog(t)
	apple := ingredient(t, c, "FANCY_APPLE")
	honey := ingredient(t, c, "HONEY")
	baseline := []gamedata.IngredientAmount{{Ingredient: apple, Amount: 3.5}, {Ingredient: honey, Amount: 2}}

	s := newState(t, c, Settings{PotSize: 30, Stockpile: baseline})
	s.AddIngredients(recipeIngredients(t, c, "EGG_BOMB_CURRY"))
	s.Cook(true)
	s.AddIngredients([]gamedata.IngredientAmount{{Ingredient: apple, Amount: 40}})
	weekly := s.Results(1).Curry.WeeklyStrength

	s.StartNewWeek(baseline)
	want := make([]float64, len(c.Ingredients))
	want[apple], want[honey] = 3.5, 2
	for _, mt := range gamedata.MealTypes {
		if got := s.Stockpile(mt); !slices.Equal(got, want) {
			t.Errorf("%s stock = %v, want %v", mt, got, want)
		}
	}
	if s.Status() != Idle {
		t.Errorf("status = %s, want idle", s.Status())
	}
	if got := s.Results(1).Curry.WeeklyStrength; got != weekly {
		t.Errorf("weekly strength reset: %v -> %v", weekly, got)
	}
}

func TestStatusTransitions(t *testing.T) {
	c := testCatalog(t)
	s := newState(t, c, Settings{PotSize: 15})
	steps := []struct {
		do   func()
		want Status
	}{
		{func() {}, Idle},
		{func() { s.AddIngredients(nil) }, Accumulating},
		{func() { s.Cook(false) }, Cooked},
		{func() { s.AddIngredients(nil) }, Accumulating},
		{func() { s.StartNewWeek(nil) }, Idle},
	}
	for i, step := range steps {
		step.do()
		if got := s.Status(); got != step.want {
			t.Errorf("step %d status = %s, want %s", i, got, step.want)
		}
	}
}

func TestCritBonusCapsAndResets(t *testing.T) {
	c := testCatalog(t)
	s := newState(t, c, Settings{PotSize: 15})
	s.AddCritBonus(0.5)
	s.AddCritBonus(0.5)
	if got := s.CritBonus(gamedata.MealSalad); got != 0.7 {
		t.Errorf("crit bonus = %v, want capped 0.7", got)
	}
	// Sunday base 0.3 plus 0.7 always crits
	for _, meal := range s.Cook(true) {
		if !meal.Crit {
			t.Errorf("%s did not crit", meal.Type)
		}
		if got := s.CritBonus(meal.Type); got != 0 {
			t.Errorf("%s bonus after crit = %v", meal.Type, got)
		}
	}
}

func TestSingleDessertScenario(t *testing.T) {
	c := testCatalog(t)
	rules := DefaultRules()
	s := New(c, rules, Settings{PotSize: rules.MaxPotSize}, rng.New(), nil)
	s.AddIngredients(recipeIngredients(t, c, "TEATIME_CORN_SCONES"))
	s.Cook(false)

	got := s.Results(1).Dessert.CookedRecipes
	if len(got) != 1 || got[0].Recipe != "TEATIME_CORN_SCONES" || got[0].Count != 1 {
		t.Errorf("cooked recipes = %+v, want exactly TEATIME_CORN_SCONES", got)
	}
}

func TestSundayCritScenario(t *testing.T) {
	c := testCatalog(t)
	rules := DefaultRules()
	s := New(c, rules, Settings{PotSize: rules.MaxPotSize}, rng.New(), nil)
	s.AddIngredients(recipeIngredients(t, c, "TEATIME_CORN_SCONES"))
	s.AddCritBonus(0.7)
	s.Cook(true)

	r, err := c.Recipe("TEATIME_CORN_SCONES")
	if err != nil {
		t.Fatal(err)
	}
	dessert := s.Results(1).Dessert
	want := float64(r.Value) * 3
	if dessert.WeeklyStrength != want || dessert.SundayStrength != want {
		t.Errorf("weekly %v sunday %v, want both %v", dessert.WeeklyStrength, dessert.SundayStrength, want)
	}
}

func TestAreaBonusScalesMeals(t *testing.T) {
	c := testCatalog(t)
	rules := DefaultRules()
	rules.WeekdayCritChance = 0
	s := New(c, rules, Settings{PotSize: 30, AreaBonus: 0.5}, rng.New(), nil)
	s.AddIngredients(recipeIngredients(t, c, "FANCY_APPLE_CURRY"))
	curry := s.Cook(false)[gamedata.MealCurry]
	if curry.Crit || curry.Strength != 643*1.5 {
		t.Errorf("strength = %v crit %v, want 964.5 without crit", curry.Strength, curry.Crit)
	}
}

func TestAccumulatorMerge(t *testing.T) {
	c := testCatalog(t)
	rules := DefaultRules()
	rules.WeekdayCritChance = 0
	run := func() Accumulator {
		s := New(c, rules, Settings{PotSize: 30}, rng.New(), nil)
		s.AddIngredients(recipeIngredients(t, c, "FANCY_APPLE_CURRY"))
		s.Cook(false)
		return s.Accumulator()
	}
	acc := run()
	acc.Merge(run())

	r := acc.Results(2)
	if r.Curry.WeeklyStrength != 643 {
		t.Errorf("averaged weekly = %v, want 643", r.Curry.WeeklyStrength)
	}
	if len(r.Curry.CookedRecipes) != 1 || r.Curry.CookedRecipes[0].Count != 1 {
		t.Errorf("averaged recipes = %+v", r.Curry.CookedRecipes)
	}
	if len(r.Salad.CookedRecipes) != 1 || r.Salad.CookedRecipes[0].Recipe != "MIXED_SALAD" {
		t.Errorf("salad = %+v", r.Salad.CookedRecipes)
	}
}

func TestRestoreDiscardsMeals(t *testing.T) {
	c := testCatalog(t)
	s := newState(t, c, Settings{PotSize: 30})
	s.AddIngredients(recipeIngredients(t, c, "FANCY_APPLE_CURRY"))
	s.Cook(false)
	cp := s.Checkpoint()
	stock := s.Stockpile(gamedata.MealCurry)

	s.AddIngredients(recipeIngredients(t, c, "FANCY_APPLE_CURRY"))
	s.AddCritBonus(0.4)
	s.AddPotSize(12)
	s.Cook(false)
	s.Restore(cp)

	r := s.Results(1)
	if len(r.Curry.CookedRecipes) != 1 || r.Curry.CookedRecipes[0].Count != 1 {
		t.Errorf("after restore curry = %+v, want one meal", r.Curry.CookedRecipes)
	}
	if got := s.CritBonus(gamedata.MealCurry); got != 0 {
		t.Errorf("crit bonus after restore = %v, want 0", got)
	}
	if got := s.PotSize(gamedata.MealCurry); got != 30 {
		t.Errorf("pot after restore = %d, want 30", got)
	}
	if got := s.Stockpile(gamedata.MealCurry); !slices.Equal(got, stock) {
		t.Errorf("stock after restore = %v, want %v", got, stock)
	}
	if s.Status() != Cooked {
		t.Errorf("status after restore = %s, want cooked", s.Status())
	}
}

func TestResetClearsBoosts(t *testing.T) {
	c := testCatalog(t)
	apple := ingredient(t, c, "FANCY_APPLE")
	baseline := []gamedata.IngredientAmount{{Ingredient: apple, Amount: 4}}
	s := newState(t, c, Settings{PotSize: 30})
	s.AddCritBonus(0.7)
	s.AddPotSize(20)

	s.StartNewWeek(nil)
	if got := s.CritBonus(gamedata.MealSalad); got != 0.7 {
		t.Errorf("crit bonus after a new week = %v, want it kept", got)
	}

	s.Reset(baseline)
	for _, mt := range gamedata.MealTypes {
		if got := s.CritBonus(mt); got != 0 {
			t.Errorf("%s crit bonus after reset = %v", mt, got)
		}
		if got := s.PotSize(mt); got != 30 {
			t.Errorf("%s pot after reset = %d", mt, got)
		}
		if got := s.Stockpile(mt)[apple]; got != 4 {
			t.Errorf("%s apples after reset = %v, want 4", mt, got)
		}
	}
}
