package cooking

import (
	"log/slog"
	"slices"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
)

// RecipeCount tallies one recipe. In Results the numbers are per iteration.
type RecipeCount struct {
	Recipe   string  `json:"recipe" csv:"recipe"`
	Count    float64 `json:"count" csv:"count"`
	Crits    float64 `json:"crits" csv:"crits"`
	Strength float64 `json:"strength" csv:"strength"`
}

// Accumulator holds raw cooking sums over any number of iterations.
type Accumulator struct {
	Weekly [len(gamedata.MealTypes)]float64
	Sunday [len(gamedata.MealTypes)]float64
	Crits  [len(gamedata.MealTypes)]int
	Cooked [len(gamedata.MealTypes)][]RecipeCount // first-cooked order
}

func (a *Accumulator) add(c CookedRecipe) {
	a.Weekly[c.Type] += c.Strength
	if c.Sunday {
		a.Sunday[c.Type] += c.Strength
	}
	crit := 0.0
	if c.Crit {
		a.Crits[c.Type]++
		crit = 1
	}
	a.tally(c.Type, RecipeCount{Recipe: c.Recipe, Count: 1, Crits: crit, Strength: c.Strength})
}

func (a *Accumulator) tally(mt gamedata.MealType, rc RecipeCount) {
	list := a.Cooked[mt]
	for i := range list {
		if list[i].Recipe == rc.Recipe {
			list[i].Count += rc.Count
			list[i].Crits += rc.Crits
			list[i].Strength += rc.Strength
			return
		}
	}
	a.Cooked[mt] = append(list, rc)
}

// Merge folds another worker's sums into a.
func (a *Accumulator) Merge(o Accumulator) {
	for _, mt := range gamedata.MealTypes {
		a.Weekly[mt] += o.Weekly[mt]
		a.Sunday[mt] += o.Sunday[mt]
		a.Crits[mt] += o.Crits[mt]
		for _, rc := range o.Cooked[mt] {
			a.tally(mt, rc)
		}
	}
}

func (a Accumulator) clone() Accumulator {
	out := a
	for _, mt := range gamedata.MealTypes {
		out.Cooked[mt] = slices.Clone(a.Cooked[mt])
	}
	return out
}

type MealResult struct {
	Type           gamedata.MealType `json:"type"`
	WeeklyStrength float64           `json:"weekly_strength"`
	SundayStrength float64           `json:"sunday_strength"`
	Crits          float64           `json:"crits"`
	CookedRecipes  []RecipeCount     `json:"cooked_recipes"`
}

// Results are per-iteration expectations.
type Results struct {
	Curry   MealResult `json:"curry"`
	Salad   MealResult `json:"salad"`
	Dessert MealResult `json:"dessert"`
}

func (r *Results) Meal(mt gamedata.MealType) *MealResult {
	switch mt {
	case gamedata.MealSalad:
		return &r.Salad
	case gamedata.MealDessert:
		return &r.Dessert
	default:
		return &r.Curry
	}
}

func (r Results) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("curry", r.Curry.WeeklyStrength),
		slog.Float64("salad", r.Salad.WeeklyStrength),
		slog.Float64("dessert", r.Dessert.WeeklyStrength),
	)
}

// Results divides every sum by the iteration count.
func (a Accumulator) Results(iterations int) Results {
	n := float64(max(iterations, 1))
	var r Results
	for _, mt := range gamedata.MealTypes {
		m := r.Meal(mt)
		m.Type = mt
		m.WeeklyStrength = a.Weekly[mt] / n
		m.SundayStrength = a.Sunday[mt] / n
		m.Crits = float64(a.Crits[mt]) / n
		m.CookedRecipes = make([]RecipeCount, len(a.Cooked[mt]))
		for i, rc := range a.Cooked[mt] {
			m.CookedRecipes[i] = RecipeCount{
				Recipe:   rc.Recipe,
				Count:    rc.Count / n,
				Crits:    rc.Crits / n,
				Strength: rc.Strength / n,
			}
		}
	}
	return r
}
