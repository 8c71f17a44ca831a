// Package cooking tracks a team's weekly ingredient stockpiles and turns
// them into meals.
package cooking

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/logging"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
)

type Status int

const (
	Idle Status = iota
	Accumulating
	Cooked
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Cooked:
		return "cooked"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type Rules struct {
	WeekdayCritChance    float64 `yaml:"weekday_crit_chance" json:"weekday_crit_chance"`
	SundayCritChance     float64 `yaml:"sunday_crit_chance" json:"sunday_crit_chance"`
	CritMultiplier       float64 `yaml:"crit_multiplier" json:"crit_multiplier"`
	SundayCritMultiplier float64 `yaml:"sunday_crit_multiplier" json:"sunday_crit_multiplier"`
	MaxCritBonus         float64 `yaml:"max_crit_bonus" json:"max_crit_bonus"`
	MaxPotSize           int     `yaml:"max_pot_size" json:"max_pot_size"`
}

func DefaultRules() Rules {
	return Rules{
		WeekdayCritChance:    0.1,
		SundayCritChance:     0.3,
		CritMultiplier:       2,
		SundayCritMultiplier: 3,
		MaxCritBonus:         0.7,
		MaxPotSize:           69,
	}
}

type Settings struct {
	PotSize   int
	AreaBonus float64 // fraction, 0.5 is +50%
	Excluded  []int   // ingredient indexes
	Stockpile []gamedata.IngredientAmount
}

type CookedRecipe struct {
	Recipe   string
	Type     gamedata.MealType
	Value    float64
	Strength float64
	Crit     bool
	Sunday   bool
}

// State is the team's cooking pot. One State serves one simulation at a
// time.
type State struct {
	catalog  *gamedata.Catalog
	rules    Rules
	settings Settings
	rng      *rng.Source
	logger   *slog.Logger

	status    Status
	excluded  []bool
	stock     [len(gamedata.MealTypes)][]float64
	potBoost  [len(gamedata.MealTypes)]float64
	critBonus [len(gamedata.MealTypes)]float64
	acc       Accumulator
}

func New(catalog *gamedata.Catalog, rules Rules, settings Settings, r *rng.Source, logger *slog.Logger) *State {
	s := &State{
		catalog:  catalog,
		rules:    rules,
		settings: settings,
		rng:      r,
		logger:   logging.OrDiscard(logger),
		excluded: make([]bool, len(catalog.Ingredients)),
	}
	for _, i := range settings.Excluded {
		if i >= 0 && i < len(s.excluded) {
			s.excluded[i] = true
		}
	}
	for _, mt := range gamedata.MealTypes {
		s.stock[mt] = make([]float64, len(catalog.Ingredients))
	}
	s.Reset(settings.Stockpile)
	return s
}

func (s *State) Status() Status { return s.status }

// AddIngredients puts the same ingredients toward every meal type.
func (s *State) AddIngredients(amounts []gamedata.IngredientAmount) {
	for _, ia := range amounts {
		if ia.Amount <= 0 {
			continue
		}
		for _, mt := range gamedata.MealTypes {
			s.stock[mt][ia.Ingredient] += ia.Amount
		}
	}
	s.status = Accumulating
}

// AddCritBonus raises the crit chance of the next meal of every type.
func (s *State) AddCritBonus(bonus float64) {
	for _, mt := range gamedata.MealTypes {
		s.critBonus[mt] = min(s.critBonus[mt]+bonus, s.rules.MaxCritBonus)
	}
}

// AddPotSize enlarges the pot for the next meal of every type.
func (s *State) AddPotSize(amount float64) {
	for _, mt := range gamedata.MealTypes {
		s.potBoost[mt] += amount
	}
}

func (s *State) PotSize(mt gamedata.MealType) int {
	return s.settings.PotSize + int(s.potBoost[mt])
}

func (s *State) CritBonus(mt gamedata.MealType) float64 { return s.critBonus[mt] }

// Stockpile returns a copy of one meal type's ingredient stock, indexed
// like Catalog.Ingredients.
func (s *State) Stockpile(mt gamedata.MealType) []float64 {
	return slices.Clone(s.stock[mt])
}

// Reset prepares the pot for a fresh iteration: pending crit and pot
// boosts are dropped and the stockpiles go back to the carry-over baseline.
// Recorded sums are kept.
func (s *State) Reset(carryOver []gamedata.IngredientAmount) {
	clear(s.potBoost[:])
	clear(s.critBonus[:])
	s.StartNewWeek(carryOver)
}

// StartNewWeek replaces the stockpiles with the carry-over baseline. Weekly
// strength is left for the caller to read.
func (s *State) StartNewWeek(carryOver []gamedata.IngredientAmount) {
	for _, mt := range gamedata.MealTypes {
		clear(s.stock[mt])
		for _, ia := range carryOver {
			s.stock[mt][ia.Ingredient] += ia.Amount
		}
	}
	s.status = Idle
}

// Cook makes one meal of every type from the current stock.
func (s *State) Cook(sunday bool) []CookedRecipe {
	out := make([]CookedRecipe, 0, len(gamedata.MealTypes))
	for _, mt := range gamedata.MealTypes {
		out = append(out, s.cookMeal(mt, sunday))
	}
	s.status = Cooked
	return out
}

func (s *State) cookMeal(mt gamedata.MealType, sunday bool) CookedRecipe {
	pot := s.PotSize(mt)
	stock := s.stock[mt]

	var cooked CookedRecipe
	if r := s.bestRecipe(mt, pot); r != nil {
		for _, ia := range r.Ingredients {
			stock[ia.Ingredient] -= ia.Amount
		}
		cooked = CookedRecipe{Recipe: r.Name, Value: float64(r.Value)}
	} else {
		cooked = CookedRecipe{Recipe: s.catalog.MixedRecipe(mt).Name, Value: s.cookMixed(stock, pot)}
	}
	cooked.Type = mt
	cooked.Sunday = sunday

	chance := s.rules.WeekdayCritChance
	multiplier := s.rules.CritMultiplier
	if sunday {
		chance = s.rules.SundayCritChance
		multiplier = s.rules.SundayCritMultiplier
	}
	chance = min(chance+s.critBonus[mt], 1)
	cooked.Strength = cooked.Value * (1 + s.settings.AreaBonus)
	if s.rng.Next() < chance {
		cooked.Crit = true
		cooked.Strength *= multiplier
		s.critBonus[mt] = 0
	}
	s.potBoost[mt] = 0

	s.acc.add(cooked)
	logging.Trace(s.logger, "cooked",
		"meal", mt, "recipe", cooked.Recipe, "strength", cooked.Strength, "crit", cooked.Crit, "sunday", sunday)
	return cooked
}

// bestRecipe is the most valuable recipe that fits the pot, is fully in
// stock and uses no excluded ingredient.
func (s *State) bestRecipe(mt gamedata.MealType, pot int) *gamedata.Recipe {
	stock := s.stock[mt]
	for _, r := range s.catalog.RecipesFor(mt) {
		if r.Size > pot || s.usesExcluded(r) {
			continue
		}
		ok := true
		for _, ia := range r.Ingredients {
			if stock[ia.Ingredient] < ia.Amount {
				ok = false
				break
			}
		}
		if ok {
			return r
		}
	}
	return nil
}

func (s *State) usesExcluded(r *gamedata.Recipe) bool {
	for _, ia := range r.Ingredients {
		if s.excluded[ia.Ingredient] {
			return true
		}
	}
	return false
}

// cookMixed fills the pot with the most valuable allowed ingredients in
// stock and returns the meal value.
func (s *State) cookMixed(stock []float64, pot int) float64 {
	order := make([]int, 0, len(stock))
	for i, amt := range stock {
		if amt > 0 && !s.excluded[i] {
			order = append(order, i)
		}
	}
	slices.SortFunc(order, func(a, b int) int {
		return cmp.Compare(s.catalog.Ingredients[b].Value, s.catalog.Ingredients[a].Value)
	})
	room := float64(pot)
	var value float64
	for _, i := range order {
		if room <= 0 {
			break
		}
		take := min(stock[i], room)
		stock[i] -= take
		room -= take
		value += take * float64(s.catalog.Ingredients[i].Value)
	}
	return value
}

func (s *State) Accumulator() Accumulator { return s.acc.clone() }

// Checkpoint is a copy of everything a meal or a skill can change.
type Checkpoint struct {
	status    Status
	stock     [len(gamedata.MealTypes)][]float64
	potBoost  [len(gamedata.MealTypes)]float64
	critBonus [len(gamedata.MealTypes)]float64
	acc       Accumulator
}

func (s *State) Checkpoint() Checkpoint {
	cp := Checkpoint{
		status:    s.status,
		potBoost:  s.potBoost,
		critBonus: s.critBonus,
		acc:       s.acc.clone(),
	}
	for _, mt := range gamedata.MealTypes {
		cp.stock[mt] = slices.Clone(s.stock[mt])
	}
	return cp
}

// Restore puts the pot back exactly as it was when cp was taken.
func (s *State) Restore(cp Checkpoint) {
	s.status = cp.status
	s.potBoost = cp.potBoost
	s.critBonus = cp.critBonus
	for _, mt := range gamedata.MealTypes {
		copy(s.stock[mt], cp.stock[mt])
	}
	s.acc = cp.acc.clone()
}

func (s *State) Results(iterations int) Results { return s.acc.Results(iterations) }
