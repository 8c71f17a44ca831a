package gamedata

import (
	"fmt"
	"math"
	"strings"
)

type MealType int

const (
	MealCurry MealType = iota
	MealSalad
	MealDessert
)

// MealTypes lists every meal type in cooking order.
var MealTypes = [...]MealType{MealCurry, MealSalad, MealDessert}

func (m MealType) String() string {
	switch m {
	case MealCurry:
		return "curry"
	case MealSalad:
		return "salad"
	case MealDessert:
		return "dessert"
	}
	return fmt.Sprintf("MealType(%d)", int(m))
}

func (m MealType) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MealType) UnmarshalText(b []byte) error {
	v, err := ParseMealType(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseMealType(s string) (MealType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "curry", "stew":
		return MealCurry, nil
	case "salad":
		return MealSalad, nil
	case "dessert", "drink":
		return MealDessert, nil
	}
	return 0, fmt.Errorf("unknown meal type %q", s)
}

type Specialty int

const (
	SpecialtyBerry Specialty = iota
	SpecialtyIngredient
	SpecialtySkill
	SpecialtyAll
)

func (s Specialty) String() string {
	switch s {
	case SpecialtyBerry:
		return "berry"
	case SpecialtyIngredient:
		return "ingredient"
	case SpecialtySkill:
		return "skill"
	case SpecialtyAll:
		return "all"
	}
	return fmt.Sprintf("Specialty(%d)", int(s))
}

func parseSpecialty(s string) (Specialty, bool) {
	switch s {
	case "berry":
		return SpecialtyBerry, true
	case "ingredient":
		return SpecialtyIngredient, true
	case "skill":
		return SpecialtySkill, true
	case "all":
		return SpecialtyAll, true
	}
	return 0, false
}

type SubskillKind int

const (
	SubskillOther SubskillKind = iota
	SubskillHelpingSpeed
	SubskillHelpingBonus
	SubskillIngredientFinder
	SubskillSkillTrigger
	SubskillInventory
	SubskillBerryFinding
	SubskillEnergyRecovery
	SubskillSkillLevel
)

func parseSubskillKind(s string) SubskillKind {
	switch s {
	case "helping speed":
		return SubskillHelpingSpeed
	case "helping bonus":
		return SubskillHelpingBonus
	case "ingredient finder":
		return SubskillIngredientFinder
	case "skill trigger":
		return SubskillSkillTrigger
	case "inventory":
		return SubskillInventory
	case "berry finding":
		return SubskillBerryFinding
	case "energy recovery":
		return SubskillEnergyRecovery
	case "skill level":
		return SubskillSkillLevel
	}
	return SubskillOther
}

type Berry struct {
	Index int
	Name  string
	Type  string
	Value int
}

// Power is the strength of one berry at the given level.
func (b *Berry) Power(level int) float64 {
	return BerryPower(b.Value, level)
}

// BerryPower grows linearly at low levels and geometrically later on,
// whichever is larger.
func BerryPower(value, level int) float64 {
	if level < 1 {
		level = 1
	}
	linear := float64(value + level - 1)
	geometric := math.Round(float64(value) * math.Pow(1.025, float64(level-1)))
	return math.Max(linear, geometric)
}

type Ingredient struct {
	Index int
	Name  string
	Value int
}

// IngredientAmount refers to Catalog.Ingredients by index.
type IngredientAmount struct {
	Ingredient int
	Amount     float64
}

type Recipe struct {
	Index       int
	Name        string
	Type        MealType
	Mixed       bool
	Bonus       float64 // percent
	Ingredients []IngredientAmount
	Size        int
	Value       int
}

type MainSkill struct {
	Key            string
	Name           string
	Unit           string
	Amounts        []float64
	TeamAmounts    []float64
	CritChance     float64
	CritMultiplier float64
	Spread         float64
	ReleaseChance  float64
	MaxStacks      int
}

func (s *MainSkill) MaxLevel() int { return len(s.Amounts) }

// Amount returns the amount for a 1-based level, clamped to the known range.
func (s *MainSkill) Amount(level int) float64 {
	return levelValue(s.Amounts, level)
}

func (s *MainSkill) TeamAmount(level int) float64 {
	return levelValue(s.TeamAmounts, level)
}

func levelValue(values []float64, level int) float64 {
	if len(values) == 0 {
		return 0
	}
	level = max(1, min(level, len(values)))
	return values[level-1]
}

// Nature multipliers default to 1 when neutral.
type Nature struct {
	Name       string
	Frequency  float64
	Ingredient float64
	Skill      float64
	Energy     float64
}

type Subskill struct {
	Name   string
	Kind   SubskillKind
	Amount float64
}

// IngredientUnlockLevels are the member levels at which slots 0..2 open.
var IngredientUnlockLevels = [3]int{1, 30, 60}

type Species struct {
	Name                 string
	Berry                int
	Specialty            Specialty
	Frequency            float64 // seconds per help at level 1
	CarrySize            int
	PreviousEvolutions   int
	IngredientPercentage float64
	SkillPercentage      float64
	Skill                string
	IngredientOptions    [3][]IngredientAmount
}
