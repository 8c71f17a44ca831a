// Package simulation drives a team of helpers through simulated weeks and
// averages what they produce and cook over many iterations.
package simulation

import (
	"fmt"
	"log/slog"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/cooking"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/skill"
)

// MaxMembers is the largest team a simulation accepts.
const MaxMembers = 5

// TeamSettings are shared by every member of the team.
type TeamSettings struct {
	Camp     bool
	Sleep    energy.Period // bedtime -> wakeup
	Incense  bool
	MealType gamedata.MealType // preferred recipe type

	Favored               []int // berry indexes
	StockpiledBerries     []produce.BerrySet
	StockpiledIngredients []gamedata.IngredientAmount
	PotSize               int
	AreaBonus             float64 // fraction, 0.5 is +50%
	Excluded              []int   // ingredient indexes
}

// Awake is the wakeup -> bedtime part of the day.
func (t TeamSettings) Awake() energy.Period {
	return energy.Period{Start: t.Sleep.End, End: t.Sleep.Start}
}

// MemberSettings describes one helper. Ingredients holds the chosen
// ingredient per slot; slots open at gamedata.IngredientUnlockLevels.
type MemberSettings struct {
	ExternalID  string
	Species     *gamedata.Species
	Level       int
	Ingredients []gamedata.IngredientAmount
	Nature      *gamedata.Nature
	Subskills   []*gamedata.Subskill // in unlock order
	SkillLevel  int
}

// Rules are the tunable game constants the simulation runs under.
type Rules struct {
	Days        int `yaml:"days" json:"days"`
	TickMinutes int `yaml:"tick_minutes" json:"tick_minutes"`

	MaxEnergy float64 `yaml:"max_energy" json:"max_energy"`
	SleepCap  float64 `yaml:"sleep_cap" json:"sleep_cap"`

	PitySeconds            float64 `yaml:"pity_seconds" json:"pity_seconds"`
	BankLimit              int     `yaml:"bank_limit" json:"bank_limit"`
	SpecialistBankLimit    int     `yaml:"specialist_bank_limit" json:"specialist_bank_limit"`
	ResetPityAtDayBoundary bool    `yaml:"reset_pity_at_day_boundary" json:"reset_pity_at_day_boundary"`

	LevelSpeedPerLevel    float64 `yaml:"level_speed_per_level" json:"level_speed_per_level"`
	HelpingBonusPerMember float64 `yaml:"helping_bonus_per_member" json:"helping_bonus_per_member"`
	MaxSpeedBonus         float64 `yaml:"max_speed_bonus" json:"max_speed_bonus"`
	CarryPerEvolution     int     `yaml:"carry_per_evolution" json:"carry_per_evolution"`
	SubskillUnlockLevels  []int   `yaml:"subskill_unlock_levels" json:"subskill_unlock_levels"`

	CampSpeed float64 `yaml:"camp_speed" json:"camp_speed"`
	CampCarry float64 `yaml:"camp_carry" json:"camp_carry"`

	Lunch  energy.Clock `yaml:"lunch" json:"lunch"`
	Dinner energy.Clock `yaml:"dinner" json:"dinner"`

	Cooking cooking.Rules `yaml:"cooking" json:"cooking"`
}

func DefaultRules() Rules {
	return Rules{
		Days:                  7,
		TickMinutes:           5,
		MaxEnergy:             energy.MaxEnergy,
		SleepCap:              energy.SleepCap,
		PitySeconds:           144000,
		BankLimit:             1,
		SpecialistBankLimit:   2,
		LevelSpeedPerLevel:    0.002,
		HelpingBonusPerMember: 0.05,
		MaxSpeedBonus:         0.35,
		CarryPerEvolution:     5,
		SubskillUnlockLevels:  []int{10, 25, 50, 75, 100},
		CampSpeed:             1.2,
		CampCarry:             1.2,
		Lunch:                 energy.Clock{Hour: 12},
		Dinner:                energy.Clock{Hour: 18},
		Cooking:               cooking.DefaultRules(),
	}
}

// Options carry the per-request collaborators. Zero values pick defaults:
// the embedded catalog, the default registry, a fresh random source and a
// discarding logger.
type Options struct {
	Iterations int
	Rules      *Rules
	Catalog    *gamedata.Catalog
	Registry   *skill.Registry
	Rng        *rng.Source
	Cooking    *cooking.State // shared pot; built from the team settings when nil
	Logger     *slog.Logger
	EventLog   bool
}

// ConfigError rejects a request before any iteration runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (r *Rules) validate() error {
	switch {
	case r.Days < 1:
		return configErr("rules.days", "must be at least 1, got %d", r.Days)
	case r.TickMinutes < 1 || 1440%r.TickMinutes != 0:
		return configErr("rules.tick_minutes", "must divide a day, got %d", r.TickMinutes)
	case r.MaxEnergy <= 0 || r.SleepCap <= 0:
		return configErr("rules.max_energy", "energy caps must be positive")
	case r.BankLimit < 0 || r.SpecialistBankLimit < 0:
		return configErr("rules.bank_limit", "must not be negative")
	case r.CampSpeed <= 0 || r.CampCarry <= 0:
		return configErr("rules.camp_speed", "camp factors must be positive")
	}
	return nil
}

func (t *TeamSettings) validate(c *gamedata.Catalog, maxPot int) error {
	sleep := t.Sleep.Minutes()
	if sleep <= 0 {
		return configErr("sleep", "sleep duration must be positive (%s -> %s)", t.Sleep.Start, t.Sleep.End)
	}
	if t.PotSize < 1 {
		return configErr("pot_size", "must be positive, got %d", t.PotSize)
	}
	if maxPot > 0 && t.PotSize > maxPot {
		return configErr("pot_size", "%d exceeds the maximum of %d", t.PotSize, maxPot)
	}
	if t.AreaBonus < 0 {
		return configErr("area_bonus", "must not be negative, got %v", t.AreaBonus)
	}
	if int(t.MealType) < 0 || int(t.MealType) >= len(gamedata.MealTypes) {
		return configErr("meal_type", "unknown meal type %d", t.MealType)
	}
	for _, b := range t.Favored {
		if b < 0 || b >= len(c.Berries) {
			return configErr("favored", "berry index %d out of range", b)
		}
	}
	for _, i := range t.Excluded {
		if i < 0 || i >= len(c.Ingredients) {
			return configErr("excluded", "ingredient index %d out of range", i)
		}
	}
	for _, ia := range t.StockpiledIngredients {
		if ia.Ingredient < 0 || ia.Ingredient >= len(c.Ingredients) || ia.Amount < 0 {
			return configErr("stockpile", "bad ingredient entry %+v", ia)
		}
	}
	for _, b := range t.StockpiledBerries {
		if b.Berry < 0 || b.Berry >= len(c.Berries) || b.Amount < 0 {
			return configErr("stockpile", "bad berry entry %+v", b)
		}
	}
	return nil
}

func (m *MemberSettings) validate(i int, c *gamedata.Catalog) error {
	field := func(name string) string { return fmt.Sprintf("members[%d].%s", i, name) }
	switch {
	case m.Species == nil:
		return configErr(field("species"), "missing")
	case m.Nature == nil:
		return configErr(field("nature"), "missing")
	case m.Level < 1:
		return configErr(field("level"), "must be at least 1, got %d", m.Level)
	case m.SkillLevel < 1:
		return configErr(field("skill_level"), "must be at least 1, got %d", m.SkillLevel)
	case len(m.Ingredients) == 0:
		return configErr(field("ingredients"), "at least one ingredient is required")
	case len(m.Ingredients) > len(gamedata.IngredientUnlockLevels):
		return configErr(field("ingredients"), "at most %d ingredients, got %d", len(gamedata.IngredientUnlockLevels), len(m.Ingredients))
	}
	for _, ia := range m.Ingredients {
		if ia.Ingredient < 0 || ia.Ingredient >= len(c.Ingredients) || ia.Amount <= 0 {
			return configErr(field("ingredients"), "bad ingredient entry %+v", ia)
		}
	}
	for j, s := range m.Subskills {
		if s == nil {
			return configErr(field("subskills"), "entry %d is empty", j)
		}
	}
	return nil
}

func validate(settings *TeamSettings, members []MemberSettings, rules *Rules, c *gamedata.Catalog) error {
	if err := rules.validate(); err != nil {
		return err
	}
	if len(members) < 1 || len(members) > MaxMembers {
		return configErr("members", "team must have 1 to %d members, got %d", MaxMembers, len(members))
	}
	if err := settings.validate(c, rules.Cooking.MaxPotSize); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i := range members {
		if err := members[i].validate(i, c); err != nil {
			return err
		}
		if id := members[i].ExternalID; id != "" {
			if seen[id] {
				return configErr(fmt.Sprintf("members[%d].external_id", i), "duplicate id %q", id)
			}
			seen[id] = true
		}
	}
	return nil
}
