// Package config loads the simulator's rules and team request files.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/cooking"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/simulation"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable rule.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Energy     EnergyConfig     `yaml:"energy"`
	Skill      SkillConfig      `yaml:"skill"`
	Cooking    CookingConfig    `yaml:"cooking"`
	Camp       CampConfig       `yaml:"camp"`
	Rng        RngConfig        `yaml:"rng"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

type SimulationConfig struct {
	Iterations            int     `yaml:"iterations"`
	Workers               int     `yaml:"workers"`
	Days                  int     `yaml:"days"`
	TickMinutes           int     `yaml:"tick_minutes"`
	LevelSpeedPerLevel    float64 `yaml:"level_speed_per_level"`
	HelpingBonusPerMember float64 `yaml:"helping_bonus_per_member"`
	MaxSpeedBonus         float64 `yaml:"max_speed_bonus"`
	CarryPerEvolution     int     `yaml:"carry_per_evolution"`
	SubskillUnlockLevels  []int   `yaml:"subskill_unlock_levels"`
}

type EnergyConfig struct {
	MaxEnergy float64 `yaml:"max_energy"`
	SleepCap  float64 `yaml:"sleep_cap"`
}

type SkillConfig struct {
	PitySeconds            float64 `yaml:"pity_seconds"`
	BankLimit              int     `yaml:"bank_limit"`
	SpecialistBankLimit    int     `yaml:"specialist_bank_limit"`
	ResetPityAtDayBoundary bool    `yaml:"reset_pity_at_day_boundary"`
}

// CookingConfig embeds the pot rules and adds the meal times ("HH:MM").
type CookingConfig struct {
	cooking.Rules `yaml:",inline"`
	Lunch         string `yaml:"lunch"`
	Dinner        string `yaml:"dinner"`
}

type CampConfig struct {
	Speed float64 `yaml:"speed"`
	Carry float64 `yaml:"carry"`
}

type RngConfig struct {
	Seed      int64 `yaml:"seed"`
	TableSize int   `yaml:"table_size"`
	Offset    int   `yaml:"offset"`
}

// DerivedConfig holds values parsed from the raw fields.
type DerivedConfig struct {
	Lunch  energy.Clock
	Dinner energy.Clock
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) computeDerived() error {
	var err error
	if c.Derived.Lunch, err = energy.ParseClock(c.Cooking.Lunch); err != nil {
		return fmt.Errorf("cooking.lunch: %w", err)
	}
	if c.Derived.Dinner, err = energy.ParseClock(c.Cooking.Dinner); err != nil {
		return fmt.Errorf("cooking.dinner: %w", err)
	}
	return nil
}

// Rules converts the loaded values into simulation rules.
func (c *Config) Rules() simulation.Rules {
	return simulation.Rules{
		Days:                   c.Simulation.Days,
		TickMinutes:            c.Simulation.TickMinutes,
		MaxEnergy:              c.Energy.MaxEnergy,
		SleepCap:               c.Energy.SleepCap,
		PitySeconds:            c.Skill.PitySeconds,
		BankLimit:              c.Skill.BankLimit,
		SpecialistBankLimit:    c.Skill.SpecialistBankLimit,
		ResetPityAtDayBoundary: c.Skill.ResetPityAtDayBoundary,
		LevelSpeedPerLevel:     c.Simulation.LevelSpeedPerLevel,
		HelpingBonusPerMember:  c.Simulation.HelpingBonusPerMember,
		MaxSpeedBonus:          c.Simulation.MaxSpeedBonus,
		CarryPerEvolution:      c.Simulation.CarryPerEvolution,
		SubskillUnlockLevels:   append([]int(nil), c.Simulation.SubskillUnlockLevels...),
		CampSpeed:              c.Camp.Speed,
		CampCarry:              c.Camp.Carry,
		Lunch:                  c.Derived.Lunch,
		Dinner:                 c.Derived.Dinner,
		Cooking:                c.Cooking.Rules,
	}
}

// Source returns a random cursor for the configured table. The default
// seed and size share the process-wide table.
func (c *Config) Source() *rng.Source {
	if c.Rng.Seed == rng.DefaultSeed && c.Rng.TableSize == rng.DefaultTableSize {
		return rng.NewAt(c.Rng.Offset)
	}
	return rng.NewFromTable(rng.NewTable(c.Rng.Seed, c.Rng.TableSize), c.Rng.Offset)
}

// YAML renders the configuration, for writing an editable rules file.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
