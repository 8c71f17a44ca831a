package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/simulation"
)

// TeamFile is a calculation request as written by hand or sent over HTTP.
// Everything is referenced by name; Resolve maps names onto a catalog.
// JSON is valid YAML, so ParseTeam reads both.
type TeamFile struct {
	Iterations int          `yaml:"iterations,omitempty" json:"iterations,omitempty"`
	Settings   SettingsFile `yaml:"settings" json:"settings"`
	Members    []MemberFile `yaml:"members" json:"members"`
}

type SettingsFile struct {
	Camp                  bool             `yaml:"camp,omitempty" json:"camp,omitempty"`
	Bedtime               string           `yaml:"bedtime" json:"bedtime"`
	Wakeup                string           `yaml:"wakeup" json:"wakeup"`
	Incense               bool             `yaml:"incense,omitempty" json:"incense,omitempty"`
	MealType              string           `yaml:"meal_type" json:"meal_type"`
	Favored               []string         `yaml:"favored,omitempty" json:"favored,omitempty"`
	StockpiledBerries     []BerryFile      `yaml:"stockpiled_berries,omitempty" json:"stockpiled_berries,omitempty"`
	StockpiledIngredients []IngredientFile `yaml:"stockpiled_ingredients,omitempty" json:"stockpiled_ingredients,omitempty"`
	PotSize               int              `yaml:"pot_size" json:"pot_size"`
	AreaBonus             float64          `yaml:"area_bonus,omitempty" json:"area_bonus,omitempty"`
	Excluded              []string         `yaml:"excluded,omitempty" json:"excluded,omitempty"`
}

type BerryFile struct {
	Name   string  `yaml:"name" json:"name"`
	Level  int     `yaml:"level" json:"level"`
	Amount float64 `yaml:"amount" json:"amount"`
}

type IngredientFile struct {
	Name   string  `yaml:"name" json:"name"`
	Amount float64 `yaml:"amount" json:"amount"`
}

// MemberFile names one helper. Ingredients lists the chosen ingredient per
// unlocked slot; when empty the first option of every slot is used.
type MemberFile struct {
	ID          string   `yaml:"id,omitempty" json:"id,omitempty"`
	Species     string   `yaml:"species" json:"species"`
	Level       int      `yaml:"level" json:"level"`
	Ingredients []string `yaml:"ingredients,omitempty" json:"ingredients,omitempty"`
	Nature      string   `yaml:"nature,omitempty" json:"nature,omitempty"`
	Subskills   []string `yaml:"subskills,omitempty" json:"subskills,omitempty"`
	SkillLevel  int      `yaml:"skill_level" json:"skill_level"`
}

// ParseTeam decodes a YAML or JSON team request.
func ParseTeam(data []byte) (*TeamFile, error) {
	var tf TeamFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing team file: %w", err)
	}
	return &tf, nil
}

// LoadTeam reads a team request from disk.
func LoadTeam(path string) (*TeamFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading team file: %w", err)
	}
	return ParseTeam(data)
}

// Resolve looks every name up in c. All lookup failures are reported
// together; range checks are left to simulation.New.
func (tf *TeamFile) Resolve(c *gamedata.Catalog) (simulation.TeamSettings, []simulation.MemberSettings, error) {
	var errs []error
	settings := tf.Settings.resolve(c, &errs)

	members := make([]simulation.MemberSettings, len(tf.Members))
	for i, mf := range tf.Members {
		m, err := mf.resolve(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("members[%d]: %w", i, err))
		}
		members[i] = m
	}
	if err := errors.Join(errs...); err != nil {
		return simulation.TeamSettings{}, nil, err
	}
	return settings, members, nil
}

func (sf SettingsFile) resolve(c *gamedata.Catalog, errs *[]error) simulation.TeamSettings {
	fail := func(field string, err error) {
		*errs = append(*errs, fmt.Errorf("settings.%s: %w", field, err))
	}

	ts := simulation.TeamSettings{
		Camp:      sf.Camp,
		Incense:   sf.Incense,
		PotSize:   sf.PotSize,
		AreaBonus: sf.AreaBonus,
	}
	var err error
	if ts.Sleep.Start, err = energy.ParseClock(sf.Bedtime); err != nil {
		fail("bedtime", err)
	}
	if ts.Sleep.End, err = energy.ParseClock(sf.Wakeup); err != nil {
		fail("wakeup", err)
	}
	if ts.MealType, err = gamedata.ParseMealType(sf.MealType); err != nil {
		fail("meal_type", err)
	}

	for _, name := range sf.Favored {
		b, err := c.Berry(name)
		if err != nil {
			fail("favored", err)
			continue
		}
		ts.Favored = append(ts.Favored, b.Index)
	}
	for _, bf := range sf.StockpiledBerries {
		b, err := c.Berry(bf.Name)
		if err != nil {
			fail("stockpiled_berries", err)
			continue
		}
		ts.StockpiledBerries = append(ts.StockpiledBerries, produce.BerrySet{Berry: b.Index, Level: bf.Level, Amount: bf.Amount})
	}
	for _, in := range sf.StockpiledIngredients {
		ing, err := c.Ingredient(in.Name)
		if err != nil {
			fail("stockpiled_ingredients", err)
			continue
		}
		ts.StockpiledIngredients = append(ts.StockpiledIngredients, gamedata.IngredientAmount{Ingredient: ing.Index, Amount: in.Amount})
	}
	for _, name := range sf.Excluded {
		ing, err := c.Ingredient(name)
		if err != nil {
			fail("excluded", err)
			continue
		}
		ts.Excluded = append(ts.Excluded, ing.Index)
	}
	return ts
}

func (mf MemberFile) resolve(c *gamedata.Catalog) (simulation.MemberSettings, error) {
	var errs []error
	m := simulation.MemberSettings{ExternalID: mf.ID, Level: mf.Level, SkillLevel: mf.SkillLevel}

	sp, err := c.SpeciesByName(mf.Species)
	if err != nil {
		return m, err
	}
	m.Species = sp
	if m.ExternalID == "" {
		m.ExternalID = sp.Name
	}

	if m.Ingredients, err = chooseIngredients(c, sp, mf.Ingredients); err != nil {
		errs = append(errs, err)
	}

	if mf.Nature == "" {
		m.Nature = neutralNature(c)
	} else if m.Nature, err = c.Nature(mf.Nature); err != nil {
		errs = append(errs, err)
	}

	for _, name := range mf.Subskills {
		s, err := c.Subskill(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m.Subskills = append(m.Subskills, s)
	}
	return m, errors.Join(errs...)
}

// chooseIngredients matches each name against the species' options for
// that slot.
func chooseIngredients(c *gamedata.Catalog, sp *gamedata.Species, names []string) ([]gamedata.IngredientAmount, error) {
	if len(names) == 0 {
		var out []gamedata.IngredientAmount
		for _, opts := range sp.IngredientOptions {
			if len(opts) > 0 {
				out = append(out, opts[0])
			}
		}
		return out, nil
	}
	if len(names) > len(sp.IngredientOptions) {
		return nil, fmt.Errorf("%s has %d ingredient slots, got %d", sp.Name, len(sp.IngredientOptions), len(names))
	}

	out := make([]gamedata.IngredientAmount, 0, len(names))
	for slot, name := range names {
		ing, err := c.Ingredient(name)
		if err != nil {
			return nil, err
		}
		found := false
		for _, opt := range sp.IngredientOptions[slot] {
			if opt.Ingredient == ing.Index {
				out = append(out, opt)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s cannot find %s in slot %d", sp.Name, ing.Name, slot+1)
		}
	}
	return out, nil
}

func neutralNature(c *gamedata.Catalog) *gamedata.Nature {
	for i := range c.Natures {
		n := &c.Natures[i]
		if n.Frequency == 1 && n.Ingredient == 1 && n.Skill == 1 && n.Energy == 1 {
			return n
		}
	}
	return nil
}
