package skill

import (
	"errors"
	"fmt"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
)

// Value splits an amount into its regular and critical parts.
type Value struct {
	Regular float64
	Crit    float64
}

func (v Value) Total() float64 { return v.Regular + v.Crit }

// Activation is the resolved outcome of one proc. Self is what the user
// receives and Team what its teammates receive, in the skill's unit.
type Activation struct {
	Skill          ID
	Via            ID // Metronome or Skill Copy when the skill was borrowed
	Level          int
	HelpsRequired  int
	FractionOfProc float64
	AdjustedAmount float64
	Produce        produce.Produce
	Self           Value
	Team           Value

	SelfEnergy float64
	TeamEnergy []float64 // indexed by team slot, may include the user
	ExtraHelps []float64 // indexed by team slot
	PotSize    float64
	CritBonus  float64
	Strength   float64
	Shards     float64
}

func (a *Activation) Crit() bool { return a.Self.Crit > 0 || a.Team.Crit > 0 }

// HasTeamEffect reports whether the activation touches other members and
// must wait for the end of the tick.
func (a *Activation) HasTeamEffect() bool {
	return len(a.TeamEnergy) > 0 || len(a.ExtraHelps) > 0
}

// MemberView is the read-only picture of a teammate a skill may look at.
// Views come from the previous tick.
type MemberView struct {
	Slot        int
	Species     string
	Berry       int
	BerryType   string
	Level       int
	Energy      float64
	Skill       ID
	SkillLevel  int
	Ingredients []gamedata.IngredientAmount
}

type Context struct {
	ID       ID
	Skill    *gamedata.MainSkill
	Level    int
	Fraction float64
	Rng      *rng.Source
	Catalog  *gamedata.Catalog
	Registry *Registry
	State    *State
	Self     int
	Team     []MemberView
}

func (c *Context) user() *MemberView { return &c.Team[c.Self] }

func (c *Context) amount() float64 { return c.Skill.Amount(c.Level) * c.Fraction }

func (c *Context) teamAmount() float64 { return c.Skill.TeamAmount(c.Level) * c.Fraction }

func (c *Context) roll(chance float64) bool { return chance > 0 && c.Rng.Next() < chance }

func (c *Context) teamSlice() []float64 { return make([]float64, len(c.Team)) }

// teammates returns the slots of everyone but the user.
func (c *Context) teammates() []int {
	out := make([]int, 0, len(c.Team)-1)
	for _, m := range c.Team {
		if m.Slot != c.Self {
			out = append(out, m.Slot)
		}
	}
	return out
}

// Effect resolves one proc of a skill.
type Effect interface {
	Activate(*Context) (Activation, error)
}

type EffectFunc func(*Context) (Activation, error)

func (f EffectFunc) Activate(c *Context) (Activation, error) { return f(c) }

// MissingSkillEffectError means the skill catalog names a skill with no
// registered effect. It is a programming error.
type MissingSkillEffectError struct {
	Skill ID
}

func (e *MissingSkillEffectError) Error() string {
	return fmt.Sprintf("no effect registered for main skill %s", e.Skill)
}

// Registry maps every skill identity to its effect. It is built once and
// read concurrently.
type Registry struct {
	effects [numIDs]Effect
}

func NewRegistry(effects map[ID]Effect) *Registry {
	r := &Registry{}
	for id, e := range effects {
		if id > None && id < numIDs {
			r.effects[id] = e
		}
	}
	return r
}

// Validate checks that every given skill has an effect.
func (r *Registry) Validate(ids ...ID) error {
	var errs []error
	for _, id := range ids {
		if id <= None || id >= numIDs || r.effects[id] == nil {
			errs = append(errs, &MissingSkillEffectError{Skill: id})
		}
	}
	return errors.Join(errs...)
}

// Activate dispatches to the skill's effect and stamps the common fields.
func (r *Registry) Activate(c *Context) (Activation, error) {
	if c.ID <= None || c.ID >= numIDs || r.effects[c.ID] == nil {
		return Activation{}, &MissingSkillEffectError{Skill: c.ID}
	}
	if c.Skill == nil {
		s, err := c.Catalog.Skill(c.ID.Key())
		if err != nil {
			return Activation{}, fmt.Errorf("activate %s: %w", c.ID, err)
		}
		c.Skill = s
	}
	if c.Self < 0 || c.Self >= len(c.Team) {
		return Activation{}, fmt.Errorf("activate %s: user slot %d outside team of %d", c.ID, c.Self, len(c.Team))
	}
	if c.State == nil {
		c.State = &State{}
	}
	c.Level = max(1, min(c.Level, c.Skill.MaxLevel()))
	if c.Fraction == 0 {
		c.Fraction = 1
	}
	a, err := r.effects[c.ID].Activate(c)
	if err != nil {
		return Activation{}, fmt.Errorf("activate %s: %w", c.ID, err)
	}
	if a.Skill == None {
		a.Skill = c.ID
	}
	if a.Level == 0 {
		a.Level = c.Level
	}
	a.FractionOfProc = c.Fraction
	return a, nil
}
