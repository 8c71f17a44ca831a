// Package strength turns produce and skill value into the strength score
// teams are ranked by.
package strength

import (
	"math"
	"slices"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
)

// SkillStrengthFactor converts a strength skill's amount into score.
const SkillStrengthFactor = 1.5

type Settings struct {
	Favored   []int   // berry indexes
	AreaBonus float64 // fraction, 0.25 is +25%
}

type SkillValue struct {
	AmountToSelf float64
	AmountToTeam float64
}

type Input struct {
	Settings            Settings
	ProduceWithoutSkill produce.Produce
	ProduceFromSkill    produce.Produce
	SkillValue          SkillValue
}

// Breakdown keeps the parts of a bucket additive so each can be audited.
type Breakdown struct {
	Base        float64 `json:"base"`
	Favored     float64 `json:"favored"`
	IslandBonus float64 `json:"island_bonus"`
}

type Bucket struct {
	Total     float64   `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

type Result struct {
	Berries Bucket `json:"berries"`
	Skill   Bucket `json:"skill"`
}

func (r Result) Total() float64 { return r.Berries.Total + r.Skill.Total }

// Calculate scores the input against the catalog's berry table. Totals are
// floored once, after every part is summed.
func Calculate(c *gamedata.Catalog, in Input) Result {
	var r Result
	r.Berries.Breakdown = berryBreakdown(c, in.Settings, in.ProduceWithoutSkill)
	r.Skill.Breakdown = berryBreakdown(c, in.Settings, in.ProduceFromSkill)

	direct := (in.SkillValue.AmountToSelf + in.SkillValue.AmountToTeam) * SkillStrengthFactor
	r.Skill.Breakdown.Base += direct
	r.Skill.Breakdown.IslandBonus += direct * in.Settings.AreaBonus

	r.Berries.Total = r.Berries.Breakdown.floor()
	r.Skill.Total = r.Skill.Breakdown.floor()
	return r
}

func berryBreakdown(c *gamedata.Catalog, s Settings, p produce.Produce) Breakdown {
	var b Breakdown
	for _, set := range p.Berries {
		base := set.Amount * c.Berries[set.Berry].Power(set.Level)
		favored := 0.0
		if slices.Contains(s.Favored, set.Berry) {
			favored = base
		}
		b.Base += base
		b.Favored += favored
		b.IslandBonus += (base + favored) * s.AreaBonus
	}
	return b
}

func (b Breakdown) floor() float64 {
	return math.Floor(b.Base + b.Favored + b.IslandBonus)
}
