package simulation

import (
	"math"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/skill"
)

// stats are the fixed numbers derived from a member's settings and team.
type stats struct {
	frequency        float64 // seconds per help before the energy factor
	ingredientChance float64
	skillChance      float64
	carry            float64
	berriesPerHelp   float64
	skillLevel       int
	recoveryBonus    int
	energyNature     float64
	pityHelps        int
	bankLimit        int
	ingredients      []gamedata.IngredientAmount // unlocked slots only
}

// unlockedSubskills returns the subskills the member's level has opened.
func unlockedSubskills(rules *Rules, m *MemberSettings) []*gamedata.Subskill {
	n := 0
	for _, lvl := range rules.SubskillUnlockLevels {
		if m.Level >= lvl {
			n++
		}
	}
	return m.Subskills[:min(n, len(m.Subskills))]
}

// helpingBonusCount counts Helping Bonus subskills across the team.
func helpingBonusCount(rules *Rules, members []MemberSettings) int {
	n := 0
	for i := range members {
		for _, s := range unlockedSubskills(rules, &members[i]) {
			if s.Kind == gamedata.SubskillHelpingBonus {
				n++
			}
		}
	}
	return n
}

func deriveStats(rules *Rules, team *TeamSettings, m *MemberSettings, helpingBonus int, skillMaxLevel int) stats {
	sp := m.Species
	var speed, finder, trigger, inventory, berryFinding float64
	st := stats{skillLevel: m.SkillLevel, energyNature: natureOr(m.Nature.Energy)}
	for _, s := range unlockedSubskills(rules, m) {
		switch s.Kind {
		case gamedata.SubskillHelpingSpeed:
			speed += s.Amount
		case gamedata.SubskillIngredientFinder:
			finder += s.Amount
		case gamedata.SubskillSkillTrigger:
			trigger += s.Amount
		case gamedata.SubskillInventory:
			inventory += s.Amount
		case gamedata.SubskillBerryFinding:
			berryFinding += s.Amount
		case gamedata.SubskillEnergyRecovery:
			st.recoveryBonus++
		case gamedata.SubskillSkillLevel:
			st.skillLevel += int(s.Amount)
		}
	}
	if skillMaxLevel > 0 {
		st.skillLevel = min(st.skillLevel, skillMaxLevel)
	}

	speedBonus := min(speed+float64(helpingBonus)*rules.HelpingBonusPerMember, rules.MaxSpeedBonus)
	st.frequency = sp.Frequency *
		(1 - rules.LevelSpeedPerLevel*float64(m.Level-1)) *
		natureOr(m.Nature.Frequency) *
		(1 - speedBonus)
	carry := float64(sp.CarrySize+rules.CarryPerEvolution*sp.PreviousEvolutions) + inventory
	if team.Camp {
		st.frequency /= rules.CampSpeed
		carry = math.Ceil(carry * rules.CampCarry)
	}
	st.carry = carry

	st.ingredientChance = min(sp.IngredientPercentage/100*natureOr(m.Nature.Ingredient)*(1+finder), 1)
	st.skillChance = min(sp.SkillPercentage/100*natureOr(m.Nature.Skill)*(1+trigger), 1)

	st.berriesPerHelp = 1 + berryFinding
	if sp.Specialty == gamedata.SpecialtyBerry {
		st.berriesPerHelp++
	}

	st.pityHelps = skill.PityHelps(rules.PitySeconds, sp.Frequency)
	st.bankLimit = rules.BankLimit
	if sp.Specialty == gamedata.SpecialtySkill {
		st.bankLimit = rules.SpecialistBankLimit
	}

	for slot, ia := range m.Ingredients {
		if m.Level >= gamedata.IngredientUnlockLevels[slot] {
			st.ingredients = append(st.ingredients, ia)
		}
	}
	return st
}

func natureOr(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

// expectedHelp is the average produce of one help.
func (st *stats) expectedHelp(berry, level int) produce.Produce {
	var p produce.Produce
	if n := len(st.ingredients); n > 0 {
		share := st.ingredientChance / float64(n)
		for _, ia := range st.ingredients {
			p.AddIngredient(ia.Ingredient, ia.Amount*share)
		}
	}
	p.AddBerry(berry, level, st.berriesPerHelp*(1-st.ingredientChance))
	return p
}

// member is one helper's mutable state for one iteration.
type member struct {
	slot     int
	settings *MemberSettings
	stats    stats
	berry    *gamedata.Berry
	skillID  skill.ID
	skill    *gamedata.MainSkill

	energy     float64
	untilHelp  float64 // seconds
	skillState *skill.State

	inventory float64
	night     produce.Produce // held until wakeup
	pending   produce.Produce // ingredients waiting for the next meal

	tally memberTally
}

func (m *member) view() skill.MemberView {
	return skill.MemberView{
		Slot:        m.slot,
		Species:     m.settings.Species.Name,
		Berry:       m.berry.Index,
		BerryType:   m.berry.Type,
		Level:       m.settings.Level,
		Energy:      m.energy,
		Skill:       m.skillID,
		SkillLevel:  m.stats.skillLevel,
		Ingredients: m.stats.ingredients,
	}
}

// reset prepares the member for a new iteration.
func (m *member) reset(startEnergy float64) {
	m.energy = startEnergy
	m.untilHelp = m.stats.frequency * energy.Factor(startEnergy)
	m.skillState = skill.NewState(m.stats.skillChance, m.stats.pityHelps, m.stats.bankLimit)
	m.inventory = 0
	m.night.Reset()
	m.pending.Reset()
	m.tally = memberTally{}
}

func (m *member) addEnergy(amount, maxEnergy float64) {
	m.energy = max(0, min(m.energy+amount, maxEnergy))
}

// rollHelp draws the outcome of one help.
func (m *member) rollHelp(r *rng.Source) (produce.Produce, error) {
	var p produce.Produce
	if len(m.stats.ingredients) > 0 && r.Next() < m.stats.ingredientChance {
		ia, err := rng.Pick(r, m.stats.ingredients)
		if err != nil {
			return p, err
		}
		p.AddIngredient(ia.Ingredient, ia.Amount)
		return p, nil
	}
	p.AddBerry(m.berry.Index, m.settings.Level, m.stats.berriesPerHelp)
	return p, nil
}

// collect moves produce into the member's totals and queues its
// ingredients for cooking.
func (m *member) collect(p produce.Produce) {
	m.tally.produce.Add(p)
	for _, ia := range p.Ingredients {
		m.pending.AddIngredient(ia.Ingredient, ia.Amount)
	}
}

// stash keeps night produce in the inventory. A full inventory turns the
// help into berries and drops its ingredients.
func (m *member) stash(p produce.Produce) {
	if m.inventory >= m.stats.carry {
		m.tally.sneakySnacking++
		for _, ia := range p.Ingredients {
			m.tally.spilled.AddIngredient(ia.Ingredient, ia.Amount)
		}
		m.night.AddBerry(m.berry.Index, m.settings.Level, m.stats.berriesPerHelp)
		return
	}
	m.inventory += p.Total()
	m.night.Add(p)
}

// wake empties the night inventory into the totals.
func (m *member) wake() {
	m.collect(m.night)
	m.night.Reset()
	m.inventory = 0
}

// takePending hands the queued ingredients to the cooking pot.
func (m *member) takePending() []gamedata.IngredientAmount {
	out := append([]gamedata.IngredientAmount(nil), m.pending.Ingredients...)
	m.pending.Reset()
	return out
}
