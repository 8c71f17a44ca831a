package simulation

import (
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/skill"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/strength"
)

// ExpectedResult is a deterministic estimate of one member's day.
type ExpectedResult struct {
	Species        string             `json:"species"`
	StartingEnergy float64            `json:"starting_energy"`
	Helps          float64            `json:"helps"`
	NightHelps     float64            `json:"night_helps"`
	SneakySnacking float64            `json:"sneaky_snacking"`
	DaytimeProcs   float64            `json:"daytime_procs"`
	NightlyProcs   float64            `json:"nightly_procs"`
	Schedule       []skill.Slot       `json:"schedule"`
	Activations    []skill.Activation `json:"-"`
	Produce        produce.Produce    `json:"-"`
	SkillProduce   produce.Produce    `json:"-"`
	Spilled        produce.Produce    `json:"-"`
	Strength       strength.Result    `json:"strength"`
}

// Expected estimates one member's day without rolling for helps. Skill
// procs follow skill.Schedule and each activation is scaled by its
// fraction of a proc; range and crit rolls still draw from the source.
func Expected(settings TeamSettings, ms MemberSettings, opts Options) (ExpectedResult, error) {
	opts.Iterations = max(opts.Iterations, 1)
	s, err := New(settings, []MemberSettings{ms}, opts)
	if err != nil {
		return ExpectedResult{}, err
	}
	return s.expected(0)
}

func (s *Simulator) expected(slot int) (ExpectedResult, error) {
	m := s.members[slot]
	m.reset(s.startEnergy[slot])
	res := ExpectedResult{Species: m.settings.Species.Name, StartingEnergy: m.energy}

	tick := s.rules.TickMinutes
	e := m.energy
	for t := range s.ticksPerDay {
		minute := t * tick
		for range (minute+tick)/energy.MinutesPerDecay - minute/energy.MinutesPerDecay {
			e -= energy.DegradeOneUnit(e)
		}
		helps := float64(tick*60) / (m.stats.frequency * energy.Factor(e))
		if t < s.awakeTicks {
			res.Helps += helps
		} else {
			res.NightHelps += helps
		}
	}

	per := m.stats.expectedHelp(m.berry.Index, m.settings.Level)
	stored := res.NightHelps
	if n := per.Total(); n > 0 {
		stored = min(res.NightHelps, m.stats.carry/n)
	}
	res.SneakySnacking = res.NightHelps - stored
	res.Produce = per.Scale(res.Helps + stored)
	res.Produce.AddBerry(m.berry.Index, m.settings.Level, res.SneakySnacking*m.stats.berriesPerHelp)
	for _, ia := range per.Ingredients {
		res.Spilled.AddIngredient(ia.Ingredient, ia.Amount*res.SneakySnacking)
	}

	chance := m.stats.skillChance
	specialist := m.settings.Species.Specialty == gamedata.SpecialtySkill
	res.DaytimeProcs = res.Helps * chance
	res.NightlyProcs = min(skill.NightlyProcChance(int(res.NightHelps), chance, specialist), float64(m.stats.bankLimit))
	res.Schedule = skill.Schedule(res.NightlyProcs, res.DaytimeProcs, res.Helps)

	s.snapshot()
	var self, team float64
	for _, sl := range res.Schedule {
		if sl.FractionOfProc <= 0 {
			continue
		}
		a, err := s.registry.Activate(&skill.Context{
			ID:       m.skillID,
			Skill:    m.skill,
			Level:    m.stats.skillLevel,
			Fraction: sl.FractionOfProc,
			Rng:      s.rng,
			Catalog:  s.catalog,
			Registry: s.registry,
			State:    m.skillState,
			Self:     slot,
			Team:     s.views,
		})
		if err != nil {
			return ExpectedResult{}, err
		}
		a.HelpsRequired = sl.HelpsRequired
		res.Activations = append(res.Activations, a)

		res.SkillProduce.Add(a.Produce)
		if a.Skill == skill.LunarBlessing {
			team += a.Strength
		} else {
			self += a.Strength
		}
		if slot < len(a.ExtraHelps) && a.ExtraHelps[slot] > 0 {
			res.Produce.Add(per.Scale(a.ExtraHelps[slot]))
		}
	}
	res.Strength = s.memberStrength(res.Produce, res.SkillProduce, self, team)
	s.logger.Debug("expected day",
		"species", res.Species, "helps", res.Helps, "night_helps", res.NightHelps,
		"procs", res.DaytimeProcs+res.NightlyProcs, "strength", res.Strength.Total())
	return res, nil
}

// startingEnergies estimates each member's energy on the first morning,
// counting what the team's energy skills hand out over a day.
func (s *Simulator) startingEnergies() []float64 {
	gains := s.dailySkillEnergy()
	out := make([]float64, len(s.members))
	for i := range s.members {
		recovered := s.sleep[i].Recovered(s.rules.SleepCap)
		out[i] = energy.StartingEnergy(recovered, nil, gains[i], s.rules.MaxEnergy).StartingEnergy
	}
	return out
}

// dailySkillEnergy lists, per member, the expected energy received from
// each teammate's skill over one day at full energy.
func (s *Simulator) dailySkillEnergy() [][]float64 {
	out := make([][]float64, len(s.members))
	awake := float64(s.awakeTicks * s.rules.TickMinutes * 60)
	full := energy.Factor(s.rules.SleepCap)
	for _, m := range s.members {
		procs := awake / (m.stats.frequency * full) * m.stats.skillChance
		amount := procs * m.skill.Amount(m.stats.skillLevel)
		switch m.skillID {
		case skill.ChargeEnergyS, skill.Moonlight:
			out[m.slot] = append(out[m.slot], amount)
		case skill.EnergyForEveryoneS, skill.LunarBlessing:
			for i := range out {
				out[i] = append(out[i], amount)
			}
		case skill.EnergizingCheerS, skill.EnergizingCheerSNuzzle:
			for i := range out {
				out[i] = append(out[i], amount/float64(len(out)))
			}
		}
	}
	return out
}
