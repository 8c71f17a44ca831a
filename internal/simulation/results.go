package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/cooking"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/skill"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/strength"
)

// ── Raw sums ────────────────────────────────────────────────────────

type skillTally struct {
	procs        float64
	crits        float64
	regular      float64
	crit         float64
	strengthSelf float64
	strengthTeam float64
	shards       float64
	energySelf   float64
	energyTeam   float64
	helpsGiven   float64
	potSize      float64
	critBonus    float64
}

func (t *skillTally) add(o skillTally) {
	t.procs += o.procs
	t.crits += o.crits
	t.regular += o.regular
	t.crit += o.crit
	t.strengthSelf += o.strengthSelf
	t.strengthTeam += o.strengthTeam
	t.shards += o.shards
	t.energySelf += o.energySelf
	t.energyTeam += o.energyTeam
	t.helpsGiven += o.helpsGiven
	t.potSize += o.potSize
	t.critBonus += o.critBonus
}

// record folds one activation in. TeamEnergy may include the user.
func (t *skillTally) record(slot int, a skill.Activation) {
	t.procs++
	if a.Crit() {
		t.crits++
	}
	t.regular += a.Self.Regular + a.Team.Regular
	t.crit += a.Self.Crit + a.Team.Crit
	if a.Skill == skill.LunarBlessing {
		t.strengthTeam += a.Strength
	} else {
		t.strengthSelf += a.Strength
	}
	t.shards += a.Shards
	t.energySelf += a.SelfEnergy
	for i, e := range a.TeamEnergy {
		if i == slot {
			t.energySelf += e
		} else {
			t.energyTeam += e
		}
	}
	for _, h := range a.ExtraHelps {
		t.helpsGiven += h
	}
	t.potSize += a.PotSize
	t.critBonus += a.CritBonus
}

type memberTally struct {
	produce        produce.Produce
	skillProduce   produce.Produce
	spilled        produce.Produce
	helps          float64
	nightHelps     float64
	extraHelps     float64
	sneakySnacking float64
	skill          skillTally
}

func (t *memberTally) add(o *memberTally) {
	t.produce.Add(o.produce)
	t.skillProduce.Add(o.skillProduce)
	t.spilled.Add(o.spilled)
	t.helps += o.helps
	t.nightHelps += o.nightHelps
	t.extraHelps += o.extraHelps
	t.sneakySnacking += o.sneakySnacking
	t.skill.add(o.skill)
}

// tally is everything a Simulator has summed over its finished
// iterations. Tallies from parallel workers merge in worker order.
type tally struct {
	iterations int
	members    []memberTally
	cooking    cooking.Accumulator
	samples    []float64 // team strength per iteration
}

func (t *tally) merge(o tally) {
	t.iterations += o.iterations
	if t.members == nil {
		t.members = make([]memberTally, len(o.members))
	}
	for i := range o.members {
		t.members[i].add(&o.members[i])
	}
	t.cooking.Merge(o.cooking)
	t.samples = append(t.samples, o.samples...)
}

// ── Summary statistics ──────────────────────────────────────────────

// Summary describes the spread of per-iteration team strength.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P10    float64 `json:"p10"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
}

// Summarize computes a Summary. Fewer than two samples have no spread.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	x := slices.Clone(samples)
	slices.Sort(x)
	s := Summary{
		N:    len(x),
		Mean: stat.Mean(x, nil),
		Min:  floats.Min(x),
		Max:  floats.Max(x),
		P10:  stat.Quantile(0.1, stat.Empirical, x, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, x, nil),
		P90:  stat.Quantile(0.9, stat.Empirical, x, nil),
	}
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	return s
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("n", s.N),
		slog.Float64("mean", math.Round(s.Mean)),
		slog.Float64("sd", math.Round(s.StdDev)),
		slog.Float64("p10", s.P10),
		slog.Float64("p90", s.P90),
	)
}

// ── Public results ──────────────────────────────────────────────────

type NamedAmount struct {
	Name   string  `json:"name" csv:"name"`
	Level  int     `json:"level,omitempty" csv:"level"`
	Amount float64 `json:"amount" csv:"amount"`
}

type SkillResult struct {
	Skill        string  `json:"skill"`
	Procs        float64 `json:"procs"`
	Crits        float64 `json:"crits"`
	RegularValue float64 `json:"regular_value"`
	CritValue    float64 `json:"crit_value"`
	StrengthSelf float64 `json:"strength_self"`
	StrengthTeam float64 `json:"strength_team"`
	Shards       float64 `json:"shards"`
	EnergySelf   float64 `json:"energy_self"`
	EnergyTeam   float64 `json:"energy_team"`
	HelpsGiven   float64 `json:"helps_given"`
	PotSize      float64 `json:"pot_size"`
	CritBonus    float64 `json:"crit_bonus"`
}

// MemberResult is one member's expected weekly output.
type MemberResult struct {
	ExternalID       string          `json:"external_id,omitempty"`
	Species          string          `json:"species"`
	Berries          []NamedAmount   `json:"berries"`
	Ingredients      []NamedAmount   `json:"ingredients"`
	SkillBerries     []NamedAmount   `json:"skill_berries,omitempty"`
	SkillIngredients []NamedAmount   `json:"skill_ingredients,omitempty"`
	Spilled          []NamedAmount   `json:"spilled,omitempty"`
	Helps            float64         `json:"helps"`
	NightHelps       float64         `json:"night_helps"`
	ExtraHelps       float64         `json:"extra_helps"`
	SneakySnacking   float64         `json:"sneaky_snacking"`
	Skill            SkillResult     `json:"skill"`
	Strength         strength.Result `json:"strength"`

	Produce      produce.Produce `json:"-"`
	SkillProduce produce.Produce `json:"-"`
}

func (m MemberResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("species", m.Species),
		slog.Float64("strength", m.Strength.Total()),
		slog.Float64("procs", m.Skill.Procs),
	)
}

// Results are per-iteration expectations for the whole team.
type Results struct {
	Iterations        int               `json:"iterations"`
	MealType          gamedata.MealType `json:"meal_type"`
	Members           []MemberResult    `json:"members"`
	Cooking           cooking.Results   `json:"cooking"`
	CookingStrength   float64           `json:"cooking_strength"`
	StockpileStrength float64           `json:"stockpile_strength"`
	TeamStrength      Summary           `json:"team_strength"`
}

func (r Results) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("iterations", r.Iterations),
		slog.Int("members", len(r.Members)),
		slog.Float64("cooking", math.Round(r.CookingStrength)),
		slog.Any("team", r.TeamStrength),
	)
}

type SimpleMemberResult struct {
	ExternalID  string  `json:"external_id,omitempty" csv:"external_id"`
	Species     string  `json:"species" csv:"species"`
	Berries     float64 `json:"berries" csv:"berries"`
	Ingredients float64 `json:"ingredients" csv:"ingredients"`
	SkillProcs  float64 `json:"skill_procs" csv:"skill_procs"`
	Strength    float64 `json:"strength" csv:"strength"`
}

// SimpleResults is the compact form used when comparing many teams.
type SimpleResults struct {
	Members         []SimpleMemberResult `json:"members"`
	CookingStrength float64              `json:"cooking_strength"`
	TeamStrength    float64              `json:"team_strength"`
}

// IVResult isolates one member of the team for what-if comparisons.
type IVResult struct {
	Member          MemberResult `json:"member"`
	IngredientShare float64      `json:"ingredient_share"`
	StrengthShare   float64      `json:"strength_share"`
	TeamStrength    Summary      `json:"team_strength"`
}

// ErrUnknownMember is returned for an external id no member carries.
var ErrUnknownMember = errors.New("unknown member")

// ── Conversion ──────────────────────────────────────────────────────

func (s *Simulator) resultsFrom(t tally) Results {
	n := float64(max(t.iterations, 1))
	r := Results{
		Iterations:        t.iterations,
		MealType:          s.settings.MealType,
		Members:           make([]MemberResult, len(s.members)),
		Cooking:           t.cooking.Results(t.iterations),
		StockpileStrength: s.stockpileStrength,
		TeamStrength:      Summarize(t.samples),
	}
	r.CookingStrength = r.Cooking.Meal(s.settings.MealType).WeeklyStrength
	for i, m := range s.members {
		var mt memberTally
		if i < len(t.members) {
			mt = t.members[i]
		}
		r.Members[i] = s.memberResult(m, &mt, n)
	}
	return r
}

func (s *Simulator) memberResult(m *member, t *memberTally, n float64) MemberResult {
	p := t.produce.Scale(1 / n)
	sp := t.skillProduce.Scale(1 / n)
	r := MemberResult{
		ExternalID:       m.settings.ExternalID,
		Species:          m.settings.Species.Name,
		Berries:          s.namedBerries(p),
		Ingredients:      s.namedIngredients(p),
		SkillBerries:     s.namedBerries(sp),
		SkillIngredients: s.namedIngredients(sp),
		Spilled:          s.namedIngredients(t.spilled.Scale(1 / n)),
		Helps:            t.helps / n,
		NightHelps:       t.nightHelps / n,
		ExtraHelps:       t.extraHelps / n,
		SneakySnacking:   t.sneakySnacking / n,
		Skill: SkillResult{
			Skill:        m.skillID.String(),
			Procs:        t.skill.procs / n,
			Crits:        t.skill.crits / n,
			RegularValue: t.skill.regular / n,
			CritValue:    t.skill.crit / n,
			StrengthSelf: t.skill.strengthSelf / n,
			StrengthTeam: t.skill.strengthTeam / n,
			Shards:       t.skill.shards / n,
			EnergySelf:   t.skill.energySelf / n,
			EnergyTeam:   t.skill.energyTeam / n,
			HelpsGiven:   t.skill.helpsGiven / n,
			PotSize:      t.skill.potSize / n,
			CritBonus:    t.skill.critBonus / n,
		},
		Produce:      p,
		SkillProduce: sp,
	}
	r.Strength = s.memberStrength(p, sp, t.skill.strengthSelf/n, t.skill.strengthTeam/n)
	return r
}

func (s *Simulator) memberStrength(p, sp produce.Produce, self, team float64) strength.Result {
	return strength.Calculate(s.catalog, strength.Input{
		Settings:            strength.Settings{Favored: s.settings.Favored, AreaBonus: s.settings.AreaBonus},
		ProduceWithoutSkill: p,
		ProduceFromSkill:    sp,
		SkillValue:          strength.SkillValue{AmountToSelf: self, AmountToTeam: team},
	})
}

func (s *Simulator) namedBerries(p produce.Produce) []NamedAmount {
	out := make([]NamedAmount, 0, len(p.Berries))
	for _, b := range p.Berries {
		out = append(out, NamedAmount{Name: s.catalog.Berries[b.Berry].Name, Level: b.Level, Amount: b.Amount})
	}
	return out
}

func (s *Simulator) namedIngredients(p produce.Produce) []NamedAmount {
	out := make([]NamedAmount, 0, len(p.Ingredients))
	for _, ia := range p.Ingredients {
		out = append(out, NamedAmount{Name: s.catalog.Ingredients[ia.Ingredient].Name, Amount: ia.Amount})
	}
	return out
}

// Simple drops the per-item breakdowns.
func (r Results) Simple() SimpleResults {
	out := SimpleResults{
		Members:         make([]SimpleMemberResult, len(r.Members)),
		CookingStrength: r.CookingStrength,
		TeamStrength:    r.TeamStrength.Mean,
	}
	for i, m := range r.Members {
		out.Members[i] = SimpleMemberResult{
			ExternalID:  m.ExternalID,
			Species:     m.Species,
			Berries:     m.Produce.TotalBerries() + m.SkillProduce.TotalBerries(),
			Ingredients: m.Produce.TotalIngredients() + m.SkillProduce.TotalIngredients(),
			SkillProcs:  m.Skill.Procs,
			Strength:    m.Strength.Total(),
		}
	}
	return out
}

// Isolate picks out one member and its share of the team.
func (r Results) Isolate(externalID string) (IVResult, error) {
	idx := slices.IndexFunc(r.Members, func(m MemberResult) bool { return m.ExternalID == externalID })
	if externalID == "" || idx < 0 {
		return IVResult{}, fmt.Errorf("%w %q", ErrUnknownMember, externalID)
	}
	var ingredients, total float64
	for _, m := range r.Members {
		ingredients += m.Produce.TotalIngredients() + m.SkillProduce.TotalIngredients()
		total += m.Strength.Total()
	}
	m := r.Members[idx]
	iv := IVResult{Member: m, TeamStrength: r.TeamStrength}
	if ingredients > 0 {
		iv.IngredientShare = (m.Produce.TotalIngredients() + m.SkillProduce.TotalIngredients()) / ingredients
	}
	if total > 0 {
		iv.StrengthShare = m.Strength.Total() / total
	}
	return iv, nil
}
