package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/cooking"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/logging"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/skill"
)

// Simulator runs one team through simulated weeks. It is not safe for
// concurrent use; Run gives every worker its own Simulator.
type Simulator struct {
	settings   TeamSettings
	rules      Rules
	catalog    *gamedata.Catalog
	registry   *skill.Registry
	rng        *rng.Source
	cooking    *cooking.State
	logger     *slog.Logger
	iterations int
	eventLog   bool

	members     []*member
	startEnergy []float64
	sleep       []energy.SleepInfo

	ticksPerDay int
	awakeTicks  int
	mealTicks   []int

	stockpileStrength float64

	done   tally
	events []Event

	// per iteration
	day    int
	tick   int
	queued []skill.Activation
	views  []skill.MemberView
}

// New validates the request and prepares a Simulator. Nothing is
// simulated until Simulate or Run is called.
func New(settings TeamSettings, members []MemberSettings, opts Options) (*Simulator, error) {
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	catalog := opts.Catalog
	if catalog == nil {
		c, err := gamedata.Default()
		if err != nil {
			return nil, fmt.Errorf("load game data: %w", err)
		}
		catalog = c
	}
	if err := validate(&settings, members, &rules, catalog); err != nil {
		return nil, err
	}
	if opts.Iterations < 1 {
		return nil, configErr("iterations", "must be at least 1, got %d", opts.Iterations)
	}

	s := &Simulator{
		settings:   settings,
		rules:      rules,
		catalog:    catalog,
		registry:   opts.Registry,
		rng:        opts.Rng,
		cooking:    opts.Cooking,
		logger:     logging.OrDiscard(opts.Logger),
		iterations: opts.Iterations,
		eventLog:   opts.EventLog,
	}
	if s.registry == nil {
		s.registry = skill.DefaultRegistry()
	}
	if s.rng == nil {
		s.rng = rng.New()
	}

	memberSettings := slices.Clone(members)
	bonus := helpingBonusCount(&s.rules, memberSettings)
	ids := make([]skill.ID, 0, len(members))
	for i := range memberSettings {
		m, err := s.newMember(i, &memberSettings[i], bonus)
		if err != nil {
			return nil, err
		}
		s.members = append(s.members, m)
		ids = append(ids, m.skillID)
	}
	if err := s.registry.Validate(ids...); err != nil {
		return nil, err
	}

	if s.cooking == nil {
		s.cooking = cooking.New(catalog, rules.Cooking, cooking.Settings{
			PotSize:   settings.PotSize,
			AreaBonus: settings.AreaBonus,
			Excluded:  settings.Excluded,
			Stockpile: settings.StockpiledIngredients,
		}, s.rng, s.logger)
	}

	s.layoutDay()
	s.startEnergy = s.startingEnergies()
	s.stockpileStrength = s.stockpiledBerryStrength()
	s.done.members = make([]memberTally, len(s.members))
	s.views = make([]skill.MemberView, len(s.members))

	s.logger.Debug("simulator ready",
		"members", len(s.members), "iterations", s.iterations,
		"awake_ticks", s.awakeTicks, "meals", s.mealTicks)
	return s, nil
}

func (s *Simulator) newMember(slot int, ms *MemberSettings, helpingBonus int) (*member, error) {
	sp := ms.Species
	id, err := skill.ParseID(sp.Skill)
	if err != nil {
		return nil, fmt.Errorf("member %d (%s): %w", slot, sp.Name, err)
	}
	main, err := s.catalog.Skill(id.Key())
	if err != nil {
		return nil, fmt.Errorf("member %d (%s): %w", slot, sp.Name, err)
	}
	if sp.Berry < 0 || sp.Berry >= len(s.catalog.Berries) {
		return nil, configErr(fmt.Sprintf("members[%d].species", slot), "berry index %d out of range", sp.Berry)
	}
	m := &member{
		slot:     slot,
		settings: ms,
		berry:    &s.catalog.Berries[sp.Berry],
		skillID:  id,
		skill:    main,
	}
	m.stats = deriveStats(&s.rules, &s.settings, ms, helpingBonus, main.MaxLevel())
	s.sleep = append(s.sleep, energy.SleepInfo{
		Period:             s.settings.Sleep,
		RecoveryBonusLevel: m.stats.recoveryBonus,
		Incense:            s.settings.Incense,
		NatureFactor:       m.stats.energyNature,
	})
	return m, nil
}

// layoutDay places bedtime and the three meals on the tick grid. A day
// starts at wakeup; breakfast is the first tick and later meals are kept
// before bedtime.
func (s *Simulator) layoutDay() {
	tick := s.rules.TickMinutes
	s.ticksPerDay = 1440 / tick
	awake := s.settings.Awake().Minutes()
	s.awakeTicks = max(1, min(awake/tick, s.ticksPerDay))

	wake := s.settings.Sleep.End
	offset := func(c energy.Clock) int {
		return energy.Period{Start: wake, End: c}.Minutes() / tick
	}
	s.mealTicks = []int{
		0,
		min(offset(s.rules.Lunch), s.awakeTicks-1),
		min(offset(s.rules.Dinner), s.awakeTicks-1),
	}
	slices.Sort(s.mealTicks)
}

func (s *Simulator) stockpiledBerryStrength() float64 {
	if len(s.settings.StockpiledBerries) == 0 {
		return 0
	}
	var p produce.Produce
	for _, b := range s.settings.StockpiledBerries {
		p.AddBerry(b.Berry, b.Level, b.Amount)
	}
	return s.memberStrength(p, produce.Produce{}, 0, 0).Total()
}

// Cooking exposes the team's pot, which may be shared with the caller.
func (s *Simulator) Cooking() *cooking.State { return s.cooking }

// Iterations is the configured iteration count.
func (s *Simulator) Iterations() int { return s.iterations }

// Events returns the event log recorded so far; empty unless
// Options.EventLog is set.
func (s *Simulator) Events() []Event { return s.events }

// ── Iteration ───────────────────────────────────────────────────────

// Simulate runs exactly one iteration: one week, Sunday last. A failed
// iteration is rolled back so the random cursor, the pot and the totals
// look as if it never ran.
func (s *Simulator) Simulate() error {
	start := s.rng.Index()
	checkpoint := s.cooking.Checkpoint()
	before := s.cooking.Accumulator()
	eventStart := len(s.events)

	if err := s.runWeek(); err != nil {
		s.rng.Seek(start)
		s.cooking.Restore(checkpoint)
		s.events = s.events[:eventStart]
		return fmt.Errorf("iteration %d: %w", s.done.iterations+1, err)
	}

	after := s.cooking.Accumulator()
	sample := after.Weekly[s.settings.MealType] - before.Weekly[s.settings.MealType] + s.stockpileStrength
	for i, m := range s.members {
		s.done.members[i].add(&m.tally)
		sample += s.memberStrength(m.tally.produce, m.tally.skillProduce, m.tally.skill.strengthSelf, m.tally.skill.strengthTeam).Total()
	}
	s.done.samples = append(s.done.samples, sample)
	s.done.iterations++
	s.logger.Debug("iteration done", "n", s.done.iterations, "strength", sample)
	return nil
}

// Run simulates every configured iteration and returns the results.
// The context is checked between iterations only.
func (s *Simulator) Run(ctx context.Context) (Results, error) {
	for s.done.iterations < s.iterations {
		if err := ctx.Err(); err != nil {
			return Results{}, err
		}
		if err := s.Simulate(); err != nil {
			return Results{}, err
		}
	}
	return s.Results(), nil
}

func (s *Simulator) runWeek() error {
	s.cooking.Reset(s.settings.StockpiledIngredients)
	for i, m := range s.members {
		m.reset(s.startEnergy[i])
	}
	s.queued = s.queued[:0]

	for day := range s.rules.Days {
		s.day, s.tick = day, 0
		if day > 0 && day%7 == 0 {
			s.cooking.StartNewWeek(s.settings.StockpiledIngredients)
		}
		sunday := day%7 == 6
		if err := s.wakeUp(day); err != nil {
			return err
		}
		meal := 0
		for t := range s.ticksPerDay {
			s.tick = t
			if t == s.awakeTicks {
				s.goToBed()
			}
			if err := s.step(t < s.awakeTicks); err != nil {
				return err
			}
			for meal < len(s.mealTicks) && s.mealTicks[meal] == t {
				s.cook(sunday)
				meal++
			}
		}
	}
	// the last night's inventory still counts toward the week
	for _, m := range s.members {
		m.wake()
	}
	return nil
}

func (s *Simulator) wakeUp(day int) error {
	for i, m := range s.members {
		if day > 0 {
			if m.energy < s.rules.SleepCap {
				m.energy = min(m.energy+s.sleep[i].Recovered(s.rules.SleepCap), s.rules.SleepCap)
			}
			m.skillState.StartDay(s.rules.ResetPityAtDayBoundary)
		}
		m.wake()
	}
	s.snapshot()
	for _, m := range s.members {
		for range m.skillState.Release() {
			if err := s.activate(m); err != nil {
				return err
			}
		}
	}
	return s.applyQueued()
}

func (s *Simulator) goToBed() {
	for _, m := range s.members {
		s.event(m, "bedtime", "", m.energy)
	}
}

// step advances every member by one tick. Energy drains asleep as well as
// awake. Skills read the snapshot taken before anyone acted; team effects
// land after everyone has acted.
func (s *Simulator) step(awake bool) error {
	s.snapshot()
	tick := s.rules.TickMinutes
	minute := s.tick * tick
	decays := (minute+tick)/energy.MinutesPerDecay - minute/energy.MinutesPerDecay
	for _, m := range s.members {
		for range decays {
			m.energy -= energy.DegradeOneUnit(m.energy)
		}
		factor := energy.Factor(m.energy)
		m.untilHelp -= float64(tick * 60)
		for m.untilHelp <= 0 {
			if err := s.help(m, awake); err != nil {
				return err
			}
			m.untilHelp += m.stats.frequency * factor
		}
	}
	return s.applyQueued()
}

func (s *Simulator) snapshot() {
	for i, m := range s.members {
		s.views[i] = m.view()
	}
}

func (s *Simulator) help(m *member, awake bool) error {
	p, err := m.rollHelp(s.rng)
	if err != nil {
		return err
	}
	if awake {
		m.tally.helps++
		m.collect(p)
	} else {
		m.tally.nightHelps++
		if m.inventory >= m.stats.carry {
			s.event(m, "sneaky snack", "", p.TotalIngredients())
		}
		m.stash(p)
	}
	if logging.TraceEnabled(s.logger) {
		logging.Trace(s.logger, "help", "member", m.slot, "day", s.day, "tick", s.tick, "awake", awake, "energy", m.energy)
	}
	for range m.skillState.Attempt(s.rng, !awake) {
		if err := s.activate(m); err != nil {
			return err
		}
	}
	return nil
}

// activate resolves one proc. Effects on the user apply now; anything
// touching teammates or the pot is queued for the end of the tick.
func (s *Simulator) activate(m *member) error {
	a, err := s.registry.Activate(&skill.Context{
		ID:       m.skillID,
		Skill:    m.skill,
		Level:    m.stats.skillLevel,
		Fraction: 1,
		Rng:      s.rng,
		Catalog:  s.catalog,
		Registry: s.registry,
		State:    m.skillState,
		Self:     m.slot,
		Team:     s.views,
	})
	if err != nil {
		return fmt.Errorf("member %d: %w", m.slot, err)
	}
	m.skillState.Record(a)
	m.tally.skill.record(m.slot, a)

	if !a.Produce.Empty() {
		m.tally.skillProduce.Add(a.Produce)
		for _, ia := range a.Produce.Ingredients {
			m.pending.AddIngredient(ia.Ingredient, ia.Amount)
		}
	}
	if a.SelfEnergy != 0 {
		m.addEnergy(a.SelfEnergy, s.rules.MaxEnergy)
	}
	if a.HasTeamEffect() || a.PotSize > 0 || a.CritBonus > 0 {
		s.queued = append(s.queued, a)
	}
	s.event(m, "skill", a.Skill.String(), a.AdjustedAmount)
	return nil
}

func (s *Simulator) applyQueued() error {
	for i := range s.queued {
		a := &s.queued[i]
		for slot, e := range a.TeamEnergy {
			if e != 0 {
				s.members[slot].addEnergy(e, s.rules.MaxEnergy)
			}
		}
		for slot, n := range a.ExtraHelps {
			if n > 0 {
				if err := s.extraHelps(s.members[slot], n); err != nil {
					return err
				}
			}
		}
		if a.PotSize > 0 {
			s.cooking.AddPotSize(a.PotSize)
		}
		if a.CritBonus > 0 {
			s.cooking.AddCritBonus(a.CritBonus)
		}
	}
	s.queued = s.queued[:0]
	return nil
}

// extraHelps go straight into produce and never roll the skill. A
// fractional help adds its expected produce.
func (s *Simulator) extraHelps(m *member, n float64) error {
	whole := int(n)
	for range whole {
		p, err := m.rollHelp(s.rng)
		if err != nil {
			return fmt.Errorf("member %d extra help: %w", m.slot, err)
		}
		m.collect(p)
	}
	if frac := n - float64(whole); frac > 0 {
		m.collect(m.stats.expectedHelp(m.berry.Index, m.settings.Level).Scale(frac))
	}
	m.tally.extraHelps += n
	s.event(m, "extra helps", "", n)
	return nil
}

func (s *Simulator) cook(sunday bool) {
	for _, m := range s.members {
		s.cooking.AddIngredients(m.takePending())
	}
	for _, c := range s.cooking.Cook(sunday) {
		if s.eventLog && c.Type == s.settings.MealType {
			s.events = append(s.events, Event{
				Iteration: s.done.iterations + 1,
				Day:       s.day + 1,
				Minute:    s.tick * s.rules.TickMinutes,
				Member:    -1,
				Kind:      "meal",
				Detail:    c.Recipe,
				Amount:    c.Strength,
			})
		}
	}
}

// ── Results ─────────────────────────────────────────────────────────

func (s *Simulator) tally() tally {
	t := tally{
		iterations: s.done.iterations,
		members:    make([]memberTally, len(s.done.members)),
		cooking:    s.cooking.Accumulator(),
		samples:    slices.Clone(s.done.samples),
	}
	for i := range s.done.members {
		t.members[i].add(&s.done.members[i])
	}
	return t
}

// Results returns per-iteration expectations over the finished iterations.
func (s *Simulator) Results() Results { return s.resultsFrom(s.tally()) }

func (s *Simulator) SimpleResults() SimpleResults { return s.Results().Simple() }

// IVResults isolates the member with the given external id.
func (s *Simulator) IVResults(externalID string) (IVResult, error) {
	return s.Results().Isolate(externalID)
}

// ── Event log ───────────────────────────────────────────────────────

// Event is one line of the optional event log. Member is -1 for team
// events.
type Event struct {
	Iteration int     `csv:"iteration" json:"iteration"`
	Day       int     `csv:"day" json:"day"`
	Minute    int     `csv:"minute" json:"minute"`
	Member    int     `csv:"member" json:"member"`
	Kind      string  `csv:"kind" json:"kind"`
	Detail    string  `csv:"detail" json:"detail"`
	Amount    float64 `csv:"amount" json:"amount"`
}

func (s *Simulator) event(m *member, kind, detail string, amount float64) {
	if !s.eventLog {
		return
	}
	s.events = append(s.events, Event{
		Iteration: s.done.iterations + 1,
		Day:       s.day + 1,
		Minute:    s.tick * s.rules.TickMinutes,
		Member:    m.slot,
		Kind:      kind,
		Detail:    detail,
		Amount:    amount,
	})
}
