package skill

import (
	"errors"
	"sync"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"
)

var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(map[ID]Effect{
		ChargeStrengthS:            EffectFunc(chargeStrength),
		ChargeStrengthM:            EffectFunc(chargeStrength),
		ChargeStrengthSRange:       EffectFunc(chargeStrengthRange),
		ChargeStrengthSStockpile:   EffectFunc(stockpile),
		BadDreams:                  EffectFunc(badDreams),
		IngredientMagnetS:          EffectFunc(ingredientMagnet),
		IngredientMagnetSPlus:      EffectFunc(ingredientMagnetPlus),
		IngredientDrawS:            EffectFunc(ingredientDraw),
		CookingPowerUpS:            EffectFunc(cookingPowerUp),
		CookingPowerUpSMinus:       EffectFunc(cookingPowerUpMinus),
		TastyChanceS:               EffectFunc(tastyChance),
		ChargeEnergyS:              EffectFunc(chargeEnergy),
		Moonlight:                  EffectFunc(moonlight),
		EnergizingCheerS:           EffectFunc(energizingCheer),
		EnergyForEveryoneS:         EffectFunc(energyForEveryone),
		LunarBlessing:              EffectFunc(lunarBlessing),
		ExtraHelpfulS:              EffectFunc(extraHelpful),
		HelperBoost:                EffectFunc(helperBoost),
		DreamShardMagnetS:          EffectFunc(dreamShardMagnet),
		DreamShardMagnetSRange:     EffectFunc(dreamShardMagnetRange),
		Metronome:                  EffectFunc(metronome),
		SkillCopy:                  EffectFunc(skillCopy),
		BerryBurst:                 EffectFunc(berryBurst),
		BerryBurstDisguise:         EffectFunc(berryBurstDisguise),
		IngredientDrawSSuperLuck:   EffectFunc(superLuck),
		IngredientDrawSHyperCutter: EffectFunc(hyperCutter),
		IngredientMagnetSPresent:   EffectFunc(present),
		EnergizingCheerSNuzzle:     EffectFunc(nuzzle),
		CookingAssistSBulkUp:       EffectFunc(bulkUp),
		SkillCopyMimic:             EffectFunc(mimic),
		SkillCopyTransform:         EffectFunc(transform),
	})
})

// DefaultRegistry has an effect for every skill identity.
func DefaultRegistry() *Registry { return defaultRegistry() }

// ── Strength ──

func chargeStrength(c *Context) (Activation, error) {
	amt := c.amount()
	return Activation{AdjustedAmount: amt, Strength: amt, Self: Value{Regular: amt}}, nil
}

// spreadFactor is uniform in [1-spread, 1+spread].
func spreadFactor(c *Context) float64 {
	s := c.Skill.Spread
	return 1 - s + 2*s*c.Rng.Next()
}

func chargeStrengthRange(c *Context) (Activation, error) {
	amt := c.amount() * spreadFactor(c)
	return Activation{AdjustedAmount: amt, Strength: amt, Self: Value{Regular: amt}}, nil
}

// stockpile adds a stack per proc and releases them all on a lucky roll or
// once the stack is full.
func stockpile(c *Context) (Activation, error) {
	limit := max(c.Skill.MaxStacks, 1)
	st := c.State
	st.Stacks = min(st.Stacks+1, limit)
	if st.Stacks < limit && !c.roll(c.Skill.ReleaseChance) {
		return Activation{}, nil
	}
	amt := c.amount() * float64(st.Stacks)
	st.Stacks = 0
	return Activation{AdjustedAmount: amt, Strength: amt, Self: Value{Regular: amt}}, nil
}

func badDreams(c *Context) (Activation, error) {
	amt := c.amount()
	a := Activation{AdjustedAmount: amt, Strength: amt, Self: Value{Regular: amt}}
	if mates := c.teammates(); len(mates) > 0 {
		drain := c.teamAmount()
		a.TeamEnergy = c.teamSlice()
		for _, slot := range mates {
			a.TeamEnergy[slot] = drain
		}
	}
	return a, nil
}

// ── Ingredients ──

func ingredientMagnet(c *Context) (Activation, error) {
	amt := c.amount()
	a := Activation{AdjustedAmount: amt, Self: Value{Regular: amt}}
	n := len(c.Catalog.Ingredients)
	if n == 0 {
		return a, nil
	}
	each := amt / float64(n)
	for i := range c.Catalog.Ingredients {
		a.Produce.AddIngredient(i, each)
	}
	return a, nil
}

// ingredientMagnetPlus adds a batch of the user's own first ingredient when
// a teammate shares its berry type.
func ingredientMagnetPlus(c *Context) (Activation, error) {
	a, err := ingredientMagnet(c)
	if err != nil {
		return a, err
	}
	user := c.user()
	if len(user.Ingredients) == 0 {
		return a, nil
	}
	for _, slot := range c.teammates() {
		if c.Team[slot].BerryType == user.BerryType {
			bonus := c.teamAmount()
			a.Produce.AddIngredient(user.Ingredients[0].Ingredient, bonus)
			a.AdjustedAmount += bonus
			a.Self.Regular += bonus
			break
		}
	}
	return a, nil
}

func ingredientDraw(c *Context) (Activation, error) {
	ing, err := rng.Pick(c.Rng, c.Catalog.Ingredients)
	if err != nil {
		return Activation{}, err
	}
	amt := c.amount()
	a := Activation{Self: Value{Regular: amt}}
	if c.roll(c.Skill.CritChance) {
		a.Self.Crit = amt * (c.Skill.CritMultiplier - 1)
	}
	a.AdjustedAmount = a.Self.Total()
	a.Produce.AddIngredient(ing.Index, a.AdjustedAmount)
	return a, nil
}

// superLuck sometimes turns the draw into dream shards.
func superLuck(c *Context) (Activation, error) {
	if c.roll(c.Skill.CritChance) {
		shards := c.teamAmount()
		return Activation{AdjustedAmount: shards, Shards: shards}, nil
	}
	ing, err := rng.Pick(c.Rng, c.Catalog.Ingredients)
	if err != nil {
		return Activation{}, err
	}
	amt := c.amount()
	a := Activation{AdjustedAmount: amt, Self: Value{Regular: amt}}
	a.Produce.AddIngredient(ing.Index, amt)
	return a, nil
}

// hyperCutter draws from the user's own ingredients instead of the catalog.
func hyperCutter(c *Context) (Activation, error) {
	own := c.user().Ingredients
	if len(own) == 0 {
		return ingredientDraw(c)
	}
	ia, err := rng.Pick(c.Rng, own)
	if err != nil {
		return Activation{}, err
	}
	amt := c.amount()
	a := Activation{Self: Value{Regular: amt}}
	if c.roll(c.Skill.CritChance) {
		a.Self.Crit = amt * (c.Skill.CritMultiplier - 1)
	}
	a.AdjustedAmount = a.Self.Total()
	a.Produce.AddIngredient(ia.Ingredient, a.AdjustedAmount)
	return a, nil
}

// present is a magnet whose whole haul can crit.
func present(c *Context) (Activation, error) {
	a, err := ingredientMagnet(c)
	if err != nil || !c.roll(c.Skill.CritChance) {
		return a, err
	}
	extra := c.Skill.CritMultiplier - 1
	a.Self.Crit = a.Self.Regular * extra
	a.AdjustedAmount = a.Self.Total()
	a.Produce.Add(a.Produce.Scale(extra))
	return a, nil
}

// ── Cooking ──

func cookingPowerUp(c *Context) (Activation, error) {
	amt := c.amount()
	return Activation{AdjustedAmount: amt, PotSize: amt, Team: Value{Regular: amt}}, nil
}

func cookingPowerUpMinus(c *Context) (Activation, error) {
	a, _ := cookingPowerUp(c)
	target := c.Self
	if mates := c.teammates(); len(mates) > 0 {
		slot, err := rng.Pick(c.Rng, mates)
		if err != nil {
			return Activation{}, err
		}
		target = slot
	}
	a.TeamEnergy = c.teamSlice()
	a.TeamEnergy[target] = c.teamAmount()
	return a, nil
}

func tastyChance(c *Context) (Activation, error) {
	amt := c.amount()
	return Activation{AdjustedAmount: amt, CritBonus: amt / 100, Team: Value{Regular: amt}}, nil
}

// bulkUp raises the crit chance and adds a batch of one random ingredient.
func bulkUp(c *Context) (Activation, error) {
	a, _ := tastyChance(c)
	ing, err := rng.Pick(c.Rng, c.Catalog.Ingredients)
	if err != nil {
		return Activation{}, err
	}
	n := c.teamAmount()
	a.Produce.AddIngredient(ing.Index, n)
	a.Self.Regular = n
	return a, nil
}

// ── Energy ──

func chargeEnergy(c *Context) (Activation, error) {
	amt := c.amount()
	return Activation{AdjustedAmount: amt, SelfEnergy: amt, Self: Value{Regular: amt}}, nil
}

// moonlight also tops up a random teammate on a crit.
func moonlight(c *Context) (Activation, error) {
	a, _ := chargeEnergy(c)
	mates := c.teammates()
	if len(mates) == 0 || !c.roll(c.Skill.CritChance) {
		return a, nil
	}
	slot, err := rng.Pick(c.Rng, mates)
	if err != nil {
		return Activation{}, err
	}
	a.TeamEnergy = c.teamSlice()
	a.TeamEnergy[slot] = a.AdjustedAmount
	a.Team.Crit = a.AdjustedAmount
	return a, nil
}

func energizingCheer(c *Context) (Activation, error) {
	amt := c.amount()
	slot, err := rng.Pick(c.Rng, c.Team)
	if err != nil {
		return Activation{}, err
	}
	a := Activation{AdjustedAmount: amt, TeamEnergy: c.teamSlice()}
	a.TeamEnergy[slot.Slot] = amt
	if slot.Slot == c.Self {
		a.Self.Regular = amt
	} else {
		a.Team.Regular = amt
	}
	return a, nil
}

// nuzzle is a cheer that can crit.
func nuzzle(c *Context) (Activation, error) {
	a, err := energizingCheer(c)
	if err != nil || !c.roll(c.Skill.CritChance) {
		return a, err
	}
	extra := a.AdjustedAmount * (c.Skill.CritMultiplier - 1)
	for slot, e := range a.TeamEnergy {
		if e == 0 {
			continue
		}
		a.TeamEnergy[slot] += extra
		if slot == c.Self {
			a.Self.Crit = extra
		} else {
			a.Team.Crit = extra
		}
	}
	a.AdjustedAmount += extra
	return a, nil
}

func energyForEveryone(c *Context) (Activation, error) {
	amt := c.amount()
	a := Activation{AdjustedAmount: amt, TeamEnergy: c.teamSlice()}
	for i := range a.TeamEnergy {
		a.TeamEnergy[i] = amt
	}
	a.Self.Regular = amt
	a.Team.Regular = amt * float64(len(c.Team)-1)
	return a, nil
}

func lunarBlessing(c *Context) (Activation, error) {
	a, _ := energyForEveryone(c)
	a.Strength = c.teamAmount()
	return a, nil
}

// ── Helps ──

func extraHelpful(c *Context) (Activation, error) {
	amt := c.amount()
	slot, err := rng.Pick(c.Rng, c.Team)
	if err != nil {
		return Activation{}, err
	}
	a := Activation{AdjustedAmount: amt, ExtraHelps: c.teamSlice()}
	a.ExtraHelps[slot.Slot] = amt
	if slot.Slot == c.Self {
		a.Self.Regular = amt
	} else {
		a.Team.Regular = amt
	}
	return a, nil
}

// helperBoost grows with the number of members sharing the user's berry type.
func helperBoost(c *Context) (Activation, error) {
	same := 0
	for _, m := range c.Team {
		if m.BerryType == c.user().BerryType {
			same++
		}
	}
	amt := c.amount() + c.Skill.TeamAmount(same)*c.Fraction
	a := Activation{AdjustedAmount: amt, ExtraHelps: c.teamSlice()}
	for i := range a.ExtraHelps {
		a.ExtraHelps[i] = amt
	}
	a.Self.Regular = amt
	a.Team.Regular = amt * float64(len(c.Team)-1)
	return a, nil
}

// ── Dream shards ──

func dreamShardMagnet(c *Context) (Activation, error) {
	amt := c.amount()
	return Activation{AdjustedAmount: amt, Shards: amt, Self: Value{Regular: amt}}, nil
}

func dreamShardMagnetRange(c *Context) (Activation, error) {
	amt := c.amount() * spreadFactor(c)
	return Activation{AdjustedAmount: amt, Shards: amt, Self: Value{Regular: amt}}, nil
}

// ── Borrowed skills ──

func delegate(c *Context, id ID) (Activation, error) {
	if c.Registry == nil {
		return Activation{}, errors.New("no registry to borrow a skill from")
	}
	sub := *c
	sub.ID = id
	sub.Skill = nil
	a, err := c.Registry.Activate(&sub)
	if err != nil {
		return Activation{}, err
	}
	a.Via = c.ID
	return a, nil
}

func copies(id ID) bool {
	return id == Metronome || id == SkillCopy || id == SkillCopyMimic || id == SkillCopyTransform
}

func borrowable(id ID) bool { return id != None && !copies(id) }

func metronome(c *Context) (Activation, error) {
	var pool []ID
	for _, id := range IDs() {
		if borrowable(id) && c.Registry != nil && c.Registry.effects[id] != nil {
			pool = append(pool, id)
		}
	}
	id, err := rng.Pick(c.Rng, pool)
	if err != nil {
		return Activation{}, err
	}
	return delegate(c, id)
}

// copyPool lists the teammates' skills that can be borrowed.
func copyPool(c *Context) []ID {
	var pool []ID
	for _, slot := range c.teammates() {
		if id := c.Team[slot].Skill; borrowable(id) {
			pool = append(pool, id)
		}
	}
	return pool
}

// skillCopy borrows a random teammate's skill, or Charge Strength S alone.
func skillCopy(c *Context) (Activation, error) {
	pool := copyPool(c)
	if len(pool) == 0 {
		return delegate(c, ChargeStrengthS)
	}
	id, err := rng.Pick(c.Rng, pool)
	if err != nil {
		return Activation{}, err
	}
	return delegate(c, id)
}

// mimic borrows like Skill Copy but falls back to Metronome alone.
func mimic(c *Context) (Activation, error) {
	pool := copyPool(c)
	if len(pool) == 0 {
		return metronome(c)
	}
	id, err := rng.Pick(c.Rng, pool)
	if err != nil {
		return Activation{}, err
	}
	return delegate(c, id)
}

// transform takes the skill of the nearest earlier slot that has a
// borrowable one, wrapping around the team.
func transform(c *Context) (Activation, error) {
	n := len(c.Team)
	for step := 1; step < n; step++ {
		m := c.Team[(c.Self-step+n)%n]
		if borrowable(m.Skill) {
			return delegate(c, m.Skill)
		}
	}
	return delegate(c, ChargeStrengthS)
}

// ── Berries ──

func berryBurstBase(c *Context, crit bool) Activation {
	user := c.user()
	amt := c.amount()
	a := Activation{Self: Value{Regular: amt}}
	if crit {
		a.Self.Crit = amt * (c.Skill.CritMultiplier - 1)
	}
	a.Produce.AddBerry(user.Berry, user.Level, a.Self.Total())
	per := c.teamAmount()
	for _, slot := range c.teammates() {
		a.Produce.AddBerry(c.Team[slot].Berry, user.Level, per)
		a.Team.Regular += per
	}
	a.AdjustedAmount = a.Self.Total() + a.Team.Total()
	return a
}

func berryBurst(c *Context) (Activation, error) {
	return berryBurstBase(c, false), nil
}

// berryBurstDisguise can crit at most once per day.
func berryBurstDisguise(c *Context) (Activation, error) {
	crit := false
	if !c.State.DailyCritUsed && c.roll(c.Skill.CritChance) {
		crit = true
		c.State.DailyCritUsed = true
	}
	return berryBurstBase(c, crit), nil
}
