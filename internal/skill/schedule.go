package skill

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Slot is one planned activation: it fires once HelpsRequired helps have
// happened and is worth FractionOfProc of a full proc.
type Slot struct {
	HelpsRequired  int
	FractionOfProc float64
}

// Schedule spreads a day's expected procs over its expected helps. The
// first slot is the banked night proc at zero helps; full procs follow at
// even spacing and a trailing slot carries any fractional proc.
func Schedule(nightlyPartialProcChance, expectedDaytimeProcs, expectedDaytimeHelps float64) []Slot {
	slots := make([]Slot, 0, int(max(expectedDaytimeProcs, 0))+2)
	slots = append(slots, Slot{HelpsRequired: 0, FractionOfProc: nightlyPartialProcChance})
	if expectedDaytimeProcs <= 0 {
		return slots
	}
	helps := max(expectedDaytimeHelps, 0)
	interval := helps / expectedDaytimeProcs
	full := int(expectedDaytimeProcs)

	// running keeps the unfloored position so spacing error never accumulates
	var running float64
	for range full {
		running += interval
		slots = append(slots, Slot{HelpsRequired: int(running), FractionOfProc: 1})
	}
	if rest := expectedDaytimeProcs - float64(full); rest > 0 {
		slots = append(slots, Slot{HelpsRequired: int(math.Floor(helps)), FractionOfProc: rest})
	}
	return slots
}

// NightlyProcChance is the expected number of procs banked over a night of
// helps. Everyone can bank one; skill specialists can bank a second.
func NightlyProcChance(helps int, chance float64, specialist bool) float64 {
	if helps <= 0 || chance <= 0 {
		return 0
	}
	night := distuv.Binomial{N: float64(helps), P: min(chance, 1)}
	atLeastOne := night.Survival(0)
	if !specialist {
		return atLeastOne
	}
	return atLeastOne + night.Survival(1)
}

// PityHelps converts the pity window into a help count for a member whose
// base help interval is frequency seconds.
func PityHelps(pitySeconds, frequency float64) int {
	if frequency <= 0 {
		return 0
	}
	return int(math.Floor(pitySeconds / frequency))
}
