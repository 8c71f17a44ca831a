// Package energy models a helper's energy: how much a night of sleep restores,
// how much carries over to the next morning, how fast it drains, and how it
// scales help speed.
package energy

import (
	"fmt"
	"math"
)

const (
	// RecoveryPerMinute restores a full 100 over an 8.5 hour sleep.
	RecoveryPerMinute = 100.0 / 510.0
	// RecoveryBonusPerLevel is the gain per Energy Recovery Bonus on the team.
	RecoveryBonusPerLevel = 0.14
	// DecayFractionPerHour is the share of the cap lost every hour.
	DecayFractionPerHour = 0.06
	// HoursPerDay is the decay window used for carry-over.
	HoursPerDay = 24
	// MinutesPerDecay is how often one unit of energy is lost.
	MinutesPerDecay = 10
	// SleepCap bounds what sleep alone can restore.
	SleepCap = 100.0
	// MaxEnergy bounds energy from any source.
	MaxEnergy = 150.0
)

// Clock is a time of day.
type Clock struct {
	Hour   int `json:"hour" yaml:"hour"`
	Minute int `json:"minute" yaml:"minute"`
}

// ParseClock reads "HH:MM".
func ParseClock(s string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return Clock{}, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("clock %q out of range", s)
	}
	return c, nil
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// Period is an interval of the day that may wrap past midnight.
type Period struct {
	Start Clock
	End   Clock
}

// Minutes returns the length of p. Equal start and end is an empty period.
func (p Period) Minutes() int {
	return ((p.End.Minutes()-p.Start.Minutes())%1440 + 1440) % 1440
}

// SleepInfo is one night's sleep and the modifiers in effect for it.
type SleepInfo struct {
	Period             Period // bedtime -> wakeup
	RecoveryBonusLevel int
	Incense            bool
	NatureFactor       float64
}

// Recovered applies RecoverFromSleep to s.
func (s SleepInfo) Recovered(cap float64) float64 {
	return RecoverFromSleep(s.Period, s.RecoveryBonusLevel, s.Incense, s.NatureFactor, cap)
}

// RecoverFromSleep returns the energy restored by sleeping through period.
func RecoverFromSleep(period Period, recoveryBonusLevel int, incenseActive bool, natureEnergyFactor, cap float64) float64 {
	if natureEnergyFactor == 0 {
		natureEnergyFactor = 1
	}
	bonus := 1 + float64(recoveryBonusLevel)*RecoveryBonusPerLevel
	incense := 1.0
	if incenseActive {
		incense = 2
	}
	recovered := float64(period.Minutes()) * RecoveryPerMinute * natureEnergyFactor * bonus * incense
	return math.Min(recovered, cap)
}

// StartingEnergyResult is the morning energy after a night's sleep.
type StartingEnergyResult struct {
	StartingEnergy        float64
	LeftoverFromYesterday float64
	AmountRecovered       float64
}

// StartingEnergy estimates the energy a helper wakes up with in steady state,
// given what sleep restores and what the day adds on top.
func StartingEnergy(dayRecovery float64, daytimeRecoveryEvents, skillEnergyActivations []float64, cap float64) StartingEnergyResult {
	gains := 0.0
	for _, e := range daytimeRecoveryEvents {
		gains += e
	}
	for _, e := range skillEnergyActivations {
		gains += e
	}

	recovered := clamp(dayRecovery, 0, cap)
	decay := DecayFractionPerHour * cap * HoursPerDay
	leftover := clamp(recovered+gains-decay, 0, cap)
	if leftover > 0 {
		// sleep only tops up to cap
		recovered = clamp(dayRecovery, 0, cap-leftover)
	}

	return StartingEnergyResult{
		StartingEnergy:        clamp(leftover+recovered, 0, cap),
		LeftoverFromYesterday: leftover,
		AmountRecovered:       recovered,
	}
}

// DegradeOneUnit returns how much one decay tick removes from current.
func DegradeOneUnit(current float64) float64 {
	return clamp(current, 0, 1)
}

// Factor scales the time between helps; lower is faster.
func Factor(energy float64) float64 {
	switch {
	case energy >= 80:
		return 0.45
	case energy >= 60:
		return 0.52
	case energy >= 40:
		return 0.58
	case energy >= 1:
		return 0.66
	default:
		return 1
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
