package energy

import (
	"math"
	"testing"
)

func period(t *testing.T, start, end string) Period {
	t.Helper()
	s, err := ParseClock(start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := ParseClock(end)
	if err != nil {
		t.Fatal(err)
	}
	return Period{Start: s, End: e}
}

func TestPeriodMinutesWrapsMidnight(t *testing.T) {
	if got := period(t, "21:30", "06:00").Minutes(); got != 510 {
		t.Errorf("sleep minutes = %d, want 510", got)
	}
	if got := period(t, "06:00", "21:30").Minutes(); got != 930 {
		t.Errorf("day minutes = %d, want 930", got)
	}
	if got := period(t, "06:00", "06:00").Minutes(); got != 0 {
		t.Errorf("empty period = %d, want 0", got)
	}
}

func TestRecoverFromSleep(t *testing.T) {
	full := period(t, "21:30", "06:00")
	short := period(t, "00:00", "04:15")

	tests := []struct {
		name    string
		p       Period
		bonus   int
		incense bool
		nature  float64
		cap     float64
		want    float64
	}{
		{"full night", full, 0, false, 1, 100, 100},
		{"half night", short, 0, false, 1, 100, 50},
		{"half night with bonus", short, 1, false, 1, 100, 57},
		{"half night incense", short, 0, true, 1, 100, 100},
		{"nature down", short, 0, false, 0.88, 100, 44},
		{"capped", full, 2, false, 1.2, 100, 100},
		{"zero nature treated as neutral", short, 0, false, 0, 100, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecoverFromSleep(tt.p, tt.bonus, tt.incense, tt.nature, tt.cap)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RecoverFromSleep = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartingEnergyNoCarryOver(t *testing.T) {
	got := StartingEnergy(80, nil, nil, 100)
	if got.LeftoverFromYesterday != 0 {
		t.Errorf("leftover = %v, want 0", got.LeftoverFromYesterday)
	}
	if got.StartingEnergy != 80 || got.AmountRecovered != 80 {
		t.Errorf("got %+v, want start 80 recovered 80", got)
	}
}

func TestStartingEnergyCapsRecoveryWhenCarryingOver(t *testing.T) {
	// 100 + 90 gained - 144 decayed leaves 46; sleep may only top up 54.
	got := StartingEnergy(100, []float64{50}, []float64{40}, 100)
	if math.Abs(got.LeftoverFromYesterday-46) > 1e-9 {
		t.Errorf("leftover = %v, want 46", got.LeftoverFromYesterday)
	}
	if math.Abs(got.AmountRecovered-54) > 1e-9 {
		t.Errorf("recovered = %v, want 54", got.AmountRecovered)
	}
	if got.StartingEnergy != 100 {
		t.Errorf("start = %v, want 100", got.StartingEnergy)
	}
}

func TestStartingEnergyBounds(t *testing.T) {
	for _, rec := range []float64{-20, 0, 37, 100, 400} {
		for _, gain := range []float64{0, 30, 150, 1000} {
			got := StartingEnergy(rec, []float64{gain}, []float64{gain / 2}, 100)
			if got.StartingEnergy < 0 || got.StartingEnergy > 100 {
				t.Errorf("rec=%v gain=%v: start %v out of [0,100]", rec, gain, got.StartingEnergy)
			}
			if got.LeftoverFromYesterday < 0 || got.LeftoverFromYesterday > 100 {
				t.Errorf("rec=%v gain=%v: leftover %v out of [0,100]", rec, gain, got.LeftoverFromYesterday)
			}
		}
	}
}

func TestDegradeOneUnit(t *testing.T) {
	for _, e := range []float64{-3, 0, 0.25, 1, 42} {
		got := DegradeOneUnit(e)
		if got > math.Min(1, math.Max(e, 0)) || got < 0 {
			t.Errorf("DegradeOneUnit(%v) = %v", e, got)
		}
	}
}

func TestFactorSteps(t *testing.T) {
	tests := []struct {
		energy float64
		want   float64
	}{
		{150, 0.45}, {80, 0.45}, {79.9, 0.52}, {60, 0.52}, {40, 0.58},
		{39, 0.66}, {1, 0.66}, {0.5, 1}, {0, 1},
	}
	for _, tt := range tests {
		if got := Factor(tt.energy); got != tt.want {
			t.Errorf("Factor(%v) = %v, want %v", tt.energy, got, tt.want)
		}
	}
}

func TestParseClockRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "25:00", "10:61", "noon"} {
		if _, err := ParseClock(s); err == nil {
			t.Errorf("ParseClock(%q) accepted", s)
		}
	}
}
