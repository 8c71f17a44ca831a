package skill

import "github.com/nerolis-lab/nerolis-lab-sub003/internal/rng"

// State is one member's skill bookkeeping for one iteration.
type State struct {
	Chance    float64 // per-help proc chance
	PityHelps int     // forced proc after this many helps without one; 0 disables
	BankLimit int     // procs that can be held overnight

	HelpsSinceProc int
	Procs          int
	Crits          int
	Banked         int
	Value          Value

	// skill specific counters
	Stacks        int
	DailyCritUsed bool
}

func NewState(chance float64, pityHelps, bankLimit int) *State {
	return &State{Chance: chance, PityHelps: pityHelps, BankLimit: bankLimit}
}

// Attempt rolls the skill for one help and returns how many procs fire now.
// While sleeping, procs go to the bank instead and helps stop counting once
// the bank is full.
func (s *State) Attempt(r *rng.Source, sleeping bool) int {
	if sleeping && s.Banked >= s.BankLimit {
		return 0
	}
	s.HelpsSinceProc++
	forced := s.PityHelps > 0 && s.HelpsSinceProc >= s.PityHelps
	if !forced && r.Next() >= s.Chance {
		return 0
	}
	s.HelpsSinceProc = 0
	if sleeping {
		s.Banked++
		return 0
	}
	return 1
}

// Release hands out the banked night procs at wake-up.
func (s *State) Release() int {
	n := s.Banked
	s.Banked = 0
	return n
}

// Record adds a resolved activation to the totals.
func (s *State) Record(a Activation) {
	s.Procs++
	if a.Crit() {
		s.Crits++
	}
	s.Value.Regular += a.Self.Regular + a.Team.Regular
	s.Value.Crit += a.Self.Crit + a.Team.Crit
}

// StartDay clears the once-per-day counters. The pity counter is only reset
// when resetPity is set.
func (s *State) StartDay(resetPity bool) {
	s.DailyCritUsed = false
	if resetPity {
		s.HelpsSinceProc = 0
	}
}
