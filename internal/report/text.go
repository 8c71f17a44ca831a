package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/simulation"
)

const separator = "===================\n"

// FormatResults produces the plain text summary printed by the CLI.
func FormatResults(res simulation.Results) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d iterations, preferred meal %s\n", res.Iterations, res.MealType)
	for i := range res.Members {
		b.WriteString(separator)
		formatMember(&b, &res.Members[i])
	}

	b.WriteString(separator)
	meal := res.Cooking.Meal(res.MealType)
	fmt.Fprintf(&b, "Cooking: %d / week (Sunday %d, crits %.2f)\n",
		round(meal.WeeklyStrength), round(meal.SundayStrength), meal.Crits)
	var recipes []string
	for _, rc := range meal.CookedRecipes {
		recipes = append(recipes, fmt.Sprintf("%s x%.2f", rc.Recipe, rc.Count))
	}
	if len(recipes) > 0 {
		fmt.Fprintf(&b, "Recipes: %s\n", strings.Join(recipes, "; "))
	}
	if res.StockpileStrength > 0 {
		fmt.Fprintf(&b, "Stockpile: %d\n", round(res.StockpileStrength))
	}

	ts := res.TeamStrength
	fmt.Fprintf(&b, "Team: %d (sd %d, p10 %d, p50 %d, p90 %d)\n",
		round(ts.Mean), round(ts.StdDev), round(ts.P10), round(ts.P50), round(ts.P90))
	return b.String()
}

func formatMember(b *strings.Builder, m *simulation.MemberResult) {
	name := m.Species
	if m.ExternalID != "" && m.ExternalID != m.Species {
		name = fmt.Sprintf("%s (%s)", m.Species, m.ExternalID)
	}
	fmt.Fprintf(b, "%s -> %d\n", name, round(m.Strength.Total()))
	fmt.Fprintf(b, "Helps: %.1f (night %.1f, extra %.1f, snacking %.1f)\n",
		m.Helps, m.NightHelps, m.ExtraHelps, m.SneakySnacking)
	fmt.Fprintf(b, "Skill: %s x%.2f (crits %.2f)\n", m.Skill.Skill, m.Skill.Procs, m.Skill.Crits)
	if s := joinAmounts(m.Berries); s != "" {
		fmt.Fprintf(b, "Berries: %s\n", s)
	}
	if s := joinAmounts(m.Ingredients); s != "" {
		fmt.Fprintf(b, "Ingredients: %s\n", s)
	}
	if s := joinAmounts(append(append([]simulation.NamedAmount(nil), m.SkillBerries...), m.SkillIngredients...)); s != "" {
		fmt.Fprintf(b, "From skill: %s\n", s)
	}
}

// FormatExpected renders a single member's deterministic estimate.
func FormatExpected(e simulation.ExpectedResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %d per day\n", e.Species, round(e.Strength.Total()))
	fmt.Fprintf(&b, "Starting energy: %.1f\n", e.StartingEnergy)
	fmt.Fprintf(&b, "Helps: %.2f (night %.2f, snacking %.2f)\n", e.Helps, e.NightHelps, e.SneakySnacking)
	fmt.Fprintf(&b, "Procs: %.3f day, %.3f night\n", e.DaytimeProcs, e.NightlyProcs)
	for i, sl := range e.Schedule {
		fmt.Fprintf(&b, "  #%d after %d helps (%.2f of a proc)\n", i+1, sl.HelpsRequired, sl.FractionOfProc)
	}
	return b.String()
}

func joinAmounts(items []simulation.NamedAmount) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Level > 0 {
			parts = append(parts, fmt.Sprintf("%s lv%d x%.1f", it.Name, it.Level, it.Amount))
		} else {
			parts = append(parts, fmt.Sprintf("%s x%.1f", it.Name, it.Amount))
		}
	}
	return strings.Join(parts, "; ")
}

func round(v float64) int { return int(math.Round(v)) }
