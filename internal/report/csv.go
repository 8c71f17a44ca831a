// Package report renders simulation results as text and CSV.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/cooking"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/simulation"
)

// MemberRow is one member's weekly totals.
type MemberRow struct {
	ExternalID     string  `csv:"external_id"`
	Species        string  `csv:"species"`
	Helps          float64 `csv:"helps"`
	NightHelps     float64 `csv:"night_helps"`
	ExtraHelps     float64 `csv:"extra_helps"`
	SneakySnacking float64 `csv:"sneaky_snacking"`
	Skill          string  `csv:"skill"`
	SkillProcs     float64 `csv:"skill_procs"`
	SkillCrits     float64 `csv:"skill_crits"`
	BerryStrength  float64 `csv:"berry_strength"`
	SkillStrength  float64 `csv:"skill_strength"`
	Strength       float64 `csv:"strength"`
}

// ProduceRow is one item a member produced. Source is help, skill or
// spilled.
type ProduceRow struct {
	ExternalID string  `csv:"external_id"`
	Source     string  `csv:"source"`
	Kind       string  `csv:"kind"`
	Name       string  `csv:"name"`
	Level      int     `csv:"level"`
	Amount     float64 `csv:"amount"`
}

type RecipeRow struct {
	MealType string  `csv:"meal_type"`
	Recipe   string  `csv:"recipe"`
	Count    float64 `csv:"count"`
	Crits    float64 `csv:"crits"`
	Strength float64 `csv:"strength"`
}

func MemberRows(res simulation.Results) []MemberRow {
	rows := make([]MemberRow, len(res.Members))
	for i, m := range res.Members {
		rows[i] = MemberRow{
			ExternalID:     m.ExternalID,
			Species:        m.Species,
			Helps:          m.Helps,
			NightHelps:     m.NightHelps,
			ExtraHelps:     m.ExtraHelps,
			SneakySnacking: m.SneakySnacking,
			Skill:          m.Skill.Skill,
			SkillProcs:     m.Skill.Procs,
			SkillCrits:     m.Skill.Crits,
			BerryStrength:  m.Strength.Berries.Total,
			SkillStrength:  m.Strength.Skill.Total,
			Strength:       m.Strength.Total(),
		}
	}
	return rows
}

func ProduceRows(res simulation.Results) []ProduceRow {
	var rows []ProduceRow
	add := func(id, source, kind string, items []simulation.NamedAmount) {
		for _, it := range items {
			rows = append(rows, ProduceRow{ExternalID: id, Source: source, Kind: kind, Name: it.Name, Level: it.Level, Amount: it.Amount})
		}
	}
	for _, m := range res.Members {
		add(m.ExternalID, "help", "berry", m.Berries)
		add(m.ExternalID, "help", "ingredient", m.Ingredients)
		add(m.ExternalID, "skill", "berry", m.SkillBerries)
		add(m.ExternalID, "skill", "ingredient", m.SkillIngredients)
		add(m.ExternalID, "spilled", "ingredient", m.Spilled)
	}
	return rows
}

func RecipeRows(res simulation.Results) []RecipeRow {
	var rows []RecipeRow
	for _, meal := range []cooking.MealResult{res.Cooking.Curry, res.Cooking.Salad, res.Cooking.Dessert} {
		for _, rc := range meal.CookedRecipes {
			rows = append(rows, RecipeRow{
				MealType: meal.Type.String(),
				Recipe:   rc.Recipe,
				Count:    rc.Count,
				Crits:    rc.Crits,
				Strength: rc.Strength,
			})
		}
	}
	return rows
}

// WriteCSV writes rows with a header line. An empty slice writes only the
// header.
func WriteCSV[T any](w io.Writer, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteDir writes members.csv, produce.csv, recipes.csv and, when events
// is non-empty, events.csv into dir.
func WriteDir(dir string, res simulation.Results, events []simulation.Event) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	type output struct {
		name  string
		write func(io.Writer) error
	}
	files := []output{
		{"members.csv", func(w io.Writer) error { return WriteCSV(w, MemberRows(res)) }},
		{"produce.csv", func(w io.Writer) error { return WriteCSV(w, ProduceRows(res)) }},
		{"recipes.csv", func(w io.Writer) error { return WriteCSV(w, RecipeRows(res)) }},
	}
	if len(events) > 0 {
		files = append(files, output{"events.csv", func(w io.Writer) error { return WriteCSV(w, events) }})
	}

	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
