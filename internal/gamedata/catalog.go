package gamedata

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Catalog holds the static game tables for one data version.
type Catalog struct {
	Version     string
	Berries     []Berry
	Ingredients []Ingredient
	Recipes     []Recipe
	Skills      []MainSkill
	Natures     []Nature
	Subskills   []Subskill
	Species     []Species

	berryByName      map[string]int
	ingredientByName map[string]int
	recipeByName     map[string]int
	skillByKey       map[string]int
	natureByName     map[string]int
	subskillByName   map[string]int
	speciesByName    map[string]int

	byMeal [len(MealTypes)][]*Recipe // non-mixed recipes, best value first
	mixed  [len(MealTypes)]int
}

// UnknownNameError reports a lookup miss, with the closest known name when
// one is near enough to be a likely typo.
type UnknownNameError struct {
	Kind       string
	Name       string
	Suggestion string
}

func (e *UnknownNameError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown %s %q (did you mean %q?)", e.Kind, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

func normalize(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(name)
}

func buildIndex[T any](items []T, key func(*T) string) map[string]int {
	m := make(map[string]int, len(items))
	for i := range items {
		m[key(&items[i])] = i
	}
	return m
}

func (c *Catalog) buildIndexes() {
	c.berryByName = buildIndex(c.Berries, func(b *Berry) string { return b.Name })
	c.ingredientByName = buildIndex(c.Ingredients, func(i *Ingredient) string { return i.Name })
	c.recipeByName = buildIndex(c.Recipes, func(r *Recipe) string { return r.Name })
	c.skillByKey = buildIndex(c.Skills, func(s *MainSkill) string { return s.Key })
	c.natureByName = buildIndex(c.Natures, func(n *Nature) string { return n.Name })
	c.subskillByName = buildIndex(c.Subskills, func(s *Subskill) string { return s.Name })
	c.speciesByName = buildIndex(c.Species, func(s *Species) string { return s.Name })
}

func (c *Catalog) indexRecipes() error {
	for _, mt := range MealTypes {
		c.byMeal[mt] = c.byMeal[mt][:0]
		c.mixed[mt] = -1
	}
	for i := range c.Recipes {
		r := &c.Recipes[i]
		if r.Mixed {
			if c.mixed[r.Type] >= 0 {
				return fmt.Errorf("meal type %s has more than one mixed recipe", r.Type)
			}
			c.mixed[r.Type] = i
			continue
		}
		c.byMeal[r.Type] = append(c.byMeal[r.Type], r)
	}
	for _, mt := range MealTypes {
		if c.mixed[mt] < 0 {
			return fmt.Errorf("meal type %s has no mixed recipe", mt)
		}
		slices.SortStableFunc(c.byMeal[mt], func(a, b *Recipe) int {
			return cmp.Compare(b.Value, a.Value)
		})
	}
	return nil
}

func lookup[T any](items []T, index map[string]int, kind, name string) (*T, error) {
	key := normalize(name)
	if i, ok := index[key]; ok {
		return &items[i], nil
	}
	return nil, &UnknownNameError{Kind: kind, Name: name, Suggestion: suggest(key, index)}
}

// suggest returns the closest key within a third of the name's length.
func suggest(name string, index map[string]int) string {
	best, bestDist := "", len(name)/3+1
	for k := range index {
		d := levenshtein.ComputeDistance(name, k)
		if d < bestDist || (d == bestDist && best != "" && k < best) {
			best, bestDist = k, d
		}
	}
	return best
}

func (c *Catalog) Berry(name string) (*Berry, error) {
	return lookup(c.Berries, c.berryByName, "berry", name)
}

func (c *Catalog) Ingredient(name string) (*Ingredient, error) {
	return lookup(c.Ingredients, c.ingredientByName, "ingredient", name)
}

func (c *Catalog) Recipe(name string) (*Recipe, error) {
	return lookup(c.Recipes, c.recipeByName, "recipe", name)
}

func (c *Catalog) Skill(key string) (*MainSkill, error) {
	return lookup(c.Skills, c.skillByKey, "main skill", key)
}

func (c *Catalog) Nature(name string) (*Nature, error) {
	return lookup(c.Natures, c.natureByName, "nature", name)
}

func (c *Catalog) Subskill(name string) (*Subskill, error) {
	return lookup(c.Subskills, c.subskillByName, "subskill", name)
}

func (c *Catalog) SpeciesByName(name string) (*Species, error) {
	return lookup(c.Species, c.speciesByName, "species", name)
}

// RecipesFor returns the regular recipes of a meal type, highest value
// first. The slice is shared and must not be modified.
func (c *Catalog) RecipesFor(mt MealType) []*Recipe {
	return c.byMeal[mt]
}

func (c *Catalog) MixedRecipe(mt MealType) *Recipe {
	return &c.Recipes[c.mixed[mt]]
}

// IngredientValue sums the base value of a set of ingredient amounts.
func (c *Catalog) IngredientValue(amounts []IngredientAmount) float64 {
	var v float64
	for _, ia := range amounts {
		v += float64(c.Ingredients[ia.Ingredient].Value) * ia.Amount
	}
	return v
}
