package gamedata

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/tidwall/gjson"
)

//go:embed data.json
var embeddedData string

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedData)
})

// Default returns the catalog built from the embedded game data. It is
// parsed once per process and must be treated as read-only.
func Default() (*Catalog, error) {
	return loadDefault()
}

func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from a game data document. Names are resolved
// eagerly so a catalog that parses never fails a lookup between its own
// tables.
func Parse(dataJSON string) (*Catalog, error) {
	if !gjson.Valid(dataJSON) {
		return nil, errors.New("game data is not valid JSON")
	}
	c := &Catalog{Version: gjson.Get(dataJSON, "version").String()}

	gjson.Get(dataJSON, "berries").ForEach(func(_, v gjson.Result) bool {
		c.Berries = append(c.Berries, Berry{
			Index: len(c.Berries),
			Name:  normalize(v.Get("name").String()),
			Type:  v.Get("type").String(),
			Value: int(v.Get("value").Int()),
		})
		return true
	})
	gjson.Get(dataJSON, "ingredients").ForEach(func(_, v gjson.Result) bool {
		c.Ingredients = append(c.Ingredients, Ingredient{
			Index: len(c.Ingredients),
			Name:  normalize(v.Get("name").String()),
			Value: int(v.Get("value").Int()),
		})
		return true
	})
	c.buildIndexes()

	var errs []error
	gjson.Get(dataJSON, "recipes").ForEach(func(_, v gjson.Result) bool {
		r, err := c.parseRecipe(v)
		if err != nil {
			errs = append(errs, err)
			return true
		}
		c.Recipes = append(c.Recipes, r)
		return true
	})
	gjson.Get(dataJSON, "skills").ForEach(func(_, v gjson.Result) bool {
		c.Skills = append(c.Skills, parseMainSkill(v))
		return true
	})
	gjson.Get(dataJSON, "natures").ForEach(func(_, v gjson.Result) bool {
		c.Natures = append(c.Natures, Nature{
			Name:       normalize(v.Get("name").String()),
			Frequency:  floatOr(v.Get("frequency"), 1),
			Ingredient: floatOr(v.Get("ingredient"), 1),
			Skill:      floatOr(v.Get("skill"), 1),
			Energy:     floatOr(v.Get("energy"), 1),
		})
		return true
	})
	gjson.Get(dataJSON, "subskills").ForEach(func(_, v gjson.Result) bool {
		c.Subskills = append(c.Subskills, Subskill{
			Name:   normalize(v.Get("name").String()),
			Kind:   parseSubskillKind(v.Get("kind").String()),
			Amount: v.Get("amount").Float(),
		})
		return true
	})
	c.buildIndexes()

	gjson.Get(dataJSON, "species").ForEach(func(_, v gjson.Result) bool {
		s, err := c.parseSpecies(v)
		if err != nil {
			errs = append(errs, err)
			return true
		}
		c.Species = append(c.Species, s)
		return true
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	c.buildIndexes()
	if err := c.indexRecipes(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) parseRecipe(v gjson.Result) (Recipe, error) {
	r := Recipe{
		Index: len(c.Recipes),
		Name:  normalize(v.Get("name").String()),
		Mixed: v.Get("mixed").Bool(),
		Bonus: v.Get("bonus").Float(),
	}
	mt, err := ParseMealType(v.Get("type").String())
	if err != nil {
		return r, fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	r.Type = mt
	r.Ingredients, err = c.readAmounts(v.Get("ingredients"))
	if err != nil {
		return r, fmt.Errorf("recipe %s: %w", r.Name, err)
	}
	var base float64
	for _, ia := range r.Ingredients {
		r.Size += int(ia.Amount)
		base += float64(c.Ingredients[ia.Ingredient].Value) * ia.Amount
	}
	r.Value = int(math.Round(base * (1 + r.Bonus/100)))
	return r, nil
}

func parseMainSkill(v gjson.Result) MainSkill {
	return MainSkill{
		Key:            normalize(v.Get("key").String()),
		Name:           v.Get("name").String(),
		Unit:           v.Get("unit").String(),
		Amounts:        readFloatSlice(v.Get("amounts")),
		TeamAmounts:    readFloatSlice(v.Get("teamAmounts")),
		CritChance:     v.Get("critChance").Float(),
		CritMultiplier: floatOr(v.Get("critMultiplier"), 1),
		Spread:         v.Get("spread").Float(),
		ReleaseChance:  v.Get("releaseChance").Float(),
		MaxStacks:      int(v.Get("maxStacks").Int()),
	}
}

func (c *Catalog) parseSpecies(v gjson.Result) (Species, error) {
	s := Species{
		Name:                 normalize(v.Get("name").String()),
		Frequency:            v.Get("frequency").Float(),
		CarrySize:            int(v.Get("carrySize").Int()),
		PreviousEvolutions:   int(v.Get("previousEvolutions").Int()),
		IngredientPercentage: v.Get("ingredientPercentage").Float(),
		SkillPercentage:      v.Get("skillPercentage").Float(),
		Skill:                normalize(v.Get("skill").String()),
	}
	berry, err := c.Berry(v.Get("berry").String())
	if err != nil {
		return s, fmt.Errorf("species %s: %w", s.Name, err)
	}
	s.Berry = berry.Index
	sp, ok := parseSpecialty(v.Get("specialty").String())
	if !ok {
		return s, fmt.Errorf("species %s: unknown specialty %q", s.Name, v.Get("specialty").String())
	}
	s.Specialty = sp
	if _, err := c.Skill(s.Skill); err != nil {
		return s, fmt.Errorf("species %s: %w", s.Name, err)
	}
	if s.Frequency <= 0 {
		return s, fmt.Errorf("species %s: frequency must be positive", s.Name)
	}
	for slot, key := range [3]string{"ingredient0", "ingredient30", "ingredient60"} {
		opts, err := c.readAmounts(v.Get(key))
		if err != nil {
			return s, fmt.Errorf("species %s slot %d: %w", s.Name, slot, err)
		}
		if len(opts) == 0 {
			return s, fmt.Errorf("species %s slot %d: no ingredient options", s.Name, slot)
		}
		s.IngredientOptions[slot] = opts
	}
	return s, nil
}

func (c *Catalog) readAmounts(list gjson.Result) ([]IngredientAmount, error) {
	var out []IngredientAmount
	var err error
	list.ForEach(func(_, v gjson.Result) bool {
		ing, lerr := c.Ingredient(v.Get("name").String())
		if lerr != nil {
			err = lerr
			return false
		}
		out = append(out, IngredientAmount{Ingredient: ing.Index, Amount: v.Get("amount").Float()})
		return true
	})
	return out, err
}

func readFloatSlice(r gjson.Result) []float64 {
	var out []float64
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.Float())
		return true
	})
	return out
}

func floatOr(r gjson.Result, def float64) float64 {
	if !r.Exists() {
		return def
	}
	return r.Float()
}
