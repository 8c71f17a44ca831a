package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/energy"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
)

const teamYAML = `
iterations: 50
settings:
  camp: true
  bedtime: "23:30"
  wakeup: "07:00"
  meal_type: salad
  favored: [GREPA, oran]
  stockpiled_ingredients:
    - {name: HONEY, amount: 12}
  pot_size: 57
  excluded: [FANCY_EGG]
members:
  - species: VENUSAUR
    level: 45
    ingredients: [HONEY, SNOOZY_TOMATO]
    nature: LONELY
    subskills: [HELPING_SPEED_M, INGREDIENT_FINDER_S]
    skill_level: 4
  - id: pika-1
    species: pikachu
    level: 10
    skill_level: 1
`

const teamJSON = `{
  "iterations": 50,
  "settings": {
    "camp": true, "bedtime": "23:30", "wakeup": "07:00", "meal_type": "salad",
    "favored": ["GREPA", "oran"],
    "stockpiled_ingredients": [{"name": "HONEY", "amount": 12}],
    "pot_size": 57, "excluded": ["FANCY_EGG"]
  },
  "members": [
    {"species": "VENUSAUR", "level": 45, "ingredients": ["HONEY", "SNOOZY_TOMATO"],
     "nature": "LONELY", "subskills": ["HELPING_SPEED_M", "INGREDIENT_FINDER_S"], "skill_level": 4},
    {"id": "pika-1", "species": "pikachu", "level": 10, "skill_level": 1}
  ]
}`

func catalog(t *testing.T) *gamedata.Catalog {
	t.Helper()
	c, err := gamedata.Default()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestParseTeamAcceptsYAMLAndJSON(t *testing.T) {
	y, err := ParseTeam([]byte(teamYAML))
	if err != nil {
		t.Fatal(err)
	}
	j, err := ParseTeam([]byte(teamJSON))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(y, j) {
		t.Errorf("YAML and JSON differ:\n%+v\n%+v", y, j)
	}
}

func TestResolve(t *testing.T) {
	c := catalog(t)
	tf, err := ParseTeam([]byte(teamYAML))
	if err != nil {
		t.Fatal(err)
	}
	settings, members, err := tf.Resolve(c)
	if err != nil {
		t.Fatal(err)
	}

	if !settings.Camp || settings.MealType != gamedata.MealSalad || settings.PotSize != 57 {
		t.Errorf("settings = %+v", settings)
	}
	if settings.Sleep.Start != (energy.Clock{Hour: 23, Minute: 30}) || settings.Sleep.End != (energy.Clock{Hour: 7}) {
		t.Errorf("sleep = %+v", settings.Sleep)
	}
	if len(settings.Favored) != 2 || len(settings.Excluded) != 1 || len(settings.StockpiledIngredients) != 1 {
		t.Errorf("name lists not resolved: %+v", settings)
	}

	if len(members) != 2 {
		t.Fatalf("got %d members", len(members))
	}
	venu := members[0]
	if venu.ExternalID != "VENUSAUR" {
		t.Errorf("default id = %q, want species name", venu.ExternalID)
	}
	if venu.Nature.Name != "LONELY" || len(venu.Subskills) != 2 {
		t.Errorf("venusaur = %+v", venu)
	}
	tomato, _ := c.Ingredient("SNOOZY_TOMATO")
	if len(venu.Ingredients) != 2 || venu.Ingredients[1].Ingredient != tomato.Index || venu.Ingredients[1].Amount != 4 {
		t.Errorf("venusaur ingredients = %+v", venu.Ingredients)
	}

	pika := members[1]
	if pika.ExternalID != "pika-1" {
		t.Errorf("id = %q", pika.ExternalID)
	}
	if pika.Nature == nil || pika.Nature.Frequency != 1 || pika.Nature.Energy != 1 {
		t.Errorf("empty nature should be neutral, got %+v", pika.Nature)
	}
	if len(pika.Ingredients) != 3 {
		t.Errorf("default ingredients = %+v, want one per slot", pika.Ingredients)
	}
}

func TestResolveReportsEveryBadName(t *testing.T) {
	tf := &TeamFile{
		Settings: SettingsFile{Bedtime: "23:00", Wakeup: "7am", MealType: "soup", PotSize: 30, Favored: []string{"GREPPA"}},
		Members: []MemberFile{
			{Species: "PIKACHOO", Level: 10, SkillLevel: 1},
			{Species: "PIKACHU", Level: 10, SkillLevel: 1, Nature: "GRUMPY", Subskills: []string{"HELPING_SPEED_XL"}},
			{Species: "PIKACHU", Level: 30, SkillLevel: 1, Ingredients: []string{"FANCY_APPLE", "HONEY"}},
		},
	}
	_, _, err := tf.Resolve(catalog(t))
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	for _, want := range []string{"settings.wakeup", "settings.meal_type", "settings.favored", "members[0]", "members[1]", "members[2]", "slot 2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error misses %q:\n%s", want, msg)
		}
	}

	var unknown *gamedata.UnknownNameError
	if !errors.As(err, &unknown) {
		t.Fatalf("no UnknownNameError in %v", err)
	}
	if !strings.Contains(msg, `did you mean "GREPA"`) {
		t.Errorf("missing berry suggestion:\n%s", msg)
	}
}

func TestChooseIngredientsRejectsExtraSlots(t *testing.T) {
	c := catalog(t)
	sp, err := c.SpeciesByName("PIKACHU")
	if err != nil {
		t.Fatal(err)
	}
	_, err = chooseIngredients(c, sp, []string{"FANCY_APPLE", "FANCY_APPLE", "FANCY_APPLE", "FANCY_APPLE"})
	if err == nil {
		t.Error("expected an error for four slots")
	}
}
