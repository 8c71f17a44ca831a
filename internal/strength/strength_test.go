package strength

import (
	"testing"

	"github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"
	"github.com/nerolis-lab/nerolis-lab-sub003/internal/produce"
)

func testCatalog(t *testing.T) *gamedata.Catalog {
	t.Helper()
	c, err := gamedata.Default()
	if err != nil {
		t.Fatalf("gamedata.Default: %v", err)
	}
	return c
}

func berry(t *testing.T, c *gamedata.Catalog, name string) int {
	t.Helper()
	b, err := c.Berry(name)
	if err != nil {
		t.Fatal(err)
	}
	return b.Index
}

func TestSingleBerryAdditivity(t *testing.T) {
	c := testCatalog(t)
	oran := berry(t, c, "ORAN")   // 31 at level 1
	durin := berry(t, c, "DURIN") // 39 at level 10

	tests := []struct {
		name    string
		berry   int
		level   int
		amount  float64
		favored bool
		area    float64
		want    Breakdown
		total   float64
	}{
		{"favored with island bonus", oran, 1, 10, true, 0.5, Breakdown{310, 310, 310}, 930},
		{"plain", oran, 1, 10, false, 0, Breakdown{310, 0, 0}, 310},
		{"fractional floors once", durin, 10, 7, false, 0.25, Breakdown{273, 0, 68.25}, 341},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p produce.Produce
			p.AddBerry(tt.berry, tt.level, tt.amount)
			s := Settings{AreaBonus: tt.area}
			if tt.favored {
				s.Favored = []int{tt.berry}
			}
			r := Calculate(c, Input{Settings: s, ProduceWithoutSkill: p})
			if r.Berries.Breakdown != tt.want {
				t.Errorf("breakdown = %+v, want %+v", r.Berries.Breakdown, tt.want)
			}
			if r.Berries.Total != tt.total {
				t.Errorf("total = %v, want %v", r.Berries.Total, tt.total)
			}
			if r.Skill.Total != 0 {
				t.Errorf("skill bucket = %v, want 0", r.Skill.Total)
			}
		})
	}
}

func TestFloorAtSummation(t *testing.T) {
	c := testCatalog(t)
	oran := berry(t, c, "ORAN")
	var p produce.Produce
	// two halves of 31 would floor to 15 each if rounded early
	p.AddBerry(oran, 1, 0.5)
	p.AddBerry(oran, 1, 0.5)
	r := Calculate(c, Input{ProduceWithoutSkill: p})
	if r.Berries.Total != 31 {
		t.Errorf("total = %v, want 31", r.Berries.Total)
	}

	var q produce.Produce
	q.AddBerry(oran, 1, 0.5)
	q.AddBerry(oran, 2, 0.5) // 15.5 + 16
	r = Calculate(c, Input{ProduceWithoutSkill: q})
	if r.Berries.Total != 31 {
		t.Errorf("mixed level total = %v, want floor(31.5)=31", r.Berries.Total)
	}
}

func TestSkillBucket(t *testing.T) {
	c := testCatalog(t)
	oran := berry(t, c, "ORAN")
	var skillBerries produce.Produce
	skillBerries.AddBerry(oran, 1, 2)

	r := Calculate(c, Input{
		Settings:         Settings{Favored: []int{oran}, AreaBonus: 0.5},
		ProduceFromSkill: skillBerries,
		SkillValue:       SkillValue{AmountToSelf: 1000, AmountToTeam: 200},
	})
	// berries 62 base + 62 favored, strength 1800, island half of everything
	want := Breakdown{Base: 62 + 1800, Favored: 62, IslandBonus: 62 + 900}
	if r.Skill.Breakdown != want {
		t.Errorf("skill breakdown = %+v, want %+v", r.Skill.Breakdown, want)
	}
	if r.Skill.Total != 2886 {
		t.Errorf("skill total = %v, want 2886", r.Skill.Total)
	}
	if r.Berries.Total != 0 {
		t.Errorf("skill berries leaked into berry bucket: %v", r.Berries.Total)
	}
	if r.Total() != 2886 {
		t.Errorf("Total = %v", r.Total())
	}
}
