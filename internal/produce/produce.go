// Package produce holds the sparse berry and ingredient collections that
// members gather and skills hand out.
package produce

import "github.com/nerolis-lab/nerolis-lab-sub003/internal/gamedata"

// BerrySet is an amount of one berry picked at one member level.
type BerrySet struct {
	Berry  int
	Level  int
	Amount float64
}

// Produce amounts are fractional so iteration averages stay exact.
type Produce struct {
	Berries     []BerrySet
	Ingredients []gamedata.IngredientAmount
}

func (p *Produce) AddBerry(berry, level int, amount float64) {
	if amount == 0 {
		return
	}
	for i := range p.Berries {
		if p.Berries[i].Berry == berry && p.Berries[i].Level == level {
			p.Berries[i].Amount += amount
			return
		}
	}
	p.Berries = append(p.Berries, BerrySet{Berry: berry, Level: level, Amount: amount})
}

func (p *Produce) AddIngredient(ingredient int, amount float64) {
	if amount == 0 {
		return
	}
	for i := range p.Ingredients {
		if p.Ingredients[i].Ingredient == ingredient {
			p.Ingredients[i].Amount += amount
			return
		}
	}
	p.Ingredients = append(p.Ingredients, gamedata.IngredientAmount{Ingredient: ingredient, Amount: amount})
}

func (p *Produce) Add(o Produce) {
	for _, b := range o.Berries {
		p.AddBerry(b.Berry, b.Level, b.Amount)
	}
	for _, ia := range o.Ingredients {
		p.AddIngredient(ia.Ingredient, ia.Amount)
	}
}

// Scale returns a copy with every amount multiplied by f.
func (p Produce) Scale(f float64) Produce {
	out := Produce{
		Berries:     make([]BerrySet, len(p.Berries)),
		Ingredients: make([]gamedata.IngredientAmount, len(p.Ingredients)),
	}
	for i, b := range p.Berries {
		b.Amount *= f
		out.Berries[i] = b
	}
	for i, ia := range p.Ingredients {
		ia.Amount *= f
		out.Ingredients[i] = ia
	}
	return out
}

func (p Produce) Clone() Produce { return p.Scale(1) }

func (p Produce) TotalBerries() float64 {
	var n float64
	for _, b := range p.Berries {
		n += b.Amount
	}
	return n
}

func (p Produce) TotalIngredients() float64 {
	var n float64
	for _, ia := range p.Ingredients {
		n += ia.Amount
	}
	return n
}

func (p Produce) Total() float64 { return p.TotalBerries() + p.TotalIngredients() }

func (p Produce) Empty() bool { return len(p.Berries) == 0 && len(p.Ingredients) == 0 }

// Reset empties p but keeps its backing arrays.
func (p *Produce) Reset() {
	p.Berries = p.Berries[:0]
	p.Ingredients = p.Ingredients[:0]
}
