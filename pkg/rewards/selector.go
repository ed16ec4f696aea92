// Package rewards implements the weighted reward selector and the ticket-draw
// flow built on top of it.
package rewards

import (
	"fmt"

	"github.com/Denizbukut/TCG-sub001/pkg/models"
)

// Outcome is one (rarity, weight) entry in a reward table.
type Outcome struct {
	Rarity models.Rarity
	Weight int
}

// Table maps a uniform draw in [0,100) onto an outcome via a cumulative-weight
// table built once at construction. Selection is pure: deterministic given the
// draw value, no shared state.
type Table struct {
	name       string
	outcomes   []Outcome
	cumulative []int
	downgrade  models.Rarity
}

// NewTable builds a reward table. The weights must be positive and sum to
// exactly 100. downgrade is the rarity substituted when a capped outcome
// cannot be granted.
func NewTable(name string, outcomes []Outcome, downgrade models.Rarity) (*Table, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("table %s has no outcomes", name)
	}

	cumulative := make([]int, len(outcomes))
	sum := 0
	for i, o := range outcomes {
		if o.Weight <= 0 {
			return nil, fmt.Errorf("table %s: outcome %s has non-positive weight %d", name, o.Rarity, o.Weight)
		}
		sum += o.Weight
		cumulative[i] = sum
	}
	if sum != 100 {
		return nil, fmt.Errorf("table %s: weights sum to %d, want 100", name, sum)
	}

	return &Table{
		name:       name,
		outcomes:   outcomes,
		cumulative: cumulative,
		downgrade:  downgrade,
	}, nil
}

// Pick returns the first outcome whose cumulative weight exceeds the draw.
// A draw that floating-point rounding leaves past the last boundary falls back
// to the first outcome; Pick never returns "no outcome".
func (t *Table) Pick(draw float64) Outcome {
	for i, bound := range t.cumulative {
		if draw < float64(bound) {
			return t.outcomes[i]
		}
	}
	return t.outcomes[0]
}

// Downgrade returns the substitute rarity for a capped outcome.
func (t *Table) Downgrade() models.Rarity {
	return t.downgrade
}

// Name returns the table identifier.
func (t *Table) Name() string {
	return t.name
}

// Table identifiers for the two reward tiers.
const (
	TableStandard = "standard"
	TableElite    = "elite"
)

// DefaultTables builds the two production reward tables.
func DefaultTables() (map[string]*Table, error) {
	standard, err := NewTable(TableStandard, []Outcome{
		{Rarity: models.RarityCommon, Weight: 60},
		{Rarity: models.RarityRare, Weight: 30},
		{Rarity: models.RarityEpic, Weight: 9},
		{Rarity: models.RarityLegendary, Weight: 1},
	}, models.RarityEpic)
	if err != nil {
		return nil, err
	}

	elite, err := NewTable(TableElite, []Outcome{
		{Rarity: models.RarityRare, Weight: 50},
		{Rarity: models.RarityEpic, Weight: 40},
		{Rarity: models.RarityLegendary, Weight: 10},
	}, models.RarityEpic)
	if err != nil {
		return nil, err
	}

	return map[string]*Table{
		TableStandard: standard,
		TableElite:    elite,
	}, nil
}
