// Package rank maps a referral count onto the tiered reward ladder.
//
// A Table is an immutable list of tiers ordered by ascending Min. The lookup
// functions are pure and cheap, so they can be evaluated on every render of a
// profile without caching.
package rank

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Rank is one tier of the ladder. A profile reaches the tier once its
// referral count is at least Min.
type Rank struct {
	Min    int    `json:"min" yaml:"min"`
	Level  int    `json:"level" yaml:"level"`
	Label  string `json:"label" yaml:"label"`
	Reward string `json:"reward" yaml:"reward"`
}

// Validation errors returned by NewTable.
var (
	ErrEmptyTable    = errors.New("rank table is empty")
	ErrMissingFloor  = errors.New("rank table has no tier with min 0")
	ErrNegativeValue = errors.New("rank min and level must be >= 0")
	ErrDuplicateMin  = errors.New("rank table has duplicate min values")
)

// Table is an ordered, validated set of tiers.
type Table struct {
	ranks []Rank
}

// Default is the ladder shipped with the dashboard.
var Default = MustTable([]Rank{
	{Min: 0, Level: 0, Label: "Base", Reward: "—"},
	{Min: 2, Level: 1, Label: "Starter", Reward: "Bonus 10€"},
	{Min: 5, Level: 2, Label: "Silver", Reward: "Buono 25€"},
	{Min: 10, Level: 3, Label: "Gold", Reward: "Sconto 15%"},
	{Min: 20, Level: 4, Label: "Platinum", Reward: "Gift 50€"},
})

// NewTable validates ranks and returns a table holding a sorted copy.
func NewTable(ranks []Rank) (*Table, error) {
	if len(ranks) == 0 {
		return nil, ErrEmptyTable
	}
	sorted := make([]Rank, len(ranks))
	copy(sorted, ranks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i, r := range sorted {
		if r.Min < 0 || r.Level < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNegativeValue, r.Label)
		}
		if i > 0 && sorted[i-1].Min == r.Min {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateMin, r.Min)
		}
	}
	if sorted[0].Min != 0 {
		return nil, ErrMissingFloor
	}
	return &Table{ranks: sorted}, nil
}

// MustTable is NewTable for package-level tables known to be valid.
func MustTable(ranks []Rank) *Table {
	t, err := NewTable(ranks)
	if err != nil {
		panic(err)
	}
	return t
}

// Ranks returns a copy of the tiers in ascending Min order.
func (t *Table) Ranks() []Rank {
	out := make([]Rank, len(t.ranks))
	copy(out, t.ranks)
	return out
}

// Current returns the tier with the greatest Min that is <= count.
// The lower bound is inclusive: a count equal to a threshold reaches that tier.
func (t *Table) Current(count int) Rank {
	count = clampCount(count)
	best := t.ranks[0]
	for _, r := range t.ranks {
		if r.Min > count {
			break
		}
		best = r
	}
	return best
}

// Next returns the tier with the smallest Min that is > count. ok is false
// once the count has reached the top tier.
func (t *Table) Next(count int) (next Rank, ok bool) {
	count = clampCount(count)
	for _, r := range t.ranks {
		if r.Min > count {
			return r, true
		}
	}
	return Rank{}, false
}

// Progress returns how far count is towards next as a percentage in [0,100].
// Without a next tier the ladder is complete and Progress is 100.
func Progress(count int, next Rank, ok bool) int {
	if !ok || next.Min <= 0 {
		return 100
	}
	count = clampCount(count)
	pct := int(math.Round(100 * float64(count) / float64(next.Min)))
	if pct > 100 {
		return 100
	}
	return pct
}

// Progression is everything a detail view needs to render the ladder for
// one profile.
type Progression struct {
	Count     int   `json:"count"`
	Current   Rank  `json:"current"`
	Next      *Rank `json:"next,omitempty"`
	Remaining int   `json:"remaining"`
	Percent   int   `json:"percent"`
}

// Progression resolves the current tier, the next tier and the progress
// between them for count.
func (t *Table) Progression(count int) Progression {
	count = clampCount(count)
	p := Progression{Count: count, Current: t.Current(count), Percent: 100}
	if next, ok := t.Next(count); ok {
		p.Next = &next
		p.Remaining = next.Min - count
		p.Percent = Progress(count, next, true)
	}
	return p
}

func clampCount(c int) int {
	if c < 0 {
		return 0
	}
	return c
}
