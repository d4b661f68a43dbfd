// Package ranks maps lifetime points to tiers.
package ranks

import (
	"errors"
	"fmt"
)

// Tier is one rung of the rank ladder
type Tier struct {
	Name      string
	Emoji     string
	Threshold int64
	Color     int
	Ordinal   int
}

// Table is an ordered, validated list of tiers
type Table struct {
	tiers []Tier
}

var (
	ErrEmptyTable             = errors.New("rank table must contain at least one tier")
	ErrFirstThreshold         = errors.New("first rank threshold must be 0")
	ErrThresholdsNotAscending = errors.New("rank thresholds must be strictly increasing")
)

// NewTable validates the tiers and assigns ordinals in ascending order
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, ErrEmptyTable
	}
	if tiers[0].Threshold != 0 {
		return nil, ErrFirstThreshold
	}

	ordered := make([]Tier, len(tiers))
	for i, tier := range tiers {
		if i > 0 && tier.Threshold <= tiers[i-1].Threshold {
			return nil, fmt.Errorf("%w: %s (%d) after %s (%d)", ErrThresholdsNotAscending,
				tier.Name, tier.Threshold, tiers[i-1].Name, tiers[i-1].Threshold)
		}
		tier.Ordinal = i
		ordered[i] = tier
	}

	return &Table{tiers: ordered}, nil
}

// MustTable is NewTable for static tables
func MustTable(tiers []Tier) *Table {
	table, err := NewTable(tiers)
	if err != nil {
		panic(err)
	}
	return table
}

// Default is the ladder used by the bot
var Default = MustTable([]Tier{
	{Name: "Brąz", Emoji: "🥉", Threshold: 0, Color: 0xCD7F32},
	{Name: "Srebro", Emoji: "🥈", Threshold: 100, Color: 0xC0C0C0},
	{Name: "Złoto", Emoji: "🥇", Threshold: 500, Color: 0xFFD700},
	{Name: "Platyna", Emoji: "💎", Threshold: 1500, Color: 0xE5E4E2},
	{Name: "Diament", Emoji: "💠", Threshold: 5000, Color: 0xB9F2FF},
	{Name: "Mistrz", Emoji: "👑", Threshold: 10000, Color: 0xFFDF00},
	{Name: "Legenda", Emoji: "⚡", Threshold: 25000, Color: 0xFF00FF},
})

// Tiers returns a copy of the ladder, lowest first
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Lowest returns the starting tier
func (t *Table) Lowest() Tier {
	return t.tiers[0]
}

// CalculateRank returns the highest tier whose threshold is at or below points.
// Negative points are treated as 0.
func (t *Table) CalculateRank(points int64) Tier {
	current := t.tiers[0]
	for _, tier := range t.tiers[1:] {
		if points < tier.Threshold {
			break
		}
		current = tier
	}
	return current
}

// GetNextRank returns the tier after the one points fall in, or false at the top
func (t *Table) GetNextRank(points int64) (Tier, bool) {
	current := t.CalculateRank(points)
	if current.Ordinal+1 >= len(t.tiers) {
		return Tier{}, false
	}
	return t.tiers[current.Ordinal+1], true
}

// PointsToNextRank returns how many points are missing for the next tier, or 0 at the top
func (t *Table) PointsToNextRank(points int64) int64 {
	next, ok := t.GetNextRank(points)
	if !ok {
		return 0
	}
	return next.Threshold - points
}

// CheckPromotion reports the tier reached when a total moves from oldPoints to
// newPoints, if that tier is higher. Crossing several thresholds at once reports
// only the final tier.
func (t *Table) CheckPromotion(oldPoints, newPoints int64) (Tier, bool) {
	oldTier := t.CalculateRank(oldPoints)
	newTier := t.CalculateRank(newPoints)
	if newTier.Ordinal > oldTier.Ordinal {
		return newTier, true
	}
	return Tier{}, false
}

// ByName looks up a tier by its display name
func (t *Table) ByName(name string) (Tier, bool) {
	for _, tier := range t.tiers {
		if tier.Name == name {
			return tier, true
		}
	}
	return Tier{}, false
}

// Bounds returns the inclusive lower bound of a tier and the exclusive upper
// bound, with hasUpper false for the top tier
func (t *Table) Bounds(tier Tier) (lower int64, upper int64, hasUpper bool) {
	lower = t.tiers[tier.Ordinal].Threshold
	if tier.Ordinal+1 < len(t.tiers) {
		return lower, t.tiers[tier.Ordinal+1].Threshold, true
	}
	return lower, 0, false
}
