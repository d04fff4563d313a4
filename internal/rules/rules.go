// Package rules implements the instrument-level validation predicates:
// tick size, lot size, and the symbol whitelist (spec.md §4.3).
package rules

import (
	"fmt"
	"sort"

	"github.com/abdoElHodaky/tradsys-lob/internal/price"
)

// ErrNoRuleForPrice is returned when a non-empty rule set has no interval
// covering a price (the price falls below the first boundary).
var ErrNoRuleForPrice = fmt.Errorf("no rule for price")

// TickInterval is one half-open [From, To) tick-size band. To is ignored
// (treated as open-ended) when ToOpen is true.
type TickInterval struct {
	From     price.Price
	To       price.Price
	ToOpen   bool
	TickSize int64 // in unscaled units
}

// TickSizeRules is a sorted sequence of tick-size intervals.
type TickSizeRules struct {
	intervals []TickInterval
}

// NewTickSizeRules builds a TickSizeRules from intervals sorted by From.
func NewTickSizeRules(intervals []TickInterval) *TickSizeRules {
	sorted := append([]TickInterval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From.Less(sorted[j].From) })
	return &TickSizeRules{intervals: sorted}
}

// find returns the interval containing p, via binary search on From.
func (r *TickSizeRules) find(p price.Price) (TickInterval, bool) {
	if len(r.intervals) == 0 {
		return TickInterval{}, false
	}
	idx := sort.Search(len(r.intervals), func(i int) bool {
		return !r.intervals[i].From.Less(p)
	})
	// idx is the first interval whose From >= p. The containing interval is
	// idx-1 unless p exactly matches intervals[idx].From.
	if idx < len(r.intervals) && r.intervals[idx].From.Equal(p) {
		return r.intervals[idx], true
	}
	idx--
	if idx < 0 {
		return TickInterval{}, false
	}
	iv := r.intervals[idx]
	if !iv.ToOpen && !p.Less(iv.To) {
		return TickInterval{}, false
	}
	return iv, true
}

// IsValid reports whether p is a multiple of the tick size of the interval
// containing it. An empty rule set is permissive (always valid).
func (r *TickSizeRules) IsValid(p price.Price) (bool, error) {
	if len(r.intervals) == 0 {
		return true, nil
	}
	iv, ok := r.find(p)
	if !ok {
		return false, ErrNoRuleForPrice
	}
	if iv.TickSize <= 0 {
		return true, nil
	}
	return p.Unscaled()%iv.TickSize == 0, nil
}

// LotType classifies an order's (price, quantity) pair.
type LotType int

const (
	// OddLot is a quantity below the applicable lot step.
	OddLot LotType = iota
	// RoundLot is an exact multiple of the lot step; the only admissible
	// classification for a limit order.
	RoundLot
	// MixedLot is a quantity above the step but not an exact multiple.
	MixedLot
)

// LotInterval is one half-open [From, To) lot-step band.
type LotInterval struct {
	From   price.Price
	To     price.Price
	ToOpen bool
	Step   int64
}

// LotSizeRules is a sorted sequence of lot-step intervals.
type LotSizeRules struct {
	intervals []LotInterval
}

// NewLotSizeRules builds a LotSizeRules from intervals sorted by From.
func NewLotSizeRules(intervals []LotInterval) *LotSizeRules {
	sorted := append([]LotInterval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From.Less(sorted[j].From) })
	return &LotSizeRules{intervals: sorted}
}

func (r *LotSizeRules) find(p price.Price) (LotInterval, bool) {
	if len(r.intervals) == 0 {
		return LotInterval{}, false
	}
	idx := sort.Search(len(r.intervals), func(i int) bool {
		return !r.intervals[i].From.Less(p)
	})
	if idx < len(r.intervals) && r.intervals[idx].From.Equal(p) {
		return r.intervals[idx], true
	}
	idx--
	if idx < 0 {
		return LotInterval{}, false
	}
	iv := r.intervals[idx]
	if !iv.ToOpen && !p.Less(iv.To) {
		return LotInterval{}, false
	}
	return iv, true
}

// Classify returns the LotType of quantity at price p. An empty rule set
// has an implicit step of 1, so every positive quantity is RoundLot.
func (r *LotSizeRules) Classify(p price.Price, quantity int64) (LotType, error) {
	if len(r.intervals) == 0 {
		return RoundLot, nil
	}
	iv, ok := r.find(p)
	if !ok {
		return 0, ErrNoRuleForPrice
	}
	step := iv.Step
	if step <= 0 {
		step = 1
	}
	switch {
	case quantity < step:
		return OddLot, nil
	case quantity%step == 0:
		return RoundLot, nil
	default:
		return MixedLot, nil
	}
}

// SymbolSet is a finite whitelist of tradeable symbols.
type SymbolSet struct {
	symbols map[string]struct{}
}

// NewSymbolSet builds a SymbolSet from a list of symbols.
func NewSymbolSet(symbols []string) *SymbolSet {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return &SymbolSet{symbols: set}
}

// IsValid reports set membership. An empty set rejects every symbol.
func (s *SymbolSet) IsValid(symbol string) bool {
	_, ok := s.symbols[symbol]
	return ok
}
