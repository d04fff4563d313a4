package engine

import (
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
	"github.com/abdoElHodaky/tradsys-lob/internal/rules"
)

func parseTickSize(s string) (int64, error) {
	p, err := price.Parse(s)
	if err != nil {
		return 0, err
	}
	return p.Unscaled(), nil
}

func (s TickIntervalSpec) toInterval() (rules.TickInterval, error) {
	from, err := price.Parse(s.From)
	if err != nil {
		return rules.TickInterval{}, err
	}
	var to price.Price
	if !s.ToOpen {
		to, err = price.Parse(s.To)
		if err != nil {
			return rules.TickInterval{}, err
		}
	}
	tick, err := parseTickSize(s.TickSize)
	if err != nil {
		return rules.TickInterval{}, err
	}
	return rules.TickInterval{From: from, To: to, ToOpen: s.ToOpen, TickSize: tick}, nil
}

func (s LotIntervalSpec) toInterval() (rules.LotInterval, error) {
	from, err := price.Parse(s.From)
	if err != nil {
		return rules.LotInterval{}, err
	}
	var to price.Price
	if !s.ToOpen {
		to, err = price.Parse(s.To)
		if err != nil {
			return rules.LotInterval{}, err
		}
	}
	return rules.LotInterval{From: from, To: to, ToOpen: s.ToOpen, Step: s.Step}, nil
}
