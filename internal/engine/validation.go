package engine

import (
	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
	"github.com/abdoElHodaky/tradsys-lob/internal/rules"
	"github.com/abdoElHodaky/tradsys-lob/internal/transport"
)

// validate implements spec.md §4.5's NEW-payload validation pipeline and
// dispatches to domain.NewOrder on success.
func (e *MatchingEngine) validate(p transport.CommandPayload) (domain.Order, *RejectionError) {
	if !e.symbols.IsValid(p.Symbol) {
		return domain.Order{}, &RejectionError{Kind: KindInvalidSymbol, Detail: p.Symbol}
	}

	side, err := domain.ParseSide(p.Side)
	if err != nil {
		return domain.Order{}, &RejectionError{Kind: KindMalformedPayload, Detail: err.Error()}
	}
	tif, err := domain.ParseTIF(p.TIF)
	if err != nil {
		return domain.Order{}, &RejectionError{Kind: KindMalformedPayload, Detail: err.Error()}
	}

	fields := domain.Fields{
		Time:    p.Time,
		OrderID: p.OrderID,
		Symbol:  p.Symbol,
		Side:    side,
		TIF:     tif,
	}

	switch {
	case p.HiddenQuantity > 0 || p.DisplayQuantity > 0:
		fields.HasHidden = true
		fields.DisplayQuantity = p.DisplayQuantity
		fields.HiddenQuantity = p.HiddenQuantity
		if fields.DisplayQuantity+fields.HiddenQuantity <= 0 {
			return domain.Order{}, &RejectionError{Kind: KindInvalidLot, Detail: "iceberg total quantity must be > 0"}
		}
		if err := e.validatePrice(p.LimitPrice, &fields, fields.DisplayQuantity+fields.HiddenQuantity); err != nil {
			return domain.Order{}, err
		}

	case p.LimitPrice != "":
		fields.HasLimitPrice = true
		fields.Quantity = p.Quantity
		if err := e.validatePrice(p.LimitPrice, &fields, p.Quantity); err != nil {
			return domain.Order{}, err
		}

	default:
		if p.Quantity <= 0 {
			return domain.Order{}, &RejectionError{Kind: KindInvalidLot, Detail: "market order quantity must be > 0"}
		}
		fields.Quantity = p.Quantity
	}

	return domain.NewOrder(fields), nil
}

func (e *MatchingEngine) validatePrice(raw string, fields *domain.Fields, quantity int64) *RejectionError {
	lp, err := price.Parse(raw)
	if err != nil {
		return &RejectionError{Kind: KindInvalidPrice, Detail: raw}
	}
	fields.LimitPrice = lp

	ok, err := e.tickRules.IsValid(lp)
	if err != nil {
		return &RejectionError{Kind: KindNoRuleForPrice, Detail: raw}
	}
	if !ok {
		return &RejectionError{Kind: KindInvalidPrice, Detail: "price violates tick size"}
	}

	lt, err := e.lotRules.Classify(lp, quantity)
	if err != nil {
		return &RejectionError{Kind: KindNoRuleForPrice, Detail: raw}
	}
	if lt != rules.RoundLot {
		return &RejectionError{Kind: KindInvalidLot, Detail: "quantity is not a round lot"}
	}
	return nil
}
