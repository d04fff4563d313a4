package domain

import "github.com/abdoElHodaky/tradsys-lob/internal/price"

// Fields is the parsed, type-checked representation of a NEW command
// payload, prior to being turned into an Order. HasLimitPrice/HasHidden
// record which optional fields were present on the wire, since their
// presence (not their zero-ness) selects the variant.
type Fields struct {
	Time            int64
	OrderID         int64
	Symbol          string
	Side            Side
	TIF             TIF
	Quantity        int64
	DisplayQuantity int64
	HiddenQuantity  int64
	LimitPrice      price.Price
	HasLimitPrice   bool
	HasHidden       bool
}

// NewOrder is the Order factory of spec.md §4.2: a payload carrying
// hidden_quantity becomes an Iceberg, one carrying limit_price but no
// hidden_quantity becomes a Limit, anything else becomes a Market order.
func NewOrder(f Fields) Order {
	switch {
	case f.HasHidden:
		return NewIceberg(f.Time, f.OrderID, f.Symbol, f.Side, f.DisplayQuantity, f.HiddenQuantity, f.LimitPrice, f.TIF)
	case f.HasLimitPrice:
		return NewLimit(f.Time, f.OrderID, f.Symbol, f.Side, f.Quantity, f.LimitPrice, f.TIF)
	default:
		return NewMarket(f.Time, f.OrderID, f.Symbol, f.Side, f.Quantity)
	}
}
