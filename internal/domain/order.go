// Package domain holds the order-side vocabulary and the Order tagged
// variant (Market, Limit, Iceberg) that the matching core operates on.
package domain

import (
	"fmt"
	"strings"

	"github.com/abdoElHodaky/tradsys-lob/internal/price"
)

// Side is which side of the book an order rests on or crosses.
type Side int

const (
	// Bid is the buy side.
	Bid Side = iota
	// Ask is the sell side.
	Ask
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if s == Bid {
		return "buy"
	}
	return "sell"
}

// ParseSide accepts "buy"/"sell" case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return Bid, nil
	case "sell":
		return Ask, nil
	default:
		return 0, fmt.Errorf("invalid side: %q", s)
	}
}

// TIF is an order's time-in-force.
type TIF int

const (
	// Day orders are discarded, unfilled, at end of session.
	Day TIF = iota
	// ImmediateOrCancel is the TIF every Market order carries; a Market
	// order's unfilled remainder is dropped. A Limit or Iceberg order with
	// this TIF rests its remainder like any other and is discarded at end
	// of session.
	ImmediateOrCancel
	// GoodTillCancel orders survive end of session in the snapshot.
	GoodTillCancel
)

func (t TIF) String() string {
	switch t {
	case Day:
		return "day"
	case ImmediateOrCancel:
		return "immediate_or_cancel"
	case GoodTillCancel:
		return "good_till_cancel"
	default:
		return "unknown"
	}
}

// ParseTIF parses the three recognized TIF strings.
func ParseTIF(s string) (TIF, error) {
	switch s {
	case "day":
		return Day, nil
	case "immediate_or_cancel":
		return ImmediateOrCancel, nil
	case "good_till_cancel":
		return GoodTillCancel, nil
	default:
		return 0, fmt.Errorf("invalid time in force: %q", s)
	}
}

// Kind tags which Order variant a value holds.
type Kind int

const (
	// KindMarket is an unpriced, IOC-only order.
	KindMarket Kind = iota
	// KindLimit is a priced resting order.
	KindLimit
	// KindIceberg is a limit order with a hidden reserve.
	KindIceberg
)

// Order is the tagged variant described in spec.md §3. Only the fields
// relevant to a given Kind are meaningful; callers pattern-match on Kind.
type Order struct {
	Kind Kind

	Time     int64
	OrderID  int64
	Symbol   string
	Side     Side
	TIF      TIF

	// Quantity is the resting/displayed remaining quantity. For Iceberg
	// orders this is the displayed portion; it may reach zero while
	// HiddenQuantity is still positive.
	Quantity int64

	// LimitPrice is meaningful for Limit and Iceberg only.
	LimitPrice price.Price

	// HiddenQuantity is meaningful for Iceberg only.
	HiddenQuantity int64
}

// NewMarket constructs a Market order. TIF is always ImmediateOrCancel.
func NewMarket(t int64, orderID int64, symbol string, side Side, quantity int64) Order {
	return Order{
		Kind:     KindMarket,
		Time:     t,
		OrderID:  orderID,
		Symbol:   symbol,
		Side:     side,
		TIF:      ImmediateOrCancel,
		Quantity: quantity,
	}
}

// NewLimit constructs a Limit order.
func NewLimit(t int64, orderID int64, symbol string, side Side, quantity int64, limitPrice price.Price, tif TIF) Order {
	return Order{
		Kind:       KindLimit,
		Time:       t,
		OrderID:    orderID,
		Symbol:     symbol,
		Side:       side,
		TIF:        tif,
		Quantity:   quantity,
		LimitPrice: limitPrice,
	}
}

// NewIceberg constructs an Iceberg order. displayQuantity is the visible
// portion, hiddenQuantity the reserve.
func NewIceberg(t int64, orderID int64, symbol string, side Side, displayQuantity, hiddenQuantity int64, limitPrice price.Price, tif TIF) Order {
	return Order{
		Kind:           KindIceberg,
		Time:           t,
		OrderID:        orderID,
		Symbol:         symbol,
		Side:           side,
		TIF:            tif,
		Quantity:       displayQuantity,
		LimitPrice:     limitPrice,
		HiddenQuantity: hiddenQuantity,
	}
}

// TotalQuantity returns the full remaining quantity across display and
// hidden portions (equal to Quantity for Market/Limit).
func (o *Order) TotalQuantity() int64 {
	return o.Quantity + o.HiddenQuantity
}

// Reduce decrements the order's remaining quantity by by. For Market and
// Limit it decrements Quantity directly. For Iceberg it decrements the
// displayed Quantity first, then spills into HiddenQuantity. Callers must
// never call Reduce with by greater than TotalQuantity().
func (o *Order) Reduce(by int64) {
	if o.Kind != KindIceberg {
		o.Quantity -= by
		return
	}
	if by <= o.Quantity {
		o.Quantity -= by
		return
	}
	remainder := by - o.Quantity
	o.Quantity = 0
	o.HiddenQuantity -= remainder
}

// Split breaks an Iceberg order into a displayed Limit child and a hidden
// reserve Order, sharing (OrderID, Time, Symbol, Side, TIF, LimitPrice).
// Only meaningful for KindIceberg.
func (o *Order) Split() (display Order, hidden Order) {
	display = NewLimit(o.Time, o.OrderID, o.Symbol, o.Side, o.Quantity, o.LimitPrice, o.TIF)
	hidden = Order{
		Kind:       KindIceberg,
		Time:       o.Time,
		OrderID:    o.OrderID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		TIF:        o.TIF,
		LimitPrice: o.LimitPrice,
		Quantity:   0,
		HiddenQuantity: o.HiddenQuantity,
	}
	return display, hidden
}
