package domain

import (
	"testing"

	"github.com/abdoElHodaky/tradsys-lob/internal/price"
	"github.com/stretchr/testify/assert"
)

func TestFactoryDispatch(t *testing.T) {
	p := price.MustParse("10.00")

	market := NewOrder(Fields{OrderID: 1, Side: Bid, Quantity: 100})
	assert.Equal(t, KindMarket, market.Kind)
	assert.Equal(t, ImmediateOrCancel, market.TIF)

	limit := NewOrder(Fields{OrderID: 2, Side: Ask, Quantity: 50, LimitPrice: p, HasLimitPrice: true, TIF: Day})
	assert.Equal(t, KindLimit, limit.Kind)
	assert.True(t, limit.LimitPrice.Equal(p))

	iceberg := NewOrder(Fields{
		OrderID: 3, Side: Bid, DisplayQuantity: 100, HiddenQuantity: 300,
		LimitPrice: p, HasLimitPrice: true, HasHidden: true, TIF: GoodTillCancel,
	})
	assert.Equal(t, KindIceberg, iceberg.Kind)
	assert.Equal(t, int64(100), iceberg.Quantity)
	assert.Equal(t, int64(300), iceberg.HiddenQuantity)
	assert.Equal(t, int64(400), iceberg.TotalQuantity())
}

func TestReduceLimit(t *testing.T) {
	o := NewLimit(1, 1, "AAPL", Bid, 100, price.MustParse("10"), Day)
	o.Reduce(40)
	assert.Equal(t, int64(60), o.Quantity)
}

func TestReduceIcebergSpillsIntoHidden(t *testing.T) {
	o := NewIceberg(1, 1, "AAPL", Bid, 100, 300, price.MustParse("10"), GoodTillCancel)
	o.Reduce(250)
	assert.Equal(t, int64(0), o.Quantity)
	assert.Equal(t, int64(150), o.HiddenQuantity)
}

func TestSplit(t *testing.T) {
	o := NewIceberg(7, 42, "AAPL", Bid, 100, 300, price.MustParse("10.00"), GoodTillCancel)
	display, hidden := o.Split()

	assert.Equal(t, KindLimit, display.Kind)
	assert.Equal(t, int64(100), display.Quantity)
	assert.Equal(t, o.OrderID, display.OrderID)
	assert.Equal(t, o.Time, display.Time)

	assert.Equal(t, KindIceberg, hidden.Kind)
	assert.Equal(t, int64(0), hidden.Quantity)
	assert.Equal(t, int64(300), hidden.HiddenQuantity)
	assert.Equal(t, o.OrderID, hidden.OrderID)
}

func TestParseSideAndTIF(t *testing.T) {
	s, err := ParseSide("BUY")
	assert.NoError(t, err)
	assert.Equal(t, Bid, s)

	_, err = ParseSide("bogus")
	assert.Error(t, err)

	tif, err := ParseTIF("good_till_cancel")
	assert.NoError(t, err)
	assert.Equal(t, GoodTillCancel, tif)
}
