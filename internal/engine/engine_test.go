package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/events"
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
	"github.com/abdoElHodaky/tradsys-lob/internal/rules"
	"github.com/abdoElHodaky/tradsys-lob/internal/transport"
)

func testEngine(t *testing.T) *MatchingEngine {
	t.Helper()
	symbols := rules.NewSymbolSet([]string{"ABC"})
	tickRules := rules.NewTickSizeRules(nil)
	lotRules := rules.NewLotSizeRules(nil)
	cfg := &Config{Session: SessionConfig{Compress: false}}
	return New(cfg, symbols, tickRules, lotRules, zap.NewNop(), nil)
}

func TestProcessNewLimitRestsNoTrade(t *testing.T) {
	e := testEngine(t)
	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "buy",
		Quantity: 10, LimitPrice: "100.00", TIF: "good_till_cancel",
	})
	require.Len(t, evs, 1)
	du, ok := evs[0].(events.DepthUpdate)
	require.True(t, ok)
	require.Len(t, du.Bid, 1)
	assert.Equal(t, events.Add, du.Bid[0].Action)
	assert.Equal(t, int64(10), du.Bid[0].Quantity)
}

func TestProcessNewCrossingProducesTradeAndCoalescedDepth(t *testing.T) {
	e := testEngine(t)
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "sell",
		Quantity: 10, LimitPrice: "100.00", TIF: "good_till_cancel",
	})

	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 2, OrderID: 2, Symbol: "ABC", Side: "buy",
		Quantity: 15, LimitPrice: "100.00", TIF: "good_till_cancel",
	})

	require.Len(t, evs, 2)
	trade, ok := evs[0].(events.Trade)
	require.True(t, ok)
	assert.Equal(t, int64(10), trade.Quantity)
	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, "ABC", trade.Symbol)

	du, ok := evs[1].(events.DepthUpdate)
	require.True(t, ok)
	require.Len(t, du.Ask, 1)
	assert.Equal(t, events.Delete, du.Ask[0].Action)
	require.Len(t, du.Bid, 1)
	assert.Equal(t, events.Add, du.Bid[0].Action)
	assert.Equal(t, int64(5), du.Bid[0].Quantity)
}

func TestProcessCancelAcrossBooks(t *testing.T) {
	e := testEngine(t)
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 7, Symbol: "ABC", Side: "buy",
		Quantity: 10, LimitPrice: "100.00", TIF: "good_till_cancel",
	})

	evs := e.Process(transport.CommandPayload{Type: "CANCEL", OrderID: 7})
	require.Len(t, evs, 1)
	du, ok := evs[0].(events.DepthUpdate)
	require.True(t, ok)
	require.Len(t, du.Bid, 1)
	assert.Equal(t, events.Modify, du.Bid[0].Action)

	// Second cancel of the same, now-dead, ID is a silent no-op.
	evs = e.Process(transport.CommandPayload{Type: "CANCEL", OrderID: 7})
	assert.Nil(t, evs)
}

func TestProcessReplenishExposesHiddenReserve(t *testing.T) {
	e := testEngine(t)
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 9, Symbol: "ABC", Side: "buy",
		DisplayQuantity: 5, HiddenQuantity: 20, LimitPrice: "100.00", TIF: "good_till_cancel",
	})

	// Fully fill the displayed 5 first.
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 2, OrderID: 10, Symbol: "ABC", Side: "sell",
		Quantity: 5, LimitPrice: "100.00", TIF: "immediate_or_cancel",
	})

	evs := e.Process(transport.CommandPayload{Type: "REPLENISH", OrderID: 9, Quantity: 5, Time: 3})
	require.Len(t, evs, 1)
	du, ok := evs[0].(events.DepthUpdate)
	require.True(t, ok)
	require.Len(t, du.Bid, 1)
	assert.Equal(t, int64(5), du.Bid[0].Quantity)
}

func TestProcessRejectsUnknownSymbol(t *testing.T) {
	e := testEngine(t)
	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ZZZ", Side: "buy",
		Quantity: 10, LimitPrice: "100.00", TIF: "good_till_cancel",
	})
	assert.Nil(t, evs)
}

func TestProcessRejectsMalformedSide(t *testing.T) {
	e := testEngine(t)
	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "sideways",
		Quantity: 10, LimitPrice: "100.00", TIF: "good_till_cancel",
	})
	assert.Nil(t, evs)
}

func TestProcessRejectsNonRoundLot(t *testing.T) {
	symbols := rules.NewSymbolSet([]string{"ABC"})
	tickRules := rules.NewTickSizeRules(nil)
	lotRules := rules.NewLotSizeRules([]rules.LotInterval{
		{From: price.FromUnscaled(0), ToOpen: true, Step: 10},
	})
	cfg := &Config{}
	e := New(cfg, symbols, tickRules, lotRules, zap.NewNop(), nil)

	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "buy",
		Quantity: 15, LimitPrice: "100.00", TIF: "good_till_cancel",
	})
	assert.Nil(t, evs)
}

func TestProcessRejectsPriceOffTick(t *testing.T) {
	symbols := rules.NewSymbolSet([]string{"ABC"})
	tickRules := rules.NewTickSizeRules([]rules.TickInterval{
		{From: price.FromUnscaled(0), ToOpen: true, TickSize: 100},
	})
	lotRules := rules.NewLotSizeRules(nil)
	cfg := &Config{}
	e := New(cfg, symbols, tickRules, lotRules, zap.NewNop(), nil)

	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "buy",
		Quantity: 10, LimitPrice: "100.0050", TIF: "good_till_cancel",
	})
	assert.Nil(t, evs)
}

func TestProcessRejectsMalformedPriceString(t *testing.T) {
	e := testEngine(t)
	evs := e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "buy",
		Quantity: 10, LimitPrice: "not-a-price", TIF: "good_till_cancel",
	})
	assert.Nil(t, evs)
}

func TestProcessUnknownTypeIsRejected(t *testing.T) {
	e := testEngine(t)
	evs := e.Process(transport.CommandPayload{Type: "FROB", OrderID: 1, Symbol: "ABC"})
	assert.Nil(t, evs)
}

func TestMarketCloseThenOpenRoundTrip(t *testing.T) {
	e := testEngine(t)

	// Three GTC orders that should survive, one Day order that should not.
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 1, OrderID: 1, Symbol: "ABC", Side: "buy",
		Quantity: 10, LimitPrice: "100.00", TIF: "good_till_cancel",
	})
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 2, OrderID: 2, Symbol: "ABC", Side: "buy",
		Quantity: 20, LimitPrice: "99.00", TIF: "good_till_cancel",
	})
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 3, OrderID: 3, Symbol: "ABC", Side: "sell",
		Quantity: 15, LimitPrice: "101.00", TIF: "good_till_cancel",
	})
	e.Process(transport.CommandPayload{
		Type: "NEW", Time: 4, OrderID: 4, Symbol: "ABC", Side: "sell",
		Quantity: 5, LimitPrice: "102.00", TIF: "day",
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.ndjson")
	require.NoError(t, e.MarketClose(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := countNonEmptyLines(string(data))
	assert.Equal(t, 3, lines)

	reopened := testEngine(t)
	snaps := reopened.MarketOpen(path)
	require.NotEmpty(t, snaps)

	var sawBid, sawAsk bool
	totalLevels := 0
	for _, ev := range snaps {
		snap, ok := ev.(events.MarketSnap)
		require.True(t, ok)
		assert.Equal(t, "ABC", snap.Symbol)
		totalLevels += len(snap.Levels)
		if snap.Side == "buy" {
			sawBid = true
		}
		if snap.Side == "sell" {
			sawAsk = true
		}
	}
	assert.True(t, sawBid)
	assert.True(t, sawAsk)
	assert.Equal(t, 3, totalLevels)
}

func TestMarketOpenMissingFileLeavesEmptyBooks(t *testing.T) {
	e := testEngine(t)
	evs := e.MarketOpen(filepath.Join(t.TempDir(), "does-not-exist.ndjson"))
	assert.Nil(t, evs)
}

func countNonEmptyLines(s string) int {
	n := 0
	for _, line := range splitLines(s) {
		if line != "" {
			n++
		}
	}
	return n
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func TestCoalesceDistinctSidesMerge(t *testing.T) {
	matchEvents := []events.Event{
		events.Trade{ID: "t1", Quantity: 10},
		events.DepthUpdate{Ask: []events.OrderUpdateInfo{{Price: price.MustParse("100.00"), Action: events.Delete}}},
	}
	insertion := events.DepthUpdate{Bid: []events.OrderUpdateInfo{{Price: price.MustParse("99.00"), Quantity: 5, Action: events.Add}}}

	out := coalesce(matchEvents, insertion)
	require.Len(t, out, 2)
	du, ok := out[1].(events.DepthUpdate)
	require.True(t, ok)
	assert.Len(t, du.Ask, 1)
	assert.Len(t, du.Bid, 1)
}

func TestCoalesceSameSideConflictPanics(t *testing.T) {
	matchEvents := []events.Event{
		events.DepthUpdate{Bid: []events.OrderUpdateInfo{{Price: price.MustParse("100.00"), Action: events.Delete}}},
	}
	insertion := events.DepthUpdate{Bid: []events.OrderUpdateInfo{{Price: price.MustParse("99.00"), Quantity: 5, Action: events.Add}}}

	assert.Panics(t, func() { coalesce(matchEvents, insertion) })
}

func TestCoalesceNoMatchEventsReturnsInsertionOnly(t *testing.T) {
	insertion := events.DepthUpdate{Bid: []events.OrderUpdateInfo{{Price: price.MustParse("99.00"), Quantity: 5, Action: events.Add}}}
	out := coalesce(nil, insertion)
	require.Len(t, out, 1)
	assert.Equal(t, insertion, out[0])
}

func TestCoalesceEmptyInsertionDropsTrailingEmptyDepthUpdate(t *testing.T) {
	matchEvents := []events.Event{
		events.Trade{ID: "t1", Quantity: 10},
		events.DepthUpdate{},
	}
	out := coalesce(matchEvents, events.DepthUpdate{})
	require.Len(t, out, 1)
	_, ok := out[0].(events.Trade)
	assert.True(t, ok)
}
