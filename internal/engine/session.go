package engine

import (
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/events"
	"github.com/abdoElHodaky/tradsys-lob/internal/session"
)

// sortedKeys returns the engine's book keys in deterministic order:
// symbol, then Bid before Ask.
func (e *MatchingEngine) sortedKeys() []bookKey {
	keys := make([]bookKey, 0, len(e.books))
	for k := range e.books {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].symbol != keys[j].symbol {
			return keys[i].symbol < keys[j].symbol
		}
		return keys[i].side == domain.Bid && keys[j].side == domain.Ask
	})
	return keys
}

// MarketClose overwrites path with the newline-delimited get_eod_orders
// output of every book, in deterministic book order (spec.md §4.5).
func (e *MatchingEngine) MarketClose(path string) error {
	var all []domain.Order
	for _, k := range e.sortedKeys() {
		all = append(all, e.books[k].EODOrders()...)
	}

	id, err := session.Write(path, all, e.cfg.Session.Compress)
	if err != nil {
		e.logger.Error("snapshot write failed", zap.String("path", path), zap.Error(err))
		return err
	}
	e.logger.Info("market closed", zap.String("snapshot_id", id), zap.Int("orders", len(all)), zap.String("path", path))
	return nil
}

// MarketOpen loads path and inserts each order via the book's normal
// insert path (no matching), then returns one MarketSnap per book in
// deterministic key order to seed downstream consumers.
func (e *MatchingEngine) MarketOpen(path string) []events.Event {
	orders, err := session.Read(path, e.logger)
	if err != nil {
		e.logger.Warn("snapshot read failed; opening with empty books", zap.String("path", path), zap.Error(err))
		return nil
	}

	for _, o := range orders {
		e.bookFor(o.Symbol, o.Side).Insert(o)
	}

	var out []events.Event
	for _, k := range e.sortedKeys() {
		out = append(out, e.books[k].PriceLevelsSnapshot(k.symbol))
	}
	return out
}

// TradeHistory accumulates trade prices and quantities across a session
// to compute a quantity-weighted VWAP summary on demand.
type TradeHistory struct {
	prices     []float64
	quantities []float64
}

// Record appends one executed trade to the history.
func (h *TradeHistory) Record(t events.Trade) {
	h.prices = append(h.prices, float64(t.Price.Unscaled())/10000.0)
	h.quantities = append(h.quantities, float64(t.Quantity))
}

// VWAP returns the quantity-weighted average trade price, or 0 if no
// trades were recorded.
func (h *TradeHistory) VWAP() float64 {
	if len(h.prices) == 0 {
		return 0
	}
	return stat.Mean(h.prices, h.quantities)
}
