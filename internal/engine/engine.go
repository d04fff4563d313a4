// Package engine implements the MatchingEngine: the collection of
// per-(symbol, side) books, command dispatch, validation, event
// coalescing, and session lifecycle (spec.md §4.5–4.6).
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/book"
	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/events"
	"github.com/abdoElHodaky/tradsys-lob/internal/rules"
	"github.com/abdoElHodaky/tradsys-lob/internal/transport"
)

type bookKey struct {
	symbol string
	side   domain.Side
}

// MatchingEngine owns the collection of books keyed by (symbol, side), the
// shared validation rules, and the session snapshot path.
type MatchingEngine struct {
	books map[bookKey]*book.Book

	symbols   *rules.SymbolSet
	tickRules *rules.TickSizeRules
	lotRules  *rules.LotSizeRules

	cfg    *Config
	logger *zap.Logger
	metric *Metrics
}

// New builds an engine from a fully-loaded Config and its compiled rule
// sets. Books are created lazily on first insertion to a (symbol, side).
func New(cfg *Config, symbols *rules.SymbolSet, tickRules *rules.TickSizeRules, lotRules *rules.LotSizeRules, logger *zap.Logger, registry prometheus.Registerer) *MatchingEngine {
	return &MatchingEngine{
		books:     make(map[bookKey]*book.Book),
		symbols:   symbols,
		tickRules: tickRules,
		lotRules:  lotRules,
		cfg:       cfg,
		logger:    logger,
		metric:    NewMetrics(registry),
	}
}

func (e *MatchingEngine) bookFor(symbol string, side domain.Side) *book.Book {
	key := bookKey{symbol: symbol, side: side}
	b, ok := e.books[key]
	if !ok {
		b = book.New(side)
		e.books[key] = b
	}
	return b
}

// Process dispatches one command payload per spec.md §4.5.
func (e *MatchingEngine) Process(p transport.CommandPayload) []events.Event {
	start := time.Now()
	defer func() { e.metric.CommandLatency.Observe(time.Since(start).Seconds()) }()

	switch p.Type {
	case "NEW":
		return e.processNew(p)
	case "CANCEL":
		return e.processCancel(p.OrderID)
	case "REPLENISH":
		return e.processReplenish(p)
	default:
		e.logger.Warn("malformed command payload: unknown type", zap.String("type", p.Type))
		e.metric.Rejections.WithLabelValues(string(KindMalformedPayload)).Inc()
		return nil
	}
}

func (e *MatchingEngine) processNew(p transport.CommandPayload) []events.Event {
	order, rejection := e.validate(p)
	if rejection != nil {
		e.logger.Debug("NEW rejected", zap.String("kind", string(rejection.Kind)), zap.String("detail", rejection.Detail))
		e.metric.Rejections.WithLabelValues(string(rejection.Kind)).Inc()
		return nil
	}

	oppositeBook := e.bookFor(order.Symbol, order.Side.Opposite())
	matchEvents := oppositeBook.Match(&order)
	e.stampTrades(matchEvents, order.Symbol)

	var insertion events.DepthUpdate
	hasInsertion := false
	if order.Kind != domain.KindMarket && order.TotalQuantity() > 0 {
		restingBook := e.bookFor(order.Symbol, order.Side)
		insertion = restingBook.Insert(order)
		hasInsertion = true
	}

	e.metric.OrdersProcessed.Inc()
	for _, ev := range matchEvents {
		if _, ok := ev.(events.Trade); ok {
			e.metric.TradesExecuted.Inc()
		}
	}

	if !hasInsertion {
		return matchEvents
	}
	return coalesce(matchEvents, insertion)
}

func (e *MatchingEngine) processCancel(orderID int64) []events.Event {
	for _, b := range e.books {
		update := b.Cancel(orderID)
		if !update.IsEmpty() {
			return []events.Event{update}
		}
	}
	return nil
}

func (e *MatchingEngine) processReplenish(p transport.CommandPayload) []events.Event {
	for _, b := range e.books {
		update, ok := b.Replenish(p.OrderID, p.Quantity, p.Time)
		if ok {
			if update.IsEmpty() {
				return nil
			}
			return []events.Event{update}
		}
	}
	return nil
}

func (e *MatchingEngine) stampTrades(evs []events.Event, symbol string) {
	for i, ev := range evs {
		if t, ok := ev.(events.Trade); ok {
			t.ID = uuid.New().String()
			t.Symbol = symbol
			evs[i] = t
		}
	}
}

// coalesce implements spec.md §4.6's engine-level merge: a match's
// trailing DepthUpdate and an insertion's DepthUpdate combine into one
// event when they concern distinct sides.
func coalesce(matchEvents []events.Event, insertion events.DepthUpdate) []events.Event {
	if len(matchEvents) == 0 {
		if insertion.IsEmpty() {
			return nil
		}
		return []events.Event{insertion}
	}

	last, ok := matchEvents[len(matchEvents)-1].(events.DepthUpdate)
	if !ok {
		if insertion.IsEmpty() {
			return matchEvents
		}
		return append(matchEvents, insertion)
	}

	if last.IsEmpty() {
		if insertion.IsEmpty() {
			return matchEvents[:len(matchEvents)-1]
		}
		out := append([]events.Event(nil), matchEvents[:len(matchEvents)-1]...)
		return append(out, insertion)
	}

	if insertion.IsEmpty() {
		return matchEvents
	}

	merged := events.DepthUpdate{}
	switch {
	case len(last.Bid) == 0 && len(insertion.Ask) == 0:
		merged.Bid, merged.Ask = insertion.Bid, last.Ask
	case len(last.Ask) == 0 && len(insertion.Bid) == 0:
		merged.Bid, merged.Ask = last.Bid, insertion.Ask
	default:
		panic("engine: match and insertion depth updates touch the same side")
	}

	out := append([]events.Event(nil), matchEvents[:len(matchEvents)-1]...)
	return append(out, merged)
}
