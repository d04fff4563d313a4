// Package book implements the per-(symbol, side) resting-liquidity data
// structure: price-time priority queues, a hidden iceberg reserve, and the
// price-level index, per spec.md §4.4.
package book

import (
	"fmt"
	"sort"

	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/events"
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
)

// visibleInfo is the authoritative mutable state for a resting visible
// order: everything the priority queue itself does not carry.
type visibleInfo struct {
	price    price.Price
	quantity int64
	tif      domain.TIF
	symbol   string
}

// hiddenInfo is the authoritative mutable state for an iceberg's reserve.
type hiddenInfo struct {
	price    price.Price
	quantity int64
	tif      domain.TIF
	symbol   string
}

// Book is the resting-liquidity structure for one (symbol, side).
type Book struct {
	side domain.Side

	visible *priceTimeQueue
	hidden  *priceTimeQueue

	validIDs       map[int64]struct{}
	hiddenValidIDs map[int64]struct{}

	priceLevels map[price.Price]int64

	orderInfo       map[int64]*visibleInfo
	hiddenOrderInfo map[int64]*hiddenInfo
}

// New creates an empty book for one side.
func New(side domain.Side) *Book {
	return &Book{
		side:            side,
		visible:         newQueue(side),
		hidden:          newQueue(side),
		validIDs:        make(map[int64]struct{}),
		hiddenValidIDs:  make(map[int64]struct{}),
		priceLevels:     make(map[price.Price]int64),
		orderInfo:       make(map[int64]*visibleInfo),
		hiddenOrderInfo: make(map[int64]*hiddenInfo),
	}
}

// Side returns the book's side.
func (b *Book) Side() domain.Side { return b.side }

func (b *Book) requireSide(side domain.Side) {
	if side != b.side {
		panic(fmt.Sprintf("book: side mismatch: book is %s, order is %s", b.side, side))
	}
}

func (b *Book) requireOppositeSide(side domain.Side) {
	if side == b.side {
		panic(fmt.Sprintf("book: match called with same-side order (book %s)", b.side))
	}
}

// Insert adds a resting order to the book. The visible side of o must
// match the book's side. Returns a DepthUpdate with a single Add entry, or
// an empty DepthUpdate for a duplicate order id or a purely-hidden
// iceberg insertion (spec.md §4.4 "insert").
func (b *Book) Insert(o domain.Order) events.DepthUpdate {
	b.requireSide(o.Side)

	if _, dup := b.validIDs[o.OrderID]; dup {
		return events.DepthUpdate{}
	}

	switch o.Kind {
	case domain.KindIceberg:
		return b.insertIceberg(o)
	default:
		return b.insertVisible(o)
	}
}

func (b *Book) insertVisible(o domain.Order) events.DepthUpdate {
	b.visible.push(entry{price: o.LimitPrice, time: o.Time, orderID: o.OrderID})
	b.validIDs[o.OrderID] = struct{}{}
	b.priceLevels[o.LimitPrice] += o.Quantity
	b.orderInfo[o.OrderID] = &visibleInfo{price: o.LimitPrice, quantity: o.Quantity, tif: o.TIF, symbol: o.Symbol}

	if o.Quantity == 0 {
		return events.DepthUpdate{}
	}
	return b.wrap([]events.OrderUpdateInfo{{Price: o.LimitPrice, Quantity: o.Quantity, Action: events.Add}})
}

func (b *Book) insertIceberg(o domain.Order) events.DepthUpdate {
	display, hidden := o.Split()

	var update events.DepthUpdate
	if display.Quantity > 0 {
		update = b.insertVisible(display)
	} else {
		// purely hidden insertion: still reserve the id so a later
		// duplicate NEW is rejected, but emit no depth entry.
		b.validIDs[o.OrderID] = struct{}{}
	}

	b.hidden.push(entry{price: o.LimitPrice, time: o.Time, orderID: o.OrderID})
	b.hiddenValidIDs[o.OrderID] = struct{}{}
	b.hiddenOrderInfo[o.OrderID] = &hiddenInfo{price: o.LimitPrice, quantity: hidden.HiddenQuantity, tif: o.TIF, symbol: o.Symbol}

	return update
}

// Cancel removes a resting order, on both its visible and hidden halves
// if it is an iceberg. Cancelling an unknown id is a no-op and returns an
// empty DepthUpdate. Cancelling an iceberg with no displayed quantity left
// removes its hidden reserve and also returns an empty DepthUpdate.
func (b *Book) Cancel(orderID int64) events.DepthUpdate {
	delete(b.hiddenValidIDs, orderID)
	delete(b.hiddenOrderInfo, orderID)

	if _, live := b.validIDs[orderID]; !live {
		return events.DepthUpdate{}
	}
	info, ok := b.orderInfo[orderID]
	if !ok {
		delete(b.validIDs, orderID)
		return events.DepthUpdate{}
	}

	delete(b.validIDs, orderID)
	p := info.price
	qty := info.quantity
	delete(b.orderInfo, orderID)

	remaining := b.priceLevels[p] - qty
	if remaining <= 0 {
		delete(b.priceLevels, p)
		remaining = 0
	} else {
		b.priceLevels[p] = remaining
	}

	if p.IsZero() {
		return events.DepthUpdate{}
	}
	return b.wrap([]events.OrderUpdateInfo{{Price: p, Quantity: remaining, Action: events.Modify}})
}

// Replenish exposes up to quantity of an iceberg's hidden reserve as a new
// visible child order, stamped with now. Rejected (no event, ok=false) if
// the visible side still has displayed quantity, or the hidden side is
// exhausted or unknown.
func (b *Book) Replenish(orderID int64, quantity int64, now int64) (events.DepthUpdate, bool) {
	if info, live := b.orderInfo[orderID]; live && info.quantity > 0 {
		return events.DepthUpdate{}, false
	}
	hidden, ok := b.hiddenOrderInfo[orderID]
	if !ok {
		return events.DepthUpdate{}, false
	}
	if _, live := b.hiddenValidIDs[orderID]; !live || hidden.quantity <= 0 {
		return events.DepthUpdate{}, false
	}

	expose := quantity
	if hidden.quantity < expose {
		expose = hidden.quantity
	}
	hidden.quantity -= expose

	// The id may already be reserved in validIDs from a purely-hidden
	// insertion (no visible half yet); clear it so insertVisible's fresh
	// reservation is the one that counts.
	delete(b.validIDs, orderID)

	child := domain.NewLimit(now, orderID, hidden.symbol, b.side, expose, hidden.price, hidden.tif)
	return b.insertVisible(child), true
}

// better returns whichever of a, b is preferred by this book's ordering.
func (b *Book) better(a, c price.Price) price.Price {
	if b.side == domain.Bid {
		if c.Less(a) {
			return a
		}
		return c
	}
	if a.Less(c) {
		return a
	}
	return c
}

// crosses reports whether a resting order at bestPrice crosses incoming,
// per spec.md §4.4's "Cross" predicate.
func crosses(incoming *domain.Order, bestPrice price.Price) bool {
	if incoming.Kind == domain.KindMarket {
		return true
	}
	if incoming.Side == domain.Bid {
		return !incoming.LimitPrice.Less(bestPrice)
	}
	return !bestPrice.Less(incoming.LimitPrice)
}

// peekValidTop pops tombstoned (invalid) entries lazily until the real top
// of the queue is found, then peeks its price without removing it.
func (b *Book) peekValidTop(q *priceTimeQueue, valid map[int64]struct{}) (price.Price, bool) {
	for {
		top, ok := q.peek()
		if !ok {
			return price.Price{}, false
		}
		if _, live := valid[top.orderID]; !live {
			q.popTop()
			continue
		}
		return top.price, true
	}
}

// Match executes incoming against this book's resting liquidity. incoming
// must be on the opposite side of the book. Returns the ordered Trade
// events followed by a single coalesced DepthUpdate (visible-side effects
// only), matching spec.md §4.4's "match".
func (b *Book) Match(incoming *domain.Order) []events.Event {
	b.requireOppositeSide(incoming.Side)

	var trades []events.Trade
	var updates []events.OrderUpdateInfo
	havePrev := false
	var prevPrice price.Price

	remaining := incoming.TotalQuantity()
	var filled int64

	for remaining > 0 {
		visiblePrice, hasVisible := b.peekValidTop(b.visible, b.validIDs)
		hiddenPrice, hasHidden := b.peekValidTop(b.hidden, b.hiddenValidIDs)
		if !hasVisible && !hasHidden {
			break
		}

		var best price.Price
		switch {
		case hasVisible && hasHidden:
			best = b.better(visiblePrice, hiddenPrice)
		case hasVisible:
			best = visiblePrice
		default:
			best = hiddenPrice
		}

		if !crosses(incoming, best) {
			break
		}

		before := remaining
		remaining, filled = b.matchAtPrice(b.visible, b.validIDs, best, true, remaining, filled, &trades, &updates, &prevPrice, &havePrev)
		if remaining > 0 {
			remaining, filled = b.matchAtPrice(b.hidden, b.hiddenValidIDs, best, false, remaining, filled, &trades, &updates, &prevPrice, &havePrev)
		}
		if remaining == before {
			// no fill happened at best (e.g. the top resting entry has
			// zero quantity left); stop rather than spin.
			break
		}
	}

	incoming.Reduce(filled)

	events_ := make([]events.Event, 0, len(trades)+1)
	for _, t := range trades {
		events_ = append(events_, t)
	}
	if len(updates) > 0 {
		events_ = append(events_, b.wrap(updates))
	}
	return events_
}

// matchAtPrice consumes as much of remaining as possible against q's
// resting orders priced at exactly target, for either the visible queue
// (tracksDepth=true, mutates priceLevels and appends OrderUpdateInfo) or
// the hidden queue (tracksDepth=false, trades only).
func (b *Book) matchAtPrice(
	q *priceTimeQueue,
	valid map[int64]struct{},
	target price.Price,
	tracksDepth bool,
	remaining int64,
	filled int64,
	trades *[]events.Trade,
	updates *[]events.OrderUpdateInfo,
	prevPrice *price.Price,
	havePrev *bool,
) (int64, int64) {
	for remaining > 0 {
		top, ok := q.peek()
		if !ok {
			break
		}
		if _, live := valid[top.orderID]; !live {
			q.popTop()
			continue
		}
		if !top.price.Equal(target) {
			break
		}

		var restingQty *int64
		if tracksDepth {
			info := b.orderInfo[top.orderID]
			restingQty = &info.quantity
		} else {
			info := b.hiddenOrderInfo[top.orderID]
			restingQty = &info.quantity
		}

		fill := remaining
		if *restingQty < fill {
			fill = *restingQty
		}
		if fill <= 0 {
			break
		}

		remaining -= fill
		filled += fill
		*restingQty -= fill
		if tracksDepth {
			b.priceLevels[target] -= fill
		}

		*trades = append(*trades, events.Trade{Price: target, Quantity: fill})

		if *restingQty == 0 {
			q.popTop()
			delete(valid, top.orderID)
			if tracksDepth {
				delete(b.orderInfo, top.orderID)
				if b.priceLevels[target] <= 0 {
					delete(b.priceLevels, target)
				}
				if !*havePrev || !prevPrice.Equal(target) {
					*updates = append(*updates, events.OrderUpdateInfo{Price: target, Quantity: 0, Action: events.Delete})
					*prevPrice = target
					*havePrev = true
				}
			} else {
				delete(b.hiddenOrderInfo, top.orderID)
			}
		} else if tracksDepth {
			*updates = append(*updates, events.OrderUpdateInfo{Price: target, Quantity: b.priceLevels[target], Action: events.Modify})
			*prevPrice = target
			*havePrev = true
		}
	}
	return remaining, filled
}

// wrap packs update entries into a one-sided DepthUpdate for this book.
func (b *Book) wrap(updates []events.OrderUpdateInfo) events.DepthUpdate {
	if b.side == domain.Bid {
		return events.DepthUpdate{Bid: updates}
	}
	return events.DepthUpdate{Ask: updates}
}

// EODOrders drains the book for end-of-session persistence: every
// GoodTillCancel order still live is reassembled (icebergs from their
// visible/hidden halves) and returned; Day orders are discarded. All
// indexes are cleared.
func (b *Book) EODOrders() []domain.Order {
	var out []domain.Order

	displayCache := make(map[int64]domain.Order)
	for b.visible.Len() > 0 {
		e := b.visible.popTop()
		info, live := b.orderInfo[e.orderID]
		if !live {
			continue
		}
		if _, stillIceberg := b.hiddenValidIDs[e.orderID]; stillIceberg {
			displayCache[e.orderID] = domain.NewLimit(e.time, e.orderID, info.symbol, b.side, info.quantity, info.price, info.tif)
			continue
		}
		if info.tif == domain.GoodTillCancel {
			out = append(out, domain.NewLimit(e.time, e.orderID, info.symbol, b.side, info.quantity, info.price, info.tif))
		}
	}

	for b.hidden.Len() > 0 {
		e := b.hidden.popTop()
		hinfo, live := b.hiddenOrderInfo[e.orderID]
		if !live {
			continue
		}
		if _, stillValid := b.hiddenValidIDs[e.orderID]; !stillValid {
			continue
		}
		if hinfo.tif != domain.GoodTillCancel {
			continue
		}
		displayQty := int64(0)
		if d, ok := displayCache[e.orderID]; ok {
			displayQty = d.Quantity
		}
		out = append(out, domain.NewIceberg(e.time, e.orderID, hinfo.symbol, b.side, displayQty, hinfo.quantity, hinfo.price, hinfo.tif))
	}

	b.validIDs = make(map[int64]struct{})
	b.hiddenValidIDs = make(map[int64]struct{})
	b.priceLevels = make(map[price.Price]int64)
	b.orderInfo = make(map[int64]*visibleInfo)
	b.hiddenOrderInfo = make(map[int64]*hiddenInfo)

	return out
}

// PriceLevelsSnapshot lists every (price, quantity) in priceLevels, sorted
// descending for Bid and ascending for Ask — the session-open seed event.
func (b *Book) PriceLevelsSnapshot(symbol string) events.MarketSnap {
	levels := make([]events.OrderUpdateInfo, 0, len(b.priceLevels))
	for p, qty := range b.priceLevels {
		levels = append(levels, events.OrderUpdateInfo{Price: p, Quantity: qty, Action: events.Add})
	}
	sortLevels(levels, b.side)
	return events.MarketSnap{Symbol: symbol, Side: b.side.String(), Levels: levels}
}

func sortLevels(levels []events.OrderUpdateInfo, side domain.Side) {
	sort.Slice(levels, func(i, j int) bool {
		if side == domain.Bid {
			return levels[j].Price.Less(levels[i].Price)
		}
		return levels[i].Price.Less(levels[j].Price)
	})
}

// PriceLevels exposes a read-only view of the aggregate displayed
// quantity per price, for tests and diagnostics.
func (b *Book) PriceLevels() map[price.Price]int64 {
	out := make(map[price.Price]int64, len(b.priceLevels))
	for p, q := range b.priceLevels {
		out[p] = q
	}
	return out
}

// ValidOrderCount returns the number of currently-resting visible orders.
func (b *Book) ValidOrderCount() int { return len(b.validIDs) }

// HiddenRemaining returns the remaining hidden reserve for orderID, for
// tests.
func (b *Book) HiddenRemaining(orderID int64) (int64, bool) {
	info, ok := b.hiddenOrderInfo[orderID]
	if !ok {
		return 0, false
	}
	return info.quantity, true
}
