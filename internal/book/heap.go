package book

import (
	"container/heap"

	"github.com/abdoElHodaky/tradsys-lob/internal/domain"
	"github.com/abdoElHodaky/tradsys-lob/internal/price"
)

// entry is the only thing a priority queue carries: enough to order by
// price-time priority and to look an order up in the authoritative
// order-info map. Mutable state (remaining quantity) never lives here —
// see spec.md §9's "Shared pointers to orders" redesign note.
type entry struct {
	price   price.Price
	time    int64
	orderID int64
}

// priceTimeQueue is a container/heap.Interface ordered for one side. Bid
// prefers higher price then earlier time; Ask prefers lower price then
// earlier time.
type priceTimeQueue struct {
	side  domain.Side
	items []entry
}

func newQueue(side domain.Side) *priceTimeQueue {
	return &priceTimeQueue{side: side}
}

func (q *priceTimeQueue) Len() int { return len(q.items) }

func (q *priceTimeQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.price.Equal(b.price) {
		return a.time < b.time
	}
	if q.side == domain.Bid {
		return b.price.Less(a.price)
	}
	return a.price.Less(b.price)
}

func (q *priceTimeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *priceTimeQueue) Push(x interface{}) { q.items = append(q.items, x.(entry)) }

func (q *priceTimeQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

func (q *priceTimeQueue) peek() (entry, bool) {
	if len(q.items) == 0 {
		return entry{}, false
	}
	return q.items[0], true
}

func (q *priceTimeQueue) push(e entry) { heap.Push(q, e) }

func (q *priceTimeQueue) popTop() entry { return heap.Pop(q).(entry) }
