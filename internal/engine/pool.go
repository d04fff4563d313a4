package engine

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/abdoElHodaky/tradsys-lob/internal/events"
	"github.com/abdoElHodaky/tradsys-lob/internal/transport"
)

// Pool dispatches commands for disjoint symbols concurrently, one
// ants worker slot class per symbol, per spec.md §5's "natural unit of
// isolation is the (symbol, side) pair". A NEW command still executes as
// one atomic call into MatchingEngine.Process, which itself locks nothing
// beyond the single (symbol, bid)/(symbol, ask) books it touches; callers
// must not submit commands for the same symbol concurrently through two
// different Pool.Submit calls without waiting for the first's result.
type Pool struct {
	engine *MatchingEngine
	logger *zap.Logger

	workers *ants.Pool
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewPool builds a bounded dispatch pool of size workers.
func NewPool(e *MatchingEngine, size int, logger *zap.Logger) (*Pool, error) {
	workers, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Pool{
		engine:  e,
		logger:  logger,
		workers: workers,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

func (p *Pool) lockFor(symbol string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[symbol]
	if !ok {
		l = &sync.Mutex{}
		p.locks[symbol] = l
	}
	return l
}

// Submit dispatches payload to the pool, serializing only commands that
// share a symbol; results arrive on the returned channel.
func (p *Pool) Submit(payload transport.CommandPayload) <-chan []events.Event {
	out := make(chan []events.Event, 1)
	symLock := p.lockFor(payload.Symbol)

	err := p.workers.Submit(func() {
		symLock.Lock()
		defer symLock.Unlock()
		out <- p.engine.Process(payload)
	})
	if err != nil {
		p.logger.Warn("pool submit failed, running inline", zap.Error(err))
		symLock.Lock()
		out <- p.engine.Process(payload)
		symLock.Unlock()
	}
	return out
}

// Release shuts down the worker pool.
func (p *Pool) Release() { p.workers.Release() }
