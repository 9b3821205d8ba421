package engine

// Pool is a bounded free-list of Particle records plus an active counter.
// Acquire and Release run once per particle per frame, so both are O(1)
// and allocation-free whenever the free list is non-empty. Records
// released while the free list is at its bound are dropped and collected
// normally rather than pooled.
type Pool struct {
	free    []*Particle
	maxFree int
	active  int
}

// NewPool creates a pool whose free list holds at most maxFree records.
func NewPool(maxFree int) *Pool {
	if maxFree <= 0 {
		maxFree = DefaultConfig().PoolBound
	}
	return &Pool{
		free:    make([]*Particle, 0, maxFree),
		maxFree: maxFree,
	}
}

// Prewarm manufactures and enqueues n fresh records with default field
// values, capped at the free-list bound. Side effect only.
func (pl *Pool) Prewarm(n int) {
	for i := 0; i < n && len(pl.free) < pl.maxFree; i++ {
		p := &Particle{}
		p.reset()
		pl.free = append(pl.free, p)
	}
}

// Acquire pops a record from the free list, or manufactures a new one on
// exhaustion. Never fails. The returned record always carries default
// field values; the caller's Spawn is expected to overwrite them.
func (pl *Pool) Acquire() *Particle {
	pl.active++
	if n := len(pl.free); n > 0 {
		p := pl.free[n-1]
		pl.free[n-1] = nil
		pl.free = pl.free[:n-1]
		p.reset()
		return p
	}
	p := &Particle{}
	p.reset()
	return p
}

// Release returns a record to the free list, or drops it when the list is
// already at its bound. Safe to call at capacity.
func (pl *Pool) Release(p *Particle) {
	if p == nil {
		return
	}
	if pl.active > 0 {
		pl.active--
	}
	if len(pl.free) >= pl.maxFree {
		return
	}
	p.reset()
	pl.free = append(pl.free, p)
}

// ActiveCount returns the number of records handed out and not yet released.
func (pl *Pool) ActiveCount() int {
	return pl.active
}

// FreeCount returns the current free-list size.
func (pl *Pool) FreeCount() int {
	return len(pl.free)
}
