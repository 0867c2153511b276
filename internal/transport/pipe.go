package transport

import (
	"math/rand"
	"sync"
)

// FaultPlan describes the unreliability of one transmit direction.
// Rates are probabilities in [0, 1] applied per transmitted frame.
type FaultPlan struct {
	DropRate    float64
	CorruptRate float64
}

// Endpoint is one side of an in-memory channel. Transmit hands bytes
// to the peer's bound sink after applying the fault plan, so it
// satisfies the link-layer transport contract.
type Endpoint struct {
	mu     sync.Mutex
	peer   *Endpoint
	sink   func(p []byte)
	faults FaultPlan
	rng    *rand.Rand

	sent      int
	dropped   int
	corrupted int
}

// Pair returns two connected endpoints with perfect delivery.
func Pair() (*Endpoint, *Endpoint) {
	a := &Endpoint{}
	b := &Endpoint{}
	a.peer = b
	b.peer = a
	return a, b
}

// Bind registers the receiver for bytes arriving at this endpoint.
func (e *Endpoint) Bind(sink func(p []byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
}

// SetFaults installs a fault plan for frames transmitted from this
// endpoint. rng drives the fault decisions; pass a seeded source for
// reproducible runs.
func (e *Endpoint) SetFaults(plan FaultPlan, rng *rand.Rand) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faults = plan
	e.rng = rng
}

// Transmit delivers p to the peer, possibly dropped or with one bit
// flipped per the fault plan. Delivery is synchronous and
// fire-and-forget; there is no error path, matching a lossy wire.
func (e *Endpoint) Transmit(p []byte) {
	e.mu.Lock()
	e.sent++
	plan, rng := e.faults, e.rng
	if rng != nil && plan.DropRate > 0 && rng.Float64() < plan.DropRate {
		e.dropped++
		e.mu.Unlock()
		return
	}
	out := append([]byte(nil), p...)
	if rng != nil && plan.CorruptRate > 0 && len(out) > 0 && rng.Float64() < plan.CorruptRate {
		e.corrupted++
		out[rng.Intn(len(out))] ^= 1 << rng.Intn(8)
	}
	peer := e.peer
	e.mu.Unlock()

	peer.deliver(out)
}

func (e *Endpoint) deliver(p []byte) {
	e.mu.Lock()
	sink := e.sink
	e.mu.Unlock()
	if sink != nil {
		sink(p)
	}
}

// Stats reports transmit-side counters: frames offered, dropped, and
// corrupted.
func (e *Endpoint) Stats() (sent, dropped, corrupted int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent, e.dropped, e.corrupted
}
