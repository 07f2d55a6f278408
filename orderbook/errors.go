package orderbook

import "errors"

// Fatal invariant violations per §7. These are never expected in
// normal operation; callers that see one returned from Book should
// treat it as a programming bug and escalate (the core itself never
// calls os.Exit — see SPEC_FULL.md's ambient logging section).
var (
	// ErrPoolExhausted is returned when the object pool has no free
	// slots left to acquire (§4.B).
	ErrPoolExhausted = errors.New("orderbook: pool exhausted")

	// ErrAlienPointer is returned when a pool handle falls outside the
	// backing slab, or is released twice (§4.B).
	ErrAlienPointer = errors.New("orderbook: alien pointer")

	// ErrFillOverdraw is returned when a fill would drive an order's
	// remaining quantity negative (§4.A). The matching loop never
	// constructs such a fill; seeing this means the invariant that
	// fill quantity is always min(bid.remaining, ask.remaining) broke.
	ErrFillOverdraw = errors.New("orderbook: fill exceeds remaining quantity")
)
