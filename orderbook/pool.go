package orderbook

import pkgerrors "github.com/pkg/errors"

// pool is the fixed-capacity slab described in spec §4.B: O(1)
// acquire/release of T by stable index, no heap traffic per event.
// Capacity is fixed at construction and never grows — latency stays
// tied to a predictable memory footprint (§3 "Object pool").
type pool[T any] struct {
	slots []T
	free  []int32 // stack; free[:top] holds indices available for reuse
	live  []bool  // liveness bitmap — not required by §4.B but cheap double-release detection
	top   int
}

func newPool[T any](capacity int) *pool[T] {
	free := make([]int32, capacity)
	for i := range free {
		free[i] = int32(i)
	}
	return &pool[T]{
		slots: make([]T, capacity),
		free:  free,
		live:  make([]bool, capacity),
		top:   capacity,
	}
}

// acquire pops a free index and returns a stable handle plus a pointer
// to the (stale, caller-must-reinitialize) slot at that index.
func (p *pool[T]) acquire() (handle, *T, error) {
	if p.top == 0 {
		return nilHandle, nil, pkgerrors.WithStack(ErrPoolExhausted)
	}
	p.top--
	idx := p.free[p.top]
	p.live[idx] = true
	return handle(idx), &p.slots[idx], nil
}

// release returns the slot at h to the free stack. An out-of-range or
// already-free handle is an AlienPointer: a caller/implementation bug,
// not a recoverable condition (§7).
func (p *pool[T]) release(h handle) error {
	idx := int32(h)
	if idx < 0 || int(idx) >= len(p.slots) {
		return pkgerrors.WithStack(ErrAlienPointer)
	}
	if !p.live[idx] {
		return pkgerrors.WithStack(ErrAlienPointer)
	}
	p.live[idx] = false
	p.free[p.top] = idx
	p.top++
	return nil
}

func (p *pool[T]) get(h handle) *T {
	return &p.slots[h]
}

// acquired reports the current count of outstanding (non-free) slots —
// used by callers checking §8 property 5 (acquired − released == size()).
func (p *pool[T]) acquired() int {
	return len(p.slots) - p.top
}

func (p *pool[T]) capacity() int {
	return len(p.slots)
}
