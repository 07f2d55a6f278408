package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevel_PushPopFIFO(t *testing.T) {
	p := newPool[Order](4)
	lvl := newPriceLevel()
	assert.True(t, lvl.empty())

	var handles []handle
	for i := 0; i < 3; i++ {
		h, o, err := p.acquire()
		require.NoError(t, err)
		o.reset(GoodTillCancel, OrderID(i), Buy, 100, 1)
		lvl.pushBack(p, h)
		handles = append(handles, h)
	}

	assert.Equal(t, 3, lvl.size)
	assert.Equal(t, handles[0], lvl.front())

	got := lvl.popFront(p)
	assert.Equal(t, handles[0], got)
	assert.Equal(t, 2, lvl.size)
	assert.Equal(t, handles[1], lvl.front())
}

func TestPriceLevel_RemoveMiddleSplices(t *testing.T) {
	p := newPool[Order](4)
	lvl := newPriceLevel()

	var handles []handle
	for i := 0; i < 3; i++ {
		h, o, err := p.acquire()
		require.NoError(t, err)
		o.reset(GoodTillCancel, OrderID(i), Buy, 100, 1)
		lvl.pushBack(p, h)
		handles = append(handles, h)
	}

	lvl.remove(p, handles[1])
	assert.Equal(t, 2, lvl.size)

	var seen []handle
	lvl.forEach(p, func(o *Order) bool {
		seen = append(seen, 0) // placeholder to keep closure shape readable
		return true
	})
	assert.Len(t, seen, 2)

	assert.Equal(t, handles[0], lvl.front())
	got := lvl.popFront(p)
	assert.Equal(t, handles[0], got)
	got = lvl.popFront(p)
	assert.Equal(t, handles[2], got)
	assert.True(t, lvl.empty())
}

func TestPriceLevel_QuantitySumsRemaining(t *testing.T) {
	p := newPool[Order](4)
	lvl := newPriceLevel()

	for i, qty := range []Quantity{3, 4, 5} {
		h, o, err := p.acquire()
		require.NoError(t, err)
		o.reset(GoodTillCancel, OrderID(i), Buy, 100, qty)
		lvl.pushBack(p, h)
	}

	assert.Equal(t, Quantity(12), lvl.quantity(p))
}
