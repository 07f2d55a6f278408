package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBook(t *testing.T) *Book {
	t.Helper()
	return NewBook(1024)
}

// S1 — Duplicate rejected.
func TestAdd_DuplicateIDIsNoOp(t *testing.T) {
	b := newTestBook(t)

	trades, err := b.Add(GoodTillCancel, 1, Buy, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, 1, b.Size())

	trades, err = b.Add(GoodTillCancel, 1, Sell, 101, 5)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, 1, b.Size())
}

// S2 — Simple cross.
func TestAdd_SimpleCross(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 10)
	require.NoError(t, err)

	trades, err := b.Add(GoodTillCancel, 2, Sell, 100, 7)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Trade{
		Bid: Leg{ID: 1, Price: 100, Qty: 7},
		Ask: Leg{ID: 2, Price: 100, Qty: 7},
	}, trades[0])

	assert.Equal(t, 1, b.Size())
	price, qty, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, Price(100), price)
	assert.Equal(t, Quantity(3), qty)
}

// S3 — Price-time priority.
func TestAdd_PriceTimePriority(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 5)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 2, Buy, 100, 5)
	require.NoError(t, err)

	trades, err := b.Add(GoodTillCancel, 3, Sell, 100, 7)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, OrderID(1), trades[0].Bid.ID)
	assert.Equal(t, Quantity(5), trades[0].Bid.Qty)
	assert.Equal(t, OrderID(2), trades[1].Bid.ID)
	assert.Equal(t, Quantity(2), trades[1].Bid.Qty)

	assert.Equal(t, 1, b.Size())
	price, qty, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, Price(100), price)
	assert.Equal(t, Quantity(3), qty)
}

// S4 — FAK no-cross is dropped.
func TestAdd_FAKNoCrossDropped(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 99, 10)
	require.NoError(t, err)

	trades, err := b.Add(FillAndKill, 2, Sell, 100, 5)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.Equal(t, 1, b.Size())
}

// S5 — FAK partial then swept.
func TestAdd_FAKPartialThenSwept(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 4)
	require.NoError(t, err)

	trades, err := b.Add(FillAndKill, 2, Sell, 100, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Trade{
		Bid: Leg{ID: 1, Price: 100, Qty: 4},
		Ask: Leg{ID: 2, Price: 100, Qty: 4},
	}, trades[0])

	assert.Equal(t, 0, b.Size())
	_, _, ok := b.BestBid()
	assert.False(t, ok)
	_, _, ok = b.BestAsk()
	assert.False(t, ok)
}

// S6 — Cancel then modify preserves type, forfeits priority.
func TestModify_ForfeitsTimePriority(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 5)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 2, Buy, 100, 5)
	require.NoError(t, err)

	trades, err := b.Modify(1, Buy, 100, 5)
	require.NoError(t, err)
	assert.Empty(t, trades)

	trades, err = b.Add(GoodTillCancel, 3, Sell, 100, 5)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Trade{
		Bid: Leg{ID: 2, Price: 100, Qty: 5},
		Ask: Leg{ID: 3, Price: 100, Qty: 5},
	}, trades[0])

	assert.Equal(t, 1, b.Size())
	price, qty, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, Price(100), price)
	assert.Equal(t, Quantity(5), qty)
}

func TestCancel_UnknownIDIsNoOp(t *testing.T) {
	b := newTestBook(t)
	b.Cancel(42)
	assert.Equal(t, 0, b.Size())
}

func TestCancel_RoundTripRestoresSize(t *testing.T) {
	b := newTestBook(t)
	before := b.pool.acquired()

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Size())

	b.Cancel(1)
	assert.Equal(t, 0, b.Size())
	assert.Equal(t, before, b.pool.acquired())

	// second cancel is a no-op
	b.Cancel(1)
	assert.Equal(t, 0, b.Size())
}

func TestModify_UnknownIDReturnsEmpty(t *testing.T) {
	b := newTestBook(t)
	trades, err := b.Modify(99, Buy, 100, 1)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSnapshot_AggregatesAndOrders(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 99, 5)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 2, Buy, 100, 3)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 3, Buy, 100, 4)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 4, Sell, 105, 1)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 5, Sell, 103, 2)
	require.NoError(t, err)

	bids, asks := b.Snapshot(0)
	require.Len(t, bids, 2)
	assert.Equal(t, Level{Price: 100, Quantity: 7}, bids[0])
	assert.Equal(t, Level{Price: 99, Quantity: 5}, bids[1])

	require.Len(t, asks, 2)
	assert.Equal(t, Level{Price: 103, Quantity: 2}, asks[0])
	assert.Equal(t, Level{Price: 105, Quantity: 1}, asks[1])
}

func TestSnapshot_MaxLevelsCutoff(t *testing.T) {
	b := newTestBook(t)
	for i, price := range []Price{100, 99, 98} {
		_, err := b.Add(GoodTillCancel, OrderID(i+1), Buy, price, 1)
		require.NoError(t, err)
	}

	bids, _ := b.Snapshot(2)
	require.Len(t, bids, 2)
	assert.Equal(t, Price(100), bids[0].Price)
	assert.Equal(t, Price(99), bids[1].Price)
}

func TestAdd_NeverLeavesACrossedBook(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 3)
	require.NoError(t, err)
	_, err = b.Add(GoodTillCancel, 2, Sell, 105, 3)
	require.NoError(t, err)

	// Crosses the resting ask at 105 by submitting a bid at 110.
	trades, err := b.Add(GoodTillCancel, 3, Buy, 110, 2)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	bidPrice, _, bidOK := b.BestBid()
	askPrice, _, askOK := b.BestAsk()
	if bidOK && askOK {
		assert.Less(t, int32(bidPrice), int32(askPrice))
	}
}

func TestFAK_NeverRestsAfterAddReturns(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 4)
	require.NoError(t, err)

	_, err = b.Add(FillAndKill, 2, Sell, 100, 10)
	require.NoError(t, err)

	_, isResting := b.idIndex[2]
	assert.False(t, isResting)
}

// A FAK's own handle is swept directly rather than by re-inspecting
// queue position, so a partial fill is retired regardless of whether
// anything else happens to share its price level.
func TestFAK_PartialFillSweptByHandle(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Add(GoodTillCancel, 1, Buy, 100, 2)
	require.NoError(t, err)

	trades, err := b.Add(FillAndKill, 2, Sell, 100, 5)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, Quantity(2), trades[0].Ask.Qty)

	_, isResting := b.idIndex[2]
	assert.False(t, isResting, "the FAK order must not outlive the Add call that submitted it")
	assert.Equal(t, 0, b.Size())
}

func TestPoolAccounting_MatchesQuiescentSize(t *testing.T) {
	b := newTestBook(t)

	ids := []OrderID{1, 2, 3, 4}
	prices := []Price{100, 100, 101, 99}
	sides := []Side{Buy, Buy, Sell, Sell}
	for i := range ids {
		_, err := b.Add(GoodTillCancel, ids[i], sides[i], prices[i], 1)
		require.NoError(t, err)
	}

	assert.Equal(t, b.pool.acquired(), b.Size())
}

func TestOrderFill_OverdrawIsRejected(t *testing.T) {
	var o Order
	o.reset(GoodTillCancel, 1, Buy, 100, 5)

	err := o.fill(3)
	require.NoError(t, err)
	assert.Equal(t, Quantity(2), o.remainingQty)

	err = o.fill(10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFillOverdraw)
	assert.Equal(t, Quantity(2), o.remainingQty, "a rejected fill must not mutate remaining quantity")
}

func TestPool_ExhaustionAndAlienPointer(t *testing.T) {
	p := newPool[Order](1)

	h, _, err := p.acquire()
	require.NoError(t, err)

	_, _, err = p.acquire()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoolExhausted)

	require.NoError(t, p.release(h))

	err = p.release(handle(7))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlienPointer)

	err = p.release(h)
	require.Error(t, err, "double release must be rejected")
	assert.ErrorIs(t, err, ErrAlienPointer)
}
