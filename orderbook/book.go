// Package orderbook implements a single-symbol, single-threaded
// price-time-priority limit order book and matching engine: the
// price-indexed FIFO book structure, the bid/ask crossing algorithm,
// the fixed-capacity order pool, and the intrusive per-price FIFO
// (spec §2). All public methods are synchronous and must be
// serialised by the caller (§5) — there is no internal locking.
package orderbook

import (
	bookmetrics "github.com/WataHata/OrderTradeBook/orderbook/metrics"
	"go.uber.org/zap"
)

// Book is the order book for one symbol (component D). It owns the
// order pool, the two price-ordered sides, and the id -> handle index
// that makes cancel O(1).
type Book struct {
	pool    *pool[Order]
	bids    *bookSide
	asks    *bookSide
	idIndex map[OrderID]handle

	restingCount [2]int // indexed by Side; avoids an O(n) scan per event for gauges

	logger  *zap.Logger
	metrics *bookmetrics.Collector
}

// Option configures optional collaborators on a Book.
type Option func(*Book)

// WithLogger attaches a zap logger for fatal-invariant diagnostics. A
// nil logger is ignored; Books default to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithMetrics attaches a Prometheus collector. Passing nil (the
// default) disables instrumentation entirely; every Collector method
// is nil-receiver safe, so Book never branches on whether metrics is set.
func WithMetrics(c *bookmetrics.Collector) Option {
	return func(b *Book) { b.metrics = c }
}

// NewBook constructs a Book whose order pool holds at most capacity
// resting orders at once (§3 "Object pool": reference configurations
// use 10^5-10^6).
func NewBook(capacity int, opts ...Option) *Book {
	b := &Book{
		pool:    newPool[Order](capacity),
		bids:    newBookSide(true),
		asks:    newBookSide(false),
		idIndex: make(map[OrderID]handle, capacity),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Size is the current count of resting orders (§6).
func (b *Book) Size() int {
	return len(b.idIndex)
}

// sideOf returns the bookSide and its companion Prometheus label for s.
func (b *Book) sideOf(s Side) (*bookSide, string) {
	if s == Buy {
		return b.bids, "buy"
	}
	return b.asks, "sell"
}

// Add submits a new order per spec §4.D. A duplicate id is a silent
// no-op; a FillAndKill order that cannot immediately cross is dropped
// without resting. Returns the trades produced by the ensuing match.
func (b *Book) Add(orderType OrderType, id OrderID, side Side, price Price, qty Quantity) ([]Trade, error) {
	if _, exists := b.idIndex[id]; exists {
		return nil, nil
	}

	if orderType == FillAndKill && !b.canMatch(side, price) {
		_, label := b.sideOf(side)
		b.metrics.RecordOrder(label, orderType.String(), "dropped")
		return nil, nil
	}

	h, order, err := b.pool.acquire()
	if err != nil {
		b.logger.Error("order pool exhausted", zap.Uint64("order_id", uint64(id)), zap.Error(err))
		return nil, err
	}
	order.reset(orderType, id, side, price, qty)

	s, label := b.sideOf(side)
	lvl := s.getOrCreate(price)
	lvl.pushBack(b.pool, h)
	b.idIndex[id] = h
	b.restingCount[side]++
	b.metrics.RecordOrder(label, orderType.String(), "accepted")
	b.updateGauges()

	trades, err := b.match()
	if err != nil {
		return trades, err
	}

	// A Fill-And-Kill order never rests past the Add call that
	// submitted it (§4.D); sweep it by the handle already in hand
	// rather than re-deriving its position from the book.
	if orderType == FillAndKill {
		if _, stillResting := b.idIndex[id]; stillResting {
			b.detachAndRelease(order, h)
			b.metrics.RecordOrder(label, orderType.String(), "swept")
			b.updateGauges()
		}
	}

	return trades, nil
}

// Cancel removes a resting order. An unknown id is a silent no-op (§4.D).
func (b *Book) Cancel(id OrderID) {
	h, ok := b.idIndex[id]
	if !ok {
		return
	}
	order := b.pool.get(h)
	b.detachAndRelease(order, h)
	_, label := b.sideOf(order.side)
	b.metrics.RecordOrder(label, order.orderType.String(), "cancelled")
	b.updateGauges()
}

// Modify cancels the existing order and resubmits it with the new
// side/price/quantity, preserving the original order type but
// forfeiting time priority (§4.D) — the re-submission lands at the
// tail of its target level via Add.
func (b *Book) Modify(id OrderID, side Side, price Price, qty Quantity) ([]Trade, error) {
	h, ok := b.idIndex[id]
	if !ok {
		return nil, nil
	}
	orderType := b.pool.get(h).orderType
	b.Cancel(id)
	return b.Add(orderType, id, side, price, qty)
}

// Snapshot aggregates resting quantity by price level, best-first:
// bids descending, asks ascending (§6). maxLevels caps how many levels
// of each side are returned; 0 means unbounded.
func (b *Book) Snapshot(maxLevels int) (bids []Level, asks []Level) {
	bids = b.snapshotSide(b.bids, maxLevels)
	asks = b.snapshotSide(b.asks, maxLevels)
	return
}

func (b *Book) snapshotSide(s *bookSide, maxLevels int) []Level {
	var out []Level
	s.ascend(func(price Price, lvl *priceLevel) bool {
		out = append(out, Level{Price: price, Quantity: lvl.quantity(b.pool)})
		return maxLevels <= 0 || len(out) < maxLevels
	})
	return out
}

// BestBid returns the highest resting bid price and its aggregated
// quantity, or ok=false if the bid side is empty.
func (b *Book) BestBid() (price Price, qty Quantity, ok bool) {
	p, lvl, found := b.bids.best()
	if !found {
		return 0, 0, false
	}
	return p, lvl.quantity(b.pool), true
}

// BestAsk is the ask-side analogue of BestBid.
func (b *Book) BestAsk() (price Price, qty Quantity, ok bool) {
	p, lvl, found := b.asks.best()
	if !found {
		return 0, 0, false
	}
	return p, lvl.quantity(b.pool), true
}

// canMatch is the CanMatch peek predicate of §4.D: whether an order of
// the given side/price would cross the book immediately.
func (b *Book) canMatch(side Side, price Price) bool {
	if side == Buy {
		askPrice, _, ok := b.asks.best()
		return ok && price >= askPrice
	}
	bidPrice, _, ok := b.bids.best()
	return ok && price <= bidPrice
}

// detachAndRelease splices order out of its FIFO, erasing the level if
// it becomes empty, drops it from the id index, and returns its slot
// to the pool. This triple is always co-located (§9 "No cross-level
// ownership").
func (b *Book) detachAndRelease(order *Order, h handle) {
	s, _ := b.sideOf(order.side)
	lvl := s.get(order.price)
	if lvl != nil {
		lvl.remove(b.pool, h)
		if lvl.empty() {
			s.remove(order.price)
		}
	}
	delete(b.idIndex, order.id)
	b.restingCount[order.side]--
	if err := b.pool.release(h); err != nil {
		b.logger.Error("release of a live order handle failed", zap.Uint64("order_id", uint64(order.id)), zap.Error(err))
	}
}

// match runs the MatchOrders loop of spec §4.D to completion: crossing
// bid/ask levels best-price-first, consuming each level's FIFO head
// first, until neither side's best crosses the other's.
func (b *Book) match() ([]Trade, error) {
	timer := b.metrics.NewTimer()
	defer timer.Stop()

	var trades []Trade

	for {
		bidPrice, bidLvl, bidOK := b.bids.best()
		askPrice, askLvl, askOK := b.asks.best()
		if !bidOK || !askOK || bidPrice < askPrice {
			break
		}

		for !bidLvl.empty() && !askLvl.empty() {
			bidH, askH := bidLvl.front(), askLvl.front()
			bid, ask := b.pool.get(bidH), b.pool.get(askH)

			q := bid.remainingQty
			if ask.remainingQty < q {
				q = ask.remainingQty
			}

			if err := bid.fill(q); err != nil {
				b.logger.DPanic("fill overdraw on bid leg", zap.Error(err))
				return trades, err
			}
			if err := ask.fill(q); err != nil {
				b.logger.DPanic("fill overdraw on ask leg", zap.Error(err))
				return trades, err
			}

			trade := Trade{
				Bid: Leg{ID: bid.id, Price: bid.price, Qty: q},
				Ask: Leg{ID: ask.id, Price: ask.price, Qty: q},
			}

			if bid.isFilled() {
				bidLvl.popFront(b.pool)
				delete(b.idIndex, bid.id)
				b.restingCount[Buy]--
				if err := b.pool.release(bidH); err != nil {
					b.logger.Error("release of filled bid failed", zap.Error(err))
				}
			}
			if ask.isFilled() {
				askLvl.popFront(b.pool)
				delete(b.idIndex, ask.id)
				b.restingCount[Sell]--
				if err := b.pool.release(askH); err != nil {
					b.logger.Error("release of filled ask failed", zap.Error(err))
				}
			}

			trades = append(trades, trade)
			b.metrics.RecordTrade(uint32(q))

			if bidLvl.empty() {
				b.bids.remove(bidPrice)
			}
			if askLvl.empty() {
				b.asks.remove(askPrice)
			}
			if bidLvl.empty() || askLvl.empty() {
				break
			}
		}
	}

	b.updateGauges()

	return trades, nil
}

func (b *Book) updateGauges() {
	b.metrics.SetResting("buy", b.restingCount[Buy])
	b.metrics.SetResting("sell", b.restingCount[Sell])
	b.metrics.SetDepth("buy", b.bids.len())
	b.metrics.SetDepth("sell", b.asks.len())
}
