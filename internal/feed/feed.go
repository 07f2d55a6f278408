// Package feed is the synthetic workload generator the spec calls out
// as an external collaborator (§1 "treated as external collaborators:
// ... synthetic workload generators"). It is adapted from the teacher
// repo's GenerateRandomOrder/cancelChance (types.go, db.go), rewired to
// emit orderbook.Book events instead of populating a Postgres table.
package feed

import (
	"math/rand"

	"github.com/WataHata/OrderTradeBook/orderbook"
)

// Kind distinguishes the two event shapes a Generator can emit. Modify
// is left to callers that want to exercise Book.Modify directly; the
// generator itself only ever produces New/Cancel, mirroring the
// teacher's feed.
type Kind uint8

const (
	New Kind = iota
	Cancel
)

// Event is one entry in a synthetic order stream.
type Event struct {
	Kind      Kind
	OrderType orderbook.OrderType
	ID        orderbook.OrderID
	Side      orderbook.Side
	Price     orderbook.Price
	Qty       orderbook.Quantity
}

// Config controls the shape of the generated feed.
type Config struct {
	Seed int64

	MinPrice, MaxPrice orderbook.Price
	MaxQty             orderbook.Quantity

	// CancelChance is the probability (0..1) that a generated event is
	// a cancel of a previously generated order that this generator has
	// not already cancelled (it may have been filled or swept by the
	// book meanwhile) rather than a new order. The teacher hardcodes
	// this at 0.05.
	CancelChance float64

	// FAKChance is the probability (0..1) that a new order is
	// Fill-And-Kill rather than Good-Till-Cancel. Not present in the
	// teacher (which only ever generated one order type); added so the
	// harness can exercise both order types from spec §3.
	FAKChance float64
}

// Generator produces a reproducible stream of orderbook.Events.
type Generator struct {
	cfg    Config
	rng    *rand.Rand
	nextID orderbook.OrderID
	live   []orderbook.OrderID
}

func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Next produces the next event in the stream.
func (g *Generator) Next() Event {
	if len(g.live) > 0 && g.rng.Float64() < g.cfg.CancelChance {
		idx := g.rng.Intn(len(g.live))
		id := g.live[idx]
		g.live = append(g.live[:idx], g.live[idx+1:]...)
		return Event{Kind: Cancel, ID: id}
	}

	g.nextID++
	id := g.nextID

	orderType := orderbook.GoodTillCancel
	if g.rng.Float64() < g.cfg.FAKChance {
		orderType = orderbook.FillAndKill
	}

	side := orderbook.Buy
	if g.rng.Intn(2) == 1 {
		side = orderbook.Sell
	}

	priceRange := int32(g.cfg.MaxPrice - g.cfg.MinPrice)
	price := g.cfg.MinPrice
	if priceRange > 0 {
		price += orderbook.Price(g.rng.Int31n(priceRange + 1))
	}

	qty := orderbook.Quantity(1)
	if g.cfg.MaxQty > 1 {
		qty = orderbook.Quantity(g.rng.Intn(int(g.cfg.MaxQty))) + 1
	}

	// Tracked regardless of order type: a FAK that partially fills is
	// swept by the book itself, so a later Cancel of its id is just
	// another no-op (spec §4.D) rather than a bug in the generator.
	g.live = append(g.live, id)

	return Event{
		Kind:      New,
		OrderType: orderType,
		ID:        id,
		Side:      side,
		Price:     price,
		Qty:       qty,
	}
}
