package orderbook

import "github.com/google/btree"

// btreeDegree mirrors the degree used by the pack's CEX-style book
// side (VictorVVedtion-perp-dex orderbook_btree.go): a wide branching
// factor keeps the tree shallow and cache-friendly for the hot "reach
// the best price" path (§9 "Ordered map of price levels").
const btreeDegree = 32

// priceEntry is the btree element: a price and the FIFO resting there.
type priceEntry struct {
	price Price
	level *priceLevel
}

// bookSide is an ordered price -> priceLevel map (§3 "Book side"). The
// less function encodes direction: bid sides order descending by real
// price, ask sides ascending, so Min()/Ascend() always walk best-first
// regardless of which side they belong to.
type bookSide struct {
	tree *btree.BTreeG[priceEntry]
}

func newBookSide(descending bool) *bookSide {
	less := func(a, b priceEntry) bool {
		if descending {
			return a.price > b.price
		}
		return a.price < b.price
	}
	return &bookSide{tree: btree.NewG(btreeDegree, less)}
}

func (s *bookSide) get(price Price) *priceLevel {
	entry, ok := s.tree.Get(priceEntry{price: price})
	if !ok {
		return nil
	}
	return entry.level
}

func (s *bookSide) getOrCreate(price Price) *priceLevel {
	if lvl := s.get(price); lvl != nil {
		return lvl
	}
	lvl := newPriceLevel()
	s.tree.ReplaceOrInsert(priceEntry{price: price, level: lvl})
	return lvl
}

// remove erases a price's level from the side. Called only once the
// level is empty — no empty level is ever stored (§3, §8 property 2).
func (s *bookSide) remove(price Price) {
	s.tree.Delete(priceEntry{price: price})
}

// best returns the top-of-book price and level for this side, best
// meaning highest for bids and lowest for asks.
func (s *bookSide) best() (Price, *priceLevel, bool) {
	entry, ok := s.tree.Min()
	if !ok {
		return 0, nil, false
	}
	return entry.price, entry.level, true
}

func (s *bookSide) empty() bool {
	return s.tree.Len() == 0
}

func (s *bookSide) len() int {
	return s.tree.Len()
}

// ascend walks every level best-first, stopping early if fn returns false.
func (s *bookSide) ascend(fn func(price Price, lvl *priceLevel) bool) {
	s.tree.Ascend(func(entry priceEntry) bool {
		return fn(entry.price, entry.level)
	})
}
