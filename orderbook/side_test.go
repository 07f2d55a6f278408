package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookSide_BidOrdersDescending(t *testing.T) {
	s := newBookSide(true)
	for _, price := range []Price{100, 105, 95} {
		s.getOrCreate(price)
	}

	var seen []Price
	s.ascend(func(price Price, lvl *priceLevel) bool {
		seen = append(seen, price)
		return true
	})
	assert.Equal(t, []Price{105, 100, 95}, seen)

	best, _, ok := s.best()
	require.True(t, ok)
	assert.Equal(t, Price(105), best)
}

func TestBookSide_AskOrdersAscending(t *testing.T) {
	s := newBookSide(false)
	for _, price := range []Price{100, 105, 95} {
		s.getOrCreate(price)
	}

	var seen []Price
	s.ascend(func(price Price, lvl *priceLevel) bool {
		seen = append(seen, price)
		return true
	})
	assert.Equal(t, []Price{95, 100, 105}, seen)

	best, _, ok := s.best()
	require.True(t, ok)
	assert.Equal(t, Price(95), best)
}

func TestBookSide_RemoveEmptiesAndReportsEmpty(t *testing.T) {
	s := newBookSide(true)
	s.getOrCreate(100)
	assert.False(t, s.empty())

	s.remove(100)
	assert.True(t, s.empty())
	assert.Nil(t, s.get(100))
}
