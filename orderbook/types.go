package orderbook

// Side identifies which side of the book an order rests on.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// OrderType selects the order's resting behaviour per spec §3.
type OrderType uint8

const (
	// GoodTillCancel rests until fully matched or explicitly cancelled.
	GoodTillCancel OrderType = iota
	// FillAndKill executes whatever crosses immediately and never rests.
	FillAndKill
)

func (t OrderType) String() string {
	if t == GoodTillCancel {
		return "GTC"
	}
	return "FAK"
}

// Price is venue-defined ticks, signed per spec §3.
type Price int32

// Quantity is a resting or traded size.
type Quantity uint32

// OrderID is externally supplied and unique across the book's lifetime.
type OrderID uint64

// Leg is one side of an executed Trade.
type Leg struct {
	ID    OrderID
	Price Price
	Qty   Quantity
}

// Trade records a single match between a resting/incoming bid and ask.
// The bid and ask legs carry distinct prices (§4.D "Tie-breaks and
// ordering contracts"): which one a caller prints as the clearing price
// is a venue policy this core does not decide.
type Trade struct {
	Bid Leg
	Ask Leg
}

// Level is one aggregated price point, as returned by Book.Snapshot.
type Level struct {
	Price    Price
	Quantity Quantity
}
