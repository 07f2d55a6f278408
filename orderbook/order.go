package orderbook

import pkgerrors "github.com/pkg/errors"

// handle is a stable reference to a slot in an object pool (§4.B, §9
// "arena + stable indices"). nilHandle plays the role of a null
// intrusive-list pointer.
type handle int32

const nilHandle handle = -1

// Order is the intrusive FIFO node (§3, §4.A): identity and mutable
// remaining quantity, plus the prev/next links owned by whichever
// PriceLevel currently holds it. A slot is re-initialized in place each
// time the pool hands it out, so Order carries no per-instance heap
// allocation across its lifetime.
type Order struct {
	id           OrderID
	side         Side
	orderType    OrderType
	price        Price
	initialQty   Quantity
	remainingQty Quantity
	prev, next   handle
}

func (o *Order) reset(orderType OrderType, id OrderID, side Side, price Price, qty Quantity) {
	o.id = id
	o.side = side
	o.orderType = orderType
	o.price = price
	o.initialQty = qty
	o.remainingQty = qty
	o.prev = nilHandle
	o.next = nilHandle
}

// fill reduces the remaining quantity by q. A caller ever passing
// q > remainingQty is a programming error (§7); it returns a wrapped
// ErrFillOverdraw instead of corrupting remainingQty so the caller can
// log and escalate.
func (o *Order) fill(q Quantity) error {
	if q > o.remainingQty {
		return pkgerrors.Wrapf(ErrFillOverdraw, "order %d: fill %d exceeds remaining %d", o.id, q, o.remainingQty)
	}
	o.remainingQty -= q
	return nil
}

func (o *Order) isFilled() bool {
	return o.remainingQty == 0
}
