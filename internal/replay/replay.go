// Package replay is the optional Postgres-backed event log the
// harness can use to persist a generated feed and its resulting
// trades, adapted from the teacher's db.go (ResetSchema, FillTestData,
// FetchOrders, PersistDeals). It is never imported by the orderbook
// core: persistence is a Non-goal of the matching engine itself (spec
// §1), but a caller replaying recorded events against the core is
// exactly the "event-source loop" the spec treats as an external
// collaborator.
package replay

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/WataHata/OrderTradeBook/internal/feed"
	"github.com/WataHata/OrderTradeBook/orderbook"
)

// schemaDDL mirrors the teacher's orders/deals tables, adapted to the
// event/trade shapes this repo works with instead of the teacher's
// flat Order struct.
const schemaDDL = `
	DROP TABLE IF EXISTS lob_events CASCADE;
	CREATE TABLE lob_events (
		seq         bigserial primary key,
		kind        smallint NOT NULL,
		order_type  smallint NOT NULL,
		order_id    bigint NOT NULL,
		side        smallint NOT NULL,
		price       integer NOT NULL,
		qty         integer NOT NULL
	) WITH (fillfactor=90);

	DROP TABLE IF EXISTS lob_trades CASCADE;
	CREATE TABLE lob_trades (
		seq        bigserial primary key,
		bid_id     bigint NOT NULL,
		ask_id     bigint NOT NULL,
		bid_price  integer NOT NULL,
		ask_price  integer NOT NULL,
		qty        integer NOT NULL
	);
`

// ResetSchema drops and recreates the event-log tables.
func ResetSchema(db *sql.DB) error {
	_, err := db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("replay: reset schema: %w", err)
	}
	return nil
}

// PersistEvents bulk-loads a generated feed via COPY, the same
// pq.CopyIn idiom the teacher's FillTestData uses.
func PersistEvents(tx *sql.Tx, events []feed.Event) error {
	stmt, err := tx.Prepare(pq.CopyIn("lob_events", "kind", "order_type", "order_id", "side", "price", "qty"))
	if err != nil {
		return fmt.Errorf("replay: prepare event copy: %w", err)
	}

	for _, e := range events {
		if _, err := stmt.Exec(int(e.Kind), int(e.OrderType), int64(e.ID), int(e.Side), int32(e.Price), int32(e.Qty)); err != nil {
			return fmt.Errorf("replay: copy event: %w", err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("replay: flush event copy: %w", err)
	}
	return stmt.Close()
}

const fetchEventsSQL = `
	SELECT kind, order_type, order_id, side, price, qty
	FROM lob_events ORDER BY seq ASC
`

// FetchEvents reads back a previously persisted feed in submission order.
func FetchEvents(tx *sql.Tx) ([]feed.Event, error) {
	rows, err := tx.Query(fetchEventsSQL)
	if err != nil {
		return nil, fmt.Errorf("replay: fetch events: %w", err)
	}
	defer rows.Close()

	var events []feed.Event
	for rows.Next() {
		var (
			kind, orderType, side int
			orderID               int64
			price, qty            int32
		)
		if err := rows.Scan(&kind, &orderType, &orderID, &side, &price, &qty); err != nil {
			return nil, fmt.Errorf("replay: scan event: %w", err)
		}
		events = append(events, feed.Event{
			Kind:      feed.Kind(kind),
			OrderType: orderbook.OrderType(orderType),
			ID:        orderbook.OrderID(orderID),
			Side:      orderbook.Side(side),
			Price:     orderbook.Price(price),
			Qty:       orderbook.Quantity(qty),
		})
	}
	return events, rows.Err()
}

// PersistTrades bulk-loads the trade log a replay run produced,
// mirroring the teacher's PersistDeals.
func PersistTrades(tx *sql.Tx, trades []orderbook.Trade) error {
	stmt, err := tx.Prepare(pq.CopyIn("lob_trades", "bid_id", "ask_id", "bid_price", "ask_price", "qty"))
	if err != nil {
		return fmt.Errorf("replay: prepare trade copy: %w", err)
	}

	for _, t := range trades {
		if _, err := stmt.Exec(int64(t.Bid.ID), int64(t.Ask.ID), int32(t.Bid.Price), int32(t.Ask.Price), int32(t.Bid.Qty)); err != nil {
			return fmt.Errorf("replay: copy trade: %w", err)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("replay: flush trade copy: %w", err)
	}
	return stmt.Close()
}
