// Package journal keeps an audit trail of dispatched orders. It never stores
// in-progress sessions; those live only in memory.
package journal

import (
	"context"
	"time"

	"github.com/m3rciful/orderbot/core/order"
)

// Delivery statuses stored with each order.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Journal records completed orders and the outcome of their dispatch.
type Journal interface {
	Record(ctx context.Context, o order.CompletedOrder) error
	MarkDelivered(ctx context.Context, orderID string, deliveryErr error) error
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// Nop is used when the journal is disabled.
type Nop struct{}

func (Nop) Record(context.Context, order.CompletedOrder) error { return nil }
func (Nop) MarkDelivered(context.Context, string, error) error { return nil }
func (Nop) CountSince(context.Context, time.Time) (int, error) { return 0, nil }
