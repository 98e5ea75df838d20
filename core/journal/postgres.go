package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/order"
)

const maxErrorLen = 512

type orderRow struct {
	ID          string       `db:"id"`
	UserID      int64        `db:"user_id"`
	Service     string       `db:"service"`
	DisplayName string       `db:"display_name"`
	Username    string       `db:"username"`
	Phone       string       `db:"phone"`
	Latitude    float64      `db:"latitude"`
	Longitude   float64      `db:"longitude"`
	Status      string       `db:"status"`
	Error       string       `db:"error"`
	StartedAt   time.Time    `db:"started_at"`
	CompletedAt time.Time    `db:"completed_at"`
	DeliveredAt sql.NullTime `db:"delivered_at"`
}

func rowFromOrder(o order.CompletedOrder) orderRow {
	return orderRow{
		ID:          o.ID,
		UserID:      int64(o.UserID),
		Service:     o.Service.String(),
		DisplayName: o.DisplayName,
		Username:    o.Username,
		Phone:       string(o.Phone),
		Latitude:    o.Location.Latitude,
		Longitude:   o.Location.Longitude,
		Status:      StatusPending,
		StartedAt:   o.StartedAt.UTC(),
		CompletedAt: o.CompletedAt.UTC(),
	}
}

func deliveryStatus(err error) (string, string) {
	if err == nil {
		return StatusDelivered, ""
	}
	return StatusFailed, logger.Clean(err.Error(), maxErrorLen)
}

// Postgres stores the journal in the orders table created by migrations/.
type Postgres struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Journal = (*Postgres)(nil)

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

const insertOrder = `
INSERT INTO orders (id, user_id, service, display_name, username, phone, latitude, longitude,
                    status, error, started_at, completed_at)
VALUES (:id, :user_id, :service, :display_name, :username, :phone, :latitude, :longitude,
        :status, :error, :started_at, :completed_at)
ON CONFLICT (id) DO NOTHING`

// Record inserts the order with pending status. Re-recording the same ID is a no-op.
func (p *Postgres) Record(ctx context.Context, o order.CompletedOrder) error {
	start := time.Now()
	if _, err := p.db.NamedExecContext(ctx, insertOrder, rowFromOrder(o)); err != nil {
		logger.JRN.LogAttrs(ctx, slog.LevelError, "journal.record",
			slog.String("status", "fail"),
			slog.String("order_id", o.ID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("journal: record order %s: %w", o.ID, err)
	}
	logger.JRN.LogAttrs(ctx, slog.LevelDebug, "journal.record",
		slog.String("status", "ok"),
		slog.String("order_id", o.ID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// MarkDelivered stores the dispatch outcome of a recorded order.
func (p *Postgres) MarkDelivered(ctx context.Context, orderID string, deliveryErr error) error {
	status, msg := deliveryStatus(deliveryErr)
	var deliveredAt sql.NullTime
	if deliveryErr == nil {
		deliveredAt = sql.NullTime{Time: p.now().UTC(), Valid: true}
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, error = $2, delivered_at = $3 WHERE id = $4`,
		status, msg, deliveredAt, orderID,
	)
	if err != nil {
		return fmt.Errorf("journal: mark order %s: %w", orderID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logger.JRN.LogAttrs(ctx, slog.LevelWarn, "journal.mark",
			slog.String("status", "skip"),
			slog.String("order_id", orderID),
			slog.String("cause", "not_recorded"),
		)
	}
	return nil
}

// CountSince returns the number of orders completed at or after since.
func (p *Postgres) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := p.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders WHERE completed_at >= $1`, since.UTC()); err != nil {
		return 0, fmt.Errorf("journal: count orders: %w", err)
	}
	return n, nil
}

// Get loads one journal row; used by diagnostics and tests.
func (p *Postgres) Get(ctx context.Context, orderID string) (Entry, error) {
	var row orderRow
	if err := p.db.GetContext(ctx, &row, `SELECT * FROM orders WHERE id = $1`, orderID); err != nil {
		return Entry{}, fmt.Errorf("journal: get order %s: %w", orderID, err)
	}
	return row.entry(), nil
}

// Entry is the stored view of an order.
type Entry struct {
	OrderID     string
	UserID      int64
	Service     string
	Phone       string
	Status      string
	Error       string
	CompletedAt time.Time
	DeliveredAt *time.Time
}

func (r orderRow) entry() Entry {
	e := Entry{
		OrderID:     r.ID,
		UserID:      r.UserID,
		Service:     r.Service,
		Phone:       r.Phone,
		Status:      r.Status,
		Error:       r.Error,
		CompletedAt: r.CompletedAt,
	}
	if r.DeliveredAt.Valid {
		t := r.DeliveredAt.Time
		e.DeliveredAt = &t
	}
	return e
}
