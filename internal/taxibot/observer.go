package taxibot

import (
	"log/slog"

	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/order"
)

// logObserver writes aggregator events to the order logger.
// Phone numbers and coordinates stay out of the logs.
type logObserver struct{}

var _ order.Observer = logObserver{}

func (logObserver) FragmentApplied(f order.Fragment, result order.ActionKind) {
	logger.ORD.Debug("fragment applied",
		slog.String("event", "order.fragment"),
		slog.String("fragment", string(f)),
		slog.String("action", result.String()),
	)
}

func (logObserver) OrderCompleted(o order.CompletedOrder) {
	logger.ORD.Info("order completed",
		slog.String("event", "order.complete"),
		slog.String("order_id", o.ID),
		slog.String("service", o.Service.String()),
		slog.Int64("user_id", int64(o.UserID)),
		slog.Duration("duration", logger.RoundMS(o.CompletedAt.Sub(o.StartedAt))),
	)
}

func (logObserver) SessionsExpired(n int) {
	logger.ORD.Info("idle sessions expired",
		slog.String("event", "order.expire"),
		slog.Int("sessions_expired", n),
	)
}
