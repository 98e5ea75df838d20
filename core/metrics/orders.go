package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/m3rciful/orderbot/core/order"
)

func init() {
	register(
		fragmentsTotal,
		ordersCompletedTotal,
		orderAssemblySeconds,
		sessionsExpiredTotal,
		sessionsActive,
	)
}

var (
	fragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_fragments_total",
			Help: "Order fragments applied, by fragment kind and resulting action.",
		},
		[]string{"fragment", "action"},
	)

	ordersCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_completed_total",
			Help: "Orders assembled and handed to dispatch, by service.",
		},
		[]string{"service"},
	)

	orderAssemblySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_assembly_seconds",
			Help:    "Time between session start and completion.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 900, 3600},
		},
	)

	sessionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_sessions_expired_total",
			Help: "Incomplete sessions dropped by the idle sweeper.",
		},
	)

	activeSource   atomic.Pointer[func() int]
	sessionsActive = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "order_sessions_active",
			Help: "Incomplete order sessions currently held in memory.",
		},
		func() float64 {
			if fn := activeSource.Load(); fn != nil {
				return float64((*fn)())
			}
			return 0
		},
	)
)

// TrackActiveSessions sets the source of the order_sessions_active gauge.
func TrackActiveSessions(fn func() int) {
	if fn == nil {
		activeSource.Store(nil)
		return
	}
	activeSource.Store(&fn)
}

// OrderObserver feeds aggregator events into Prometheus.
type OrderObserver struct{}

var _ order.Observer = OrderObserver{}

func (OrderObserver) FragmentApplied(f order.Fragment, result order.ActionKind) {
	fragmentsTotal.WithLabelValues(norm(string(f)), result.String()).Inc()
}

func (OrderObserver) OrderCompleted(o order.CompletedOrder) {
	ordersCompletedTotal.WithLabelValues(o.Service.String()).Inc()
	if !o.StartedAt.IsZero() && o.CompletedAt.After(o.StartedAt) {
		orderAssemblySeconds.Observe(o.CompletedAt.Sub(o.StartedAt).Seconds())
	}
}

func (OrderObserver) SessionsExpired(n int) {
	sessionsExpiredTotal.Add(float64(n))
}
