package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesTotal,
		telegramDuplicateUpdatesTotal,
		dispatchDeliveriesTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Incoming Telegram updates by handler.",
		},
		[]string{"handler"},
	)

	telegramDuplicateUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_duplicate_updates_total",
			Help: "Redelivered updates dropped by update_id deduplication.",
		},
	)

	dispatchDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_deliveries_total",
			Help: "Order notifications sent to the dispatch chat, by status (ok/fail).",
		},
		[]string{"status"},
	)
)

// IncTelegramUpdate counts an update routed to handler.
func IncTelegramUpdate(handler string) {
	telegramUpdatesTotal.WithLabelValues(norm(handler)).Inc()
}

// IncDuplicateUpdate counts a dropped redelivery.
func IncDuplicateUpdate() {
	telegramDuplicateUpdatesTotal.Inc()
}

// IncDispatchDelivery counts a dispatch notification outcome.
func IncDispatchDelivery(err error) {
	status := "ok"
	if err != nil {
		status = "fail"
	}
	dispatchDeliveriesTotal.WithLabelValues(status).Inc()
}
