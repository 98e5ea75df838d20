package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/orderbot/core/config"
	"github.com/m3rciful/orderbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain for bots.
// Dedup runs before logging so redelivered updates never reach handlers.
func DefaultMiddlewares(cfg *coreconfig.Config) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil && cfg.Telegram.DedupWindowSeconds > 0 {
		window := time.Duration(cfg.Telegram.DedupWindowSeconds) * time.Second
		mws = append(mws, Middleware{
			Name: "dedup",
			Use:  middleware.DedupMiddleware(window),
		})
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	return mws
}
