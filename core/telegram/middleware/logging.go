package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/metrics"
	tghelpers "github.com/m3rciful/orderbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// recentGCInterval bounds how often recentSet scans for expired entries.
const recentGCInterval = time.Second

// recentSet keeps update IDs seen within a sliding window.
type recentSet struct {
	mu     sync.Mutex
	seen   map[int]time.Time
	window time.Duration
	lastGC time.Time
	now    func() time.Time
}

func newRecentSet(window time.Duration) *recentSet {
	return &recentSet{
		seen:   make(map[int]time.Time),
		window: window,
		now:    time.Now,
	}
}

// seenBefore records id and reports whether it was already present within the window.
func (r *recentSet) seenBefore(id int) bool {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if now.Sub(r.lastGC) >= recentGCInterval {
		r.lastGC = now
		for k, ts := range r.seen {
			if now.Sub(ts) > r.window {
				delete(r.seen, k)
			}
		}
	}
	if ts, ok := r.seen[id]; ok && now.Sub(ts) <= r.window {
		return true
	}
	r.seen[id] = now
	return false
}

// receipts suppresses double receipt lines when LoggerMiddleware wraps several branches.
var receipts = newRecentSet(10 * time.Second)

// DedupMiddleware drops updates whose update_id was already handled within window.
// Telegram redelivers webhook updates when the previous response was slow or failed;
// without this a redelivered contact could be applied twice.
func DedupMiddleware(window time.Duration) tele.MiddlewareFunc {
	if window <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	set := newRecentSet(window)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			upd := c.Update()
			if upd.ID != 0 && set.seenBefore(upd.ID) {
				metrics.IncDuplicateUpdate()
				logger.TG.Debug("duplicate update dropped",
					slog.String("event", "update.duplicate"),
					slog.String("status", "duplicate"),
					slog.Int("update_id", upd.ID),
				)
				return nil
			}
			return next(c)
		}
	}
}

// LoggerMiddleware stores the update's logging context on c and logs one
// sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var (
			chatID, userID int64
			chatType       string
		)
		if chat := c.Chat(); chat != nil {
			chatID, chatType = chat.ID, string(chat.Type)
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}
		rid := logger.NewRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithUpdateMeta(logger.WithRID(context.Background(), rid), upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.TG)
		tghelpers.StoreContext(c, ctx)

		if !logger.ShouldSampleDebug() || receipts.seenBefore(upd.ID) {
			return next(c)
		}
		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.String("kind", messageKind(upd.Message)),
			slog.String("chat_type", chatType),
		}
		if user != nil {
			attrs = append(attrs,
				slog.String("username", logger.Clean(user.Username, 64)),
				slog.String("lang", user.LanguageCode),
			)
		}
		// Phone numbers and coordinates are never logged.
		if m := upd.Message; m != nil && m.Location == nil && m.Contact == nil && m.Text != "" {
			attrs = append(attrs, slog.String("payload", logger.Clean(m.Text, 256)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)
		return next(c)
	}
}

func messageKind(m *tele.Message) string {
	switch {
	case m == nil:
		return "other"
	case m.Location != nil:
		return "location"
	case m.Contact != nil:
		return "contact"
	case m.Text != "":
		return "text"
	default:
		return "message"
	}
}
