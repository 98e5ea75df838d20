package router

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/metrics"
	tghelpers "github.com/m3rciful/orderbot/core/telegram/helpers"
	"github.com/m3rciful/orderbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// span times one handler invocation and writes its summary line.
type span struct {
	c     tele.Context
	name  string
	start time.Time
}

func begin(c tele.Context, name string) span {
	tghelpers.WithHandler(c, name)
	return span{c: c, name: name, start: time.Now()}
}

// run counts the update, calls fn and logs the outcome.
func (s span) run(fn func() error) error {
	metrics.IncTelegramUpdate(s.name)
	err := fn()
	status := "ok"
	if err != nil {
		status = "fail"
	}
	s.finish(status, err)
	return err
}

// skip logs an update that had no handler bound.
func (s span) skip() { s.finish("skip", nil) }

func (s span) finish(status string, err error) {
	msgs, kb := middleware.GetCounters(s.c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", s.name),
		slog.String("outcome", strings.Replace(status, "skip", "ok", 1)),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(s.start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.Clean(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.Info(tghelpers.WithHandler(s.c, s.name), "tg", "handler.handled", attrs...)
}

// handlerName turns a command or alias into a metric-safe label.
func handlerName(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "unknown"
	}
	return strings.ToLower(strings.Join(strings.Fields(raw), "_"))
}

// errorCode reports a stable code for err: its Code() when it has one,
// the Telegram error code, or a generic bucket.
func errorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.Join(strings.Fields(code), "_"))
		}
	}
	var apiErr *tele.Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, tele.ErrBlockedByUser):
		return "BLOCKED"
	case errors.As(err, &apiErr):
		return "TELEGRAM_" + strconv.Itoa(apiErr.Code)
	}
	return "INTERNAL"
}
