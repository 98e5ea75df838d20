package logger

import (
	"log/slog"
	"strings"
)

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// statusName lowercases status values and folds error spellings into "fail".
func statusName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "failed" || s == "error" {
		return "fail"
	}
	return s
}

// defaultKeyOrder puts the fields an operator scans first at the front of
// every line; remaining keys follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "update_id", "user_id", "chat_id", "chat_type", "handler",
	"kind", "fragment", "action", "service", "order_id", "dispatch_chat_id",
	"outcome", "duration_ms", "messages", "kb", "count",
	"sessions_active", "sessions_expired",
	"payload", "lang", "username",
	"mode", "listen", "public_url", "http_code",
	"db", "host", "port",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms",
}
