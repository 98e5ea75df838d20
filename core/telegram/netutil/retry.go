package netutil

import (
	"context"
	"errors"
	"net"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether a Bot API call that failed with err may succeed
// when repeated: network timeouts, refused dials, flood control and 5xx replies.
// Cancellation and 4xx replies are final.
func ShouldRetry(err error) bool {
	var (
		flood  tele.FloodError
		apiErr *tele.Error
		opErr  *net.OpError
		netErr net.Error
	)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.As(err, &flood):
		return true
	case errors.As(err, &apiErr):
		return apiErr.Code >= 500
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return true
	case errors.As(err, &netErr):
		return netErr.Timeout()
	}
	return false
}
