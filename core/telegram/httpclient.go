package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/orderbot/core/telegram/netutil"
)

// Bot API transport limits. Response deadlines are extended by the
// long-poll timeout so getUpdates can hold the connection open.
const (
	apiDialTimeout     = 5 * time.Second
	apiResponseTimeout = 5 * time.Second
	apiClientTimeout   = 30 * time.Second
	apiIdleTimeout     = 30 * time.Second
	apiDialRetries     = 2
	apiDialBackoff     = 500 * time.Millisecond
)

// BuildHTTPClient returns the client telebot uses for Bot API calls.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	response := apiResponseTimeout + pollTimeout
	dialer := &net.Dialer{Timeout: apiDialTimeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: max(apiClientTimeout, response+apiResponseTimeout),
		Transport: &retryTransport{
			next: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       apiIdleTimeout,
				TLSHandshakeTimeout:   apiDialTimeout,
				ResponseHeaderTimeout: response,
			},
			retries: apiDialRetries,
			backoff: apiDialBackoff,
		},
	}
}

// retryTransport repeats requests that failed before a response arrived,
// provided the body can be replayed.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	for n := 1; err != nil && n <= t.retries && netutil.ShouldRetry(err); n++ {
		if req.Body != nil && req.GetBody == nil {
			break
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(t.backoff * time.Duration(n)):
		}
		retry := req.Clone(req.Context())
		if req.GetBody != nil {
			if retry.Body, err = req.GetBody(); err != nil {
				return nil, err
			}
		}
		resp, err = t.next.RoundTrip(retry)
	}
	return resp, err
}
