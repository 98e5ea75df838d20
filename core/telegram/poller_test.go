package telegram

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongpoll(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)
	assert.Equal(t, []string{"message"}, lp.AllowedUpdates)

	p = BuildPoller(PollerOptions{LongPollTimeoutSeconds: 25})
	assert.Equal(t, 25*time.Second, p.(*tele.LongPoller).Timeout)
}

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: " Webhook ",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook", SecretToken: "s3cret"},
	})
	wh, ok := p.(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://bot.example.com/hook", wh.Endpoint.PublicURL)
	assert.Equal(t, "s3cret", wh.SecretToken)
}

func TestBuildHTTPClientOutlivesLongPoll(t *testing.T) {
	c := BuildHTTPClient(50 * time.Second)
	assert.Greater(t, c.Timeout, 50*time.Second)
	rt, ok := c.Transport.(*retryTransport)
	require.True(t, ok)
	base, ok := rt.next.(*http.Transport)
	require.True(t, ok)
	assert.Greater(t, base.ResponseHeaderTimeout, 50*time.Second)
}

type stubTripper struct {
	errs  []error
	calls int
}

func (s *stubTripper) RoundTrip(*http.Request) (*http.Response, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &http.Response{StatusCode: http.StatusOK}, nil
}

func TestRetryTransportRetriesDialFailures(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	stub := &stubTripper{errs: []error{dial}}
	rt := &retryTransport{next: stub, retries: 2, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/getMe", strings.NewReader("a=1"))
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, stub.calls)

	stub = &stubTripper{errs: []error{errors.New("bad request")}}
	rt.next = stub
	_, err = rt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, 1, stub.calls, "permanent errors are not repeated")
}
