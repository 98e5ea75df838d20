package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/orderbot/core/logger"
	tghelpers "github.com/m3rciful/orderbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the middlewares touch.
type fakeContext struct {
	tele.Context
	update tele.Update
	sender *tele.User
	store  map[string]any
}

func newFakeContext(updateID int, userID int64) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: updateID},
		sender: &tele.User{ID: userID},
		store:  map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update     { return f.update }
func (f *fakeContext) Chat() *tele.Chat        { return nil }
func (f *fakeContext) Sender() *tele.User      { return f.sender }
func (f *fakeContext) Get(key string) any      { return f.store[key] }
func (f *fakeContext) Set(key string, v any)   { f.store[key] = v }
func (f *fakeContext) Send(any, ...any) error  { return nil }
func (f *fakeContext) Reply(any, ...any) error { return errors.New("reply failed") }

func TestRecentSetWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	set := newRecentSet(time.Minute)
	set.now = func() time.Time { return now }

	assert.False(t, set.seenBefore(1))
	assert.True(t, set.seenBefore(1))
	assert.False(t, set.seenBefore(2))

	now = now.Add(2 * time.Minute)
	assert.False(t, set.seenBefore(1), "entries older than the window are forgotten")
}

func TestRecentSetCollectsAtMostOncePerInterval(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	set := newRecentSet(time.Second)
	set.now = func() time.Time { return now }

	for id := 1; id <= 100; id++ {
		set.seenBefore(id)
	}
	assert.Len(t, set.seen, 100)

	// Past the window but inside the scan interval: stale entries stay in the map
	// yet no longer count as seen.
	now = now.Add(500 * time.Millisecond)
	set.window = 100 * time.Millisecond
	assert.False(t, set.seenBefore(1))
	assert.Len(t, set.seen, 100)

	now = now.Add(recentGCInterval)
	assert.False(t, set.seenBefore(500))
	assert.Len(t, set.seen, 1, "expired entries are dropped by the next scan")
}

func TestDedupMiddlewareDropsRedelivery(t *testing.T) {
	calls := 0
	h := DedupMiddleware(time.Minute)(func(tele.Context) error {
		calls++
		return nil
	})

	require.NoError(t, h(newFakeContext(42, 1)))
	require.NoError(t, h(newFakeContext(42, 1)))
	require.NoError(t, h(newFakeContext(43, 1)))
	assert.Equal(t, 2, calls)
}

func TestDedupMiddlewareDisabled(t *testing.T) {
	calls := 0
	h := DedupMiddleware(0)(func(tele.Context) error {
		calls++
		return nil
	})
	require.NoError(t, h(newFakeContext(7, 1)))
	require.NoError(t, h(newFakeContext(7, 1)))
	assert.Equal(t, 2, calls)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	rejected := 0
	passed := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  100,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(newFakeContext(1, 100)))
	require.NoError(t, h(newFakeContext(2, 200)))
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, rejected)

	unset := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { passed++; return nil })
	require.NoError(t, unset(newFakeContext(3, 100)))
	assert.Equal(t, 1, passed, "no admin configured rejects everyone")
}

func TestMessageMetricsCountsSuccessfulSends(t *testing.T) {
	c := newFakeContext(1, 1)
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("hello", &tele.ReplyMarkup{})
		_ = c.Send("plain")
		_ = c.Reply("lost")
		return nil
	})
	require.NoError(t, h(c))

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	assert.NotPanics(t, func() { _ = h(newFakeContext(1, 1)) })
}

func TestLoggerMiddlewareStoresUpdateContext(t *testing.T) {
	var got context.Context
	h := LoggerMiddleware(func(c tele.Context) error {
		got, _ = tghelpers.ContextFrom(c)
		return nil
	})
	c := newFakeContext(15, 8)
	require.NoError(t, h(c))

	require.NotNil(t, got)
	meta := logger.MetaFrom(got)
	assert.Equal(t, 15, meta.UpdateID)
	assert.Equal(t, int64(8), meta.UserID)
	assert.Equal(t, logger.NewRID(15, 0, 8), meta.RID)
	assert.Equal(t, meta.RID, c.store["rid"])
}
