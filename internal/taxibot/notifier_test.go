package taxibot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/orderbot/core/order"
	"github.com/m3rciful/orderbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

func sampleOrder() order.CompletedOrder {
	return order.CompletedOrder{
		ID:          "ord-1",
		UserID:      42,
		Service:     order.ServiceTaxi,
		DisplayName: "Min Kim",
		Phone:       "010-1111-2222",
		Location:    order.GeoPoint{Latitude: 36.6, Longitude: 127.4},
		CompletedAt: time.Now(),
	}
}

func testFormatter() order.Formatter {
	return order.Formatter{Catalog: order.DefaultCatalog()}
}

func TestNotifierSynchronousSend(t *testing.T) {
	j := newFakeJournal()
	n := NewNotifier(-100500, testFormatter(), j)
	bot := &fakeBot{}
	n.Bind(bot, nil)

	require.NoError(t, n.Dispatch(context.Background(), sampleOrder()))

	require.Len(t, bot.texts, 1)
	assert.Equal(t, tele.ChatID(-100500), bot.to[0])
	assert.Contains(t, bot.texts[0], "Такси 🚕")
	assert.Contains(t, bot.texts[0], "https://map.kakao.com/link/map/36.6,127.4")
	assert.Equal(t, []string{"ord-1"}, j.recorded)
	ok, err := j.outcome("ord-1")
	assert.True(t, ok)
	assert.NoError(t, err)
}

func TestNotifierAsyncReportsFailure(t *testing.T) {
	j := newFakeJournal()
	n := NewNotifier(1, testFormatter(), j)
	bot := &fakeBot{err: errors.New("chat not found")}
	d := sender.NewDispatcher(sender.Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	n.Bind(bot, d)

	require.NoError(t, n.Dispatch(context.Background(), sampleOrder()))
	d.Close()

	ok, err := j.outcome("ord-1")
	require.True(t, ok)
	assert.EqualError(t, err, "chat not found")
	assert.Equal(t, 1, bot.calls, "permanent errors are not retried")
}

func TestNotifierFallsBackWhenQueueClosed(t *testing.T) {
	j := newFakeJournal()
	n := NewNotifier(1, testFormatter(), j)
	bot := &fakeBot{}
	d := sender.NewDispatcher(sender.Options{})
	d.Close()
	n.Bind(bot, d)

	require.NoError(t, n.Dispatch(context.Background(), sampleOrder()))
	assert.Len(t, bot.texts, 1)
}

func TestNotifierUnbound(t *testing.T) {
	j := newFakeJournal()
	n := NewNotifier(1, testFormatter(), j)
	err := n.Dispatch(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, ErrNotBound)
	ok, jerr := j.outcome("ord-1")
	assert.True(t, ok)
	assert.ErrorIs(t, jerr, ErrNotBound)
}

func TestNewNotifierDefaultsToNopJournal(t *testing.T) {
	n := NewNotifier(1, testFormatter(), nil)
	n.Bind(&fakeBot{}, nil)
	assert.NoError(t, n.Dispatch(context.Background(), sampleOrder()))
}
