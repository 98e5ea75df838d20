package taxibot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/orderbot/core/journal"
	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/metrics"
	"github.com/m3rciful/orderbot/core/order"
	"github.com/m3rciful/orderbot/core/telegram/format"
	"github.com/m3rciful/orderbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const journalTimeout = 3 * time.Second

// ErrNotBound is returned when an order completes before the bot is running.
var ErrNotBound = errors.New("taxibot: notifier has no sender")

// MessageSender is the subset of *tele.Bot used to reach the dispatch chat.
type MessageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier delivers completed orders to the dispatch chat. A failed delivery
// is logged, counted and journaled; the order is never re-opened.
type Notifier struct {
	chat      tele.Recipient
	formatter order.Formatter
	journal   journal.Journal

	mu         sync.RWMutex
	sender     MessageSender
	dispatcher *sender.Dispatcher
}

// NewNotifier prepares a notifier for chatID. Call Bind before Dispatch.
func NewNotifier(chatID int64, f order.Formatter, j journal.Journal) *Notifier {
	if j == nil {
		j = journal.Nop{}
	}
	return &Notifier{
		chat:      tele.ChatID(chatID),
		formatter: f,
		journal:   j,
	}
}

// Bind attaches the bot and the async dispatcher. d may be nil for synchronous sends.
func (n *Notifier) Bind(s MessageSender, d *sender.Dispatcher) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sender = s
	n.dispatcher = d
}

func (n *Notifier) bound() (MessageSender, *sender.Dispatcher) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.sender, n.dispatcher
}

// Dispatch journals the order and sends the dispatch message. With a
// dispatcher bound the send is asynchronous and Dispatch returns once queued.
func (n *Notifier) Dispatch(ctx context.Context, o order.CompletedOrder) error {
	ctx = logger.WithOrderID(ctx, o.ID)

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	if err := n.journal.Record(jctx, o); err != nil {
		logger.JRN.LogAttrs(ctx, slog.LevelWarn, "journal record failed",
			slog.String("event", "journal.record"),
			slog.String("order_id", o.ID),
			slog.String("err", err.Error()),
		)
	}
	cancel()

	s, d := n.bound()
	if s == nil {
		n.finish(ctx, o, ErrNotBound)
		return ErrNotBound
	}

	text := format.OrderHTML(n.formatter.Render(o))
	run := func() error {
		_, err := s.Send(n.chat, text, &tele.SendOptions{
			ParseMode:             tele.ModeHTML,
			DisableWebPagePreview: true,
		})
		return err
	}
	done := func(err error) { n.finish(ctx, o, err) }

	if d == nil {
		err := run()
		done(err)
		return err
	}
	err := d.EnqueueWithResult(ctx, "dispatch.order", "sendMessage", run, done)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "dispatch.order"),
			slog.String("err", err.Error()),
		)
		err = run()
		done(err)
	}
	return err
}

func (n *Notifier) finish(ctx context.Context, o order.CompletedOrder, err error) {
	metrics.IncDispatchDelivery(err)

	attrs := []slog.Attr{
		slog.String("event", "dispatch"),
		slog.String("order_id", o.ID),
		slog.String("service", o.Service.String()),
		slog.Int64("user_id", int64(o.UserID)),
	}
	if chat, ok := n.chat.(tele.ChatID); ok {
		attrs = append(attrs, slog.Int64("dispatch_chat_id", int64(chat)))
	}
	if err != nil {
		attrs = append(attrs, slog.String("status", "fail"), slog.String("err", logger.Clean(err.Error(), 256)))
		logger.ORD.LogAttrs(ctx, slog.LevelError, "order dispatch failed", attrs...)
	} else {
		attrs = append(attrs, slog.String("status", "ok"))
		logger.ORD.LogAttrs(ctx, slog.LevelInfo, "order dispatched", attrs...)
	}

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if jerr := n.journal.MarkDelivered(jctx, o.ID, err); jerr != nil {
		logger.JRN.LogAttrs(ctx, slog.LevelWarn, "journal update failed",
			slog.String("event", "journal.mark"),
			slog.String("order_id", o.ID),
			slog.String("err", jerr.Error()),
		)
	}
}
