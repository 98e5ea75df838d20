package taxibot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/order"
	"github.com/m3rciful/orderbot/core/telegram/format"
	tghelpers "github.com/m3rciful/orderbot/core/telegram/helpers"
	"github.com/m3rciful/orderbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Dispatcher hands completed orders to the dispatch chat.
type Dispatcher interface {
	Dispatch(ctx context.Context, o order.CompletedOrder) error
}

// Handlers adapts Telegram updates to aggregator calls.
type Handlers struct {
	agg      *order.Aggregator
	notifier Dispatcher
	texts    Texts
	stats    func(ctx context.Context) (int, error)

	menu    *tele.ReplyMarkup
	request *tele.ReplyMarkup
}

// NewHandlers builds the update handlers. stats may be nil.
func NewHandlers(agg *order.Aggregator, n Dispatcher, texts Texts, stats func(context.Context) (int, error)) *Handlers {
	return &Handlers{
		agg:      agg,
		notifier: n,
		texts:    texts,
		stats:    stats,
		menu:     keyboard.Column(agg.Catalog().Labels()),
		request: keyboard.RequestButtons(keyboard.RequestLabels{
			Location: texts.LocationButton,
			Contact:  texts.ContactButton,
			Back:     texts.BackButton,
		}),
	}
}

func identityOf(u *tele.User) order.Identity {
	if u == nil {
		return order.Identity{}
	}
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	return order.Identity{DisplayName: name, Username: u.Username}
}

func senderID(c tele.Context) (order.UserID, bool) {
	u := c.Sender()
	if u == nil {
		return 0, false
	}
	return order.UserID(u.ID), true
}

// Start greets the user and shows the service menu.
func (h *Handlers) Start(c tele.Context) error {
	who := identityOf(c.Sender())
	text := strings.ReplaceAll(h.texts.Greeting, "{name}", format.Escape(who.DisplayName))
	return tghelpers.SendHTML(c, text, h.menu)
}

// Static returns a handler replying with a fixed text. withMenu also shows the service menu.
func (h *Handlers) Static(text string, withMenu bool) tele.HandlerFunc {
	return func(c tele.Context) error {
		if withMenu {
			return tghelpers.SendHTML(c, text, h.menu)
		}
		return tghelpers.SendHTML(c, text)
	}
}

// Text handles service selection, the back button and unknown input.
func (h *Handlers) Text(c tele.Context) error {
	uid, ok := senderID(c)
	if !ok {
		return nil
	}
	text := c.Text()
	var act order.Action
	if text == h.texts.BackButton {
		act = h.agg.Cancel(uid)
	} else {
		act = h.agg.SelectService(uid, identityOf(c.Sender()), text)
	}
	return h.respond(c, act)
}

// Location applies a shared location.
func (h *Handlers) Location(c tele.Context) error {
	uid, ok := senderID(c)
	msg := c.Message()
	if !ok || msg == nil || msg.Location == nil {
		return nil
	}
	p := order.GeoPointFrom32(msg.Location.Lat, msg.Location.Lng)
	return h.respond(c, h.agg.ApplyLocation(uid, identityOf(c.Sender()), p))
}

// Contact applies a shared phone number.
func (h *Handlers) Contact(c tele.Context) error {
	uid, ok := senderID(c)
	msg := c.Message()
	if !ok || msg == nil || msg.Contact == nil {
		return nil
	}
	phone := order.PhoneNumber(msg.Contact.PhoneNumber)
	return h.respond(c, h.agg.ApplyPhone(uid, identityOf(c.Sender()), phone))
}

// Stats reports active sessions and, with a journal, orders of the last day.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text := fmt.Sprintf("Активных заявок: %d", h.agg.Active())
	if h.stats != nil {
		n, err := h.stats(ctx)
		if err != nil {
			logger.JRN.LogAttrs(ctx, slog.LevelWarn, "journal count failed",
				slog.String("event", "journal.count"),
				slog.String("err", err.Error()),
			)
		} else {
			text += fmt.Sprintf("\nЗаказов за 24 ч: %d", n)
		}
	}
	return tghelpers.SendHTML(c, text)
}

// DenyAdmin answers non-admin callers of admin commands.
func (h *Handlers) DenyAdmin(c tele.Context) error {
	return tghelpers.SendHTML(c, h.texts.AdminOnly)
}

func (h *Handlers) respond(c tele.Context, act order.Action) error {
	ctx := tghelpers.BuildContext(c)
	if act.Kind == order.ActionOrderReady && act.Order != nil {
		if err := h.notifier.Dispatch(ctx, *act.Order); err != nil {
			// The order is already consumed; the user still gets the confirmation.
			logger.ORD.LogAttrs(ctx, slog.LevelWarn, "dispatch not queued",
				slog.String("event", "dispatch"),
				slog.String("order_id", act.Order.ID),
				slog.String("err", err.Error()),
			)
		}
	}

	reply := ReplyFor(act, h.texts)
	if reply.Silent() {
		return nil
	}
	return tghelpers.SendHTML(c, reply.Text, h.markup(reply.Keyboard))
}

func (h *Handlers) markup(k KeyboardKind) *tele.ReplyMarkup {
	switch k {
	case KeyboardMenu:
		return h.menu
	case KeyboardRequest:
		return h.request
	case KeyboardRemove:
		return keyboard.RemoveKeyboard()
	default:
		return nil
	}
}

// statsSince counts journaled orders of the last day.
func statsSince(count func(context.Context, time.Time) (int, error)) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		return count(ctx, time.Now().Add(-24*time.Hour))
	}
}
