package taxibot

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/orderbot/core/order"

	tele "gopkg.in/telebot.v4"
)

type sent struct {
	text   string
	markup *tele.ReplyMarkup
	opts   *tele.SendOptions
}

// fakeContext is a private-chat update from one user.
type fakeContext struct {
	tele.Context
	user  *tele.User
	msg   *tele.Message
	store map[string]any

	mu   sync.Mutex
	sent []sent
}

func newContext(userID int64) *fakeContext {
	u := &tele.User{ID: userID, FirstName: "Min", LastName: "Kim", Username: "minkim"}
	return &fakeContext{
		user:  u,
		msg:   &tele.Message{ID: 1, Sender: u, Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate}},
		store: map[string]any{},
	}
}

func (f *fakeContext) withText(s string) *fakeContext { f.msg.Text = s; return f }
func (f *fakeContext) withLocation(lat, lng float32) *fakeContext {
	f.msg.Location = &tele.Location{Lat: lat, Lng: lng}
	return f
}
func (f *fakeContext) withContact(phone string) *fakeContext {
	f.msg.Contact = &tele.Contact{PhoneNumber: phone, UserID: f.user.ID}
	return f
}

func (f *fakeContext) Update() tele.Update    { return tele.Update{ID: 77, Message: f.msg} }
func (f *fakeContext) Message() *tele.Message { return f.msg }
func (f *fakeContext) Sender() *tele.User     { return f.user }
func (f *fakeContext) Chat() *tele.Chat       { return f.msg.Chat }
func (f *fakeContext) Text() string           { return f.msg.Text }
func (f *fakeContext) Get(key string) any     { return f.store[key] }
func (f *fakeContext) Set(key string, v any)  { f.store[key] = v }

func (f *fakeContext) Send(what any, opts ...any) error {
	s := sent{}
	s.text, _ = what.(string)
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			s.opts = so
			s.markup = so.ReplyMarkup
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, s)
	f.mu.Unlock()
	return nil
}

func (f *fakeContext) last() sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sent{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeContext) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// recordingDispatcher captures dispatched orders.
type recordingDispatcher struct {
	mu     sync.Mutex
	orders []order.CompletedOrder
	err    error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, o order.CompletedOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return r.err
}

func (r *recordingDispatcher) all() []order.CompletedOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]order.CompletedOrder(nil), r.orders...)
}

// fakeBot records messages sent to the dispatch chat.
type fakeBot struct {
	mu    sync.Mutex
	to    []tele.Recipient
	texts []string
	err   error
	calls int
}

func (b *fakeBot) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	b.to = append(b.to, to)
	s, _ := what.(string)
	b.texts = append(b.texts, s)
	return &tele.Message{ID: b.calls}, nil
}

// fakeJournal records journal calls.
type fakeJournal struct {
	mu        sync.Mutex
	recorded  []string
	delivered map[string]error
}

func newFakeJournal() *fakeJournal { return &fakeJournal{delivered: map[string]error{}} }

func (j *fakeJournal) Record(_ context.Context, o order.CompletedOrder) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recorded = append(j.recorded, o.ID)
	return nil
}

func (j *fakeJournal) MarkDelivered(_ context.Context, id string, err error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.delivered[id] = err
	return nil
}

func (j *fakeJournal) CountSince(context.Context, time.Time) (int, error) {
	return len(j.recorded), nil
}

func (j *fakeJournal) outcome(id string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	err, ok := j.delivered[id]
	return ok, err
}
