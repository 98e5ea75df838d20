package middleware

import tele "gopkg.in/telebot.v4"

const countersKey = "send_counters"

// sendCounters records what a handler sent back for the summary log line.
type sendCounters struct {
	messages int
	keyboard bool
}

func (s *sendCounters) observe(opts []any, err error) {
	if err != nil {
		return
	}
	s.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			s.keyboard = s.keyboard || (v != nil && v.ReplyMarkup != nil)
		case *tele.ReplyMarkup:
			s.keyboard = s.keyboard || v != nil
		}
	}
}

// countingContext counts successful Send and Reply calls.
type countingContext struct {
	tele.Context
	counters *sendCounters
}

func (c countingContext) Send(what any, opts ...any) error {
	err := c.Context.Send(what, opts...)
	c.counters.observe(opts, err)
	return err
}

func (c countingContext) Reply(what any, opts ...any) error {
	err := c.Context.Reply(what, opts...)
	c.counters.observe(opts, err)
	return err
}

// MessageMetricsMiddleware counts the replies a handler sends and whether
// any carried a keyboard. GetCounters reads the result.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &sendCounters{}
		c.Set(countersKey, counters)
		return next(countingContext{Context: c, counters: counters})
	}
}

// GetCounters returns the number of messages sent and whether a keyboard was attached.
func GetCounters(c tele.Context) (int, bool) {
	if s, ok := c.Get(countersKey).(*sendCounters); ok {
		return s.messages, s.keyboard
	}
	return 0, false
}
