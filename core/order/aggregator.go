package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/orderbot/core/telegram/state"
)

// Options configures an Aggregator. Zero values select defaults.
type Options struct {
	Catalog Catalog
	Store   state.Store[Session]
	// SessionTTL expires sessions idle for longer than this; 0 keeps them forever.
	SessionTTL time.Duration
	Observer   Observer

	Now   func() time.Time
	NewID func() string
}

// Aggregator applies order fragments to per-user sessions and decides completion.
type Aggregator struct {
	catalog  Catalog
	store    state.Store[Session]
	ttl      time.Duration
	observer Observer
	now      func() time.Time
	newID    func() string
}

// NewAggregator builds an Aggregator around an in-memory sharded store unless one is supplied.
func NewAggregator(opts Options) *Aggregator {
	a := &Aggregator{
		catalog:  opts.Catalog,
		store:    opts.Store,
		ttl:      opts.SessionTTL,
		observer: opts.Observer,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if a.catalog.byLabel == nil {
		a.catalog = DefaultCatalog()
	}
	if a.store == nil {
		a.store = state.NewMemoryStore[Session](state.DefaultShards)
	}
	if a.observer == nil {
		a.observer = nopObserver{}
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}
	return a
}

// Catalog exposes the service labels the aggregator matches against.
func (a *Aggregator) Catalog() Catalog {
	return a.catalog
}

// SelectService starts a fresh session when text is a service label.
// Any earlier incomplete session of the user is discarded.
func (a *Aggregator) SelectService(uid UserID, who Identity, text string) Action {
	kind, ok := a.catalog.Lookup(text)
	if !ok {
		a.observer.FragmentApplied(FragmentService, ActionNoMatch)
		return Action{Kind: ActionNoMatch}
	}
	now := a.now()
	a.store.Upsert(int64(uid), func(Session, bool) Session {
		return Session{
			Service:   kind,
			Identity:  who,
			StartedAt: now,
			UpdatedAt: now,
		}
	})
	a.observer.FragmentApplied(FragmentService, ActionPromptForContactAndLocation)
	return Action{Kind: ActionPromptForContactAndLocation, Service: kind}
}

// ApplyLocation records the user's location and evaluates completion.
func (a *Aggregator) ApplyLocation(uid UserID, who Identity, p GeoPoint) Action {
	return a.apply(uid, who, FragmentLocation, func(s *Session) {
		loc := p
		s.Location = &loc
	})
}

// ApplyPhone records the user's phone number and evaluates completion.
func (a *Aggregator) ApplyPhone(uid UserID, who Identity, phone PhoneNumber) Action {
	return a.apply(uid, who, FragmentPhone, func(s *Session) {
		ph := phone
		s.Phone = &ph
	})
}

// Cancel drops any session of the user. A missing session is not an error.
func (a *Aggregator) Cancel(uid UserID) Action {
	a.store.Remove(int64(uid))
	a.observer.FragmentApplied(FragmentCancel, ActionReturnedToMenu)
	return Action{Kind: ActionReturnedToMenu}
}

// Session returns a copy of the user's in-progress session.
func (a *Aggregator) Session(uid UserID) (Session, bool) {
	return a.store.Get(int64(uid))
}

// Active returns the number of in-progress sessions.
func (a *Aggregator) Active() int {
	return a.store.Len()
}

// ExpireIdle removes sessions not updated within the TTL and returns how many were dropped.
func (a *Aggregator) ExpireIdle(now time.Time) int {
	if a.ttl <= 0 {
		return 0
	}
	n := a.store.Sweep(func(_ int64, s Session) bool {
		return now.Sub(s.UpdatedAt) > a.ttl
	})
	if n > 0 {
		a.observer.SessionsExpired(n)
	}
	return n
}

// apply mutates the session and, when it becomes complete, removes it inside
// the same store critical section so only one caller can observe completion.
func (a *Aggregator) apply(uid UserID, who Identity, frag Fragment, set func(*Session)) Action {
	now := a.now()
	var done *CompletedOrder

	a.store.Update(int64(uid), func(cur Session, ok bool) (Session, bool) {
		if !ok {
			cur = Session{Service: ServiceNone, StartedAt: now}
		}
		if !who.empty() {
			cur.Identity = who
		}
		set(&cur)
		cur.UpdatedAt = now
		if !cur.Complete() {
			return cur, true
		}
		done = &CompletedOrder{
			UserID:      uid,
			Service:     cur.Service,
			DisplayName: cur.Identity.DisplayName,
			Username:    cur.Identity.Username,
			Phone:       *cur.Phone,
			Location:    *cur.Location,
			StartedAt:   cur.StartedAt,
			CompletedAt: now,
		}
		return Session{}, false
	})

	if done == nil {
		a.observer.FragmentApplied(frag, ActionNoOp)
		return Action{Kind: ActionNoOp}
	}
	done.ID = a.newID()
	a.observer.FragmentApplied(frag, ActionOrderReady)
	a.observer.OrderCompleted(*done)
	return Action{Kind: ActionOrderReady, Service: done.Service, Order: done}
}
