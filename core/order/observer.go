package order

// Fragment names the kind of inbound order data.
type Fragment string

const (
	FragmentService  Fragment = "service"
	FragmentLocation Fragment = "location"
	FragmentPhone    Fragment = "phone"
	FragmentCancel   Fragment = "cancel"
)

// Observer receives state machine events. Implementations must be fast and must
// not call back into the Aggregator.
type Observer interface {
	FragmentApplied(f Fragment, result ActionKind)
	OrderCompleted(o CompletedOrder)
	SessionsExpired(n int)
}

type nopObserver struct{}

func (nopObserver) FragmentApplied(Fragment, ActionKind) {}
func (nopObserver) OrderCompleted(CompletedOrder)        {}
func (nopObserver) SessionsExpired(int)                  {}

// Observers fans events out to several observers.
type Observers []Observer

func (obs Observers) FragmentApplied(f Fragment, result ActionKind) {
	for _, o := range obs {
		o.FragmentApplied(f, result)
	}
}

func (obs Observers) OrderCompleted(c CompletedOrder) {
	for _, o := range obs {
		o.OrderCompleted(c)
	}
}

func (obs Observers) SessionsExpired(n int) {
	for _, o := range obs {
		o.SessionsExpired(n)
	}
}
