package formstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohits-web03/formstore/internal/metrics"
)

// Change tells an observer that the rows behind Route changed. Observers
// re-query for the new state.
type Change struct {
	Route Route
	At    time.Time
}

// Subscription delivers changes on one address until Unsubscribe or until
// the owning store closes, after which C is closed.
type Subscription struct {
	ID    uuid.UUID
	Route Route
	C     <-chan Change

	ch       chan Change
	notifier *Notifier
	once     sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.notifier.remove(s)
}

// Notifier fans change signals out to observers of an exact address.
type Notifier struct {
	mu      sync.RWMutex
	subs    map[Route]map[uuid.UUID]*Subscription
	closed  bool
	now     func() time.Time
	metrics *metrics.Metrics
}

func NewNotifier(now func() time.Time, m *metrics.Metrics) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{
		subs:    make(map[Route]map[uuid.UUID]*Subscription),
		now:     now,
		metrics: m,
	}
}

// Subscribe registers an observer with a channel of the given capacity.
func (n *Notifier) Subscribe(route Route, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)
	sub := &Subscription{
		ID:       uuid.New(),
		Route:    route,
		C:        ch,
		ch:       ch,
		notifier: n,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	if n.subs[route] == nil {
		n.subs[route] = make(map[uuid.UUID]*Subscription)
	}
	n.subs[route][sub.ID] = sub
	n.metrics.SubscriberAdded()
	return sub
}

// Notify signals every observer of route without blocking. A subscriber
// whose buffer is full already holds an unread change, so the new one is
// folded into it.
func (n *Notifier) Notify(route Route) {
	change := Change{Route: route, At: n.now()}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, sub := range n.subs[route] {
		select {
		case sub.ch <- change:
		default:
		}
	}
	n.metrics.Notified(route.Kind.String())
}

// Subscribers counts the observers of route.
func (n *Notifier) Subscribers(route Route) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[route])
}

// Close ends every subscription.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for route, byID := range n.subs {
		for _, sub := range byID {
			sub.once.Do(func() { close(sub.ch) })
			n.metrics.SubscriberRemoved()
		}
		delete(n.subs, route)
	}
}

func (n *Notifier) remove(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	byID, ok := n.subs[sub.Route]
	if !ok {
		return
	}
	if _, ok := byID[sub.ID]; !ok {
		return
	}
	delete(byID, sub.ID)
	if len(byID) == 0 {
		delete(n.subs, sub.Route)
	}
	sub.once.Do(func() { close(sub.ch) })
	n.metrics.SubscriberRemoved()
}
