package port

// Subscription is the handle returned when registering a callback.
// Calling Unsubscribe more than once is a no-op.
type Subscription struct {
	cancel func()
}

// Unsubscribe removes the callback from its registry.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
}

type listener[F any] struct {
	id uint64
	fn F
}

// listeners is an ordered observer registry. Callbacks fire in registration order.
type listeners[F any] struct {
	next    uint64
	entries []listener[F]
}

func (l *listeners[F]) add(fn F) *Subscription {
	l.next++
	id := l.next
	l.entries = append(l.entries, listener[F]{id: id, fn: fn})
	return &Subscription{cancel: func() { l.remove(id) }}
}

func (l *listeners[F]) remove(id uint64) {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// each iterates over a snapshot, so callbacks may unsubscribe themselves.
func (l *listeners[F]) each(call func(F)) {
	snapshot := append([]listener[F](nil), l.entries...)
	for _, e := range snapshot {
		call(e.fn)
	}
}
