package rpc

// subscriptionRouter maps server-assigned subscription ids to subscribers.
// At most one subscriber holds an id at a time.
//
// Not safe for concurrent use; Client guards it with its mutex.
type subscriptionRouter struct {
	subs map[uint64]Subscriber
}

func newSubscriptionRouter() *subscriptionRouter {
	return &subscriptionRouter{subs: make(map[uint64]Subscriber)}
}

// add registers s under its subscription id and returns the subscriber it
// displaced, if any.
func (r *subscriptionRouter) add(s Subscriber) Subscriber {
	id := s.SubscriptionID()
	prev, ok := r.subs[id]
	r.subs[id] = s
	if ok && prev != s {
		return prev
	}
	return nil
}

// remove erases s. A different subscriber registered under the same id is
// left alone.
func (r *subscriptionRouter) remove(s Subscriber) bool {
	id := s.SubscriptionID()
	if cur, ok := r.subs[id]; ok && cur == s {
		delete(r.subs, id)
		return true
	}
	return false
}

func (r *subscriptionRouter) lookup(id uint64) (Subscriber, bool) {
	s, ok := r.subs[id]
	return s, ok
}

func (r *subscriptionRouter) len() int {
	return len(r.subs)
}
