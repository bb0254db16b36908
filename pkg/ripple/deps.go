package ripple

import "sync"

// depSet is the subscriber set for one dependency key: the listeners to
// notify when that key's value changes. Membership is what matters;
// insertion order is irrelevant.
type depSet struct {
	subs []Listener

	// subMu protects the subs slice.
	subMu sync.RWMutex
}

// subscribe adds a listener to this set.
// Deduplicates by listener ID to prevent double-subscription.
func (d *depSet) subscribe(l Listener) {
	if l == nil {
		return
	}

	d.subMu.Lock()
	defer d.subMu.Unlock()

	lid := l.ID()
	for _, existing := range d.subs {
		if existing.ID() == lid {
			return
		}
	}

	d.subs = append(d.subs, l)
}

// unsubscribe removes a listener from this set.
func (d *depSet) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	d.subMu.Lock()
	defer d.subMu.Unlock()

	lid := l.ID()
	for i, existing := range d.subs {
		if existing.ID() == lid {
			// Remove by swapping with the last element (order doesn't matter)
			d.subs[i] = d.subs[len(d.subs)-1]
			d.subs = d.subs[:len(d.subs)-1]
			return
		}
	}
}

// track subscribes the currently running computation to this set, and
// records the set on the computation so it can unsubscribe before its next
// run. No-op when no computation is active.
func (d *depSet) track() {
	listener := getCurrentListener()
	if listener == nil {
		return
	}

	d.subscribe(listener)

	if st, ok := listener.(sourceTracker); ok {
		st.addSource(d)
	}
}

// notify tells all subscribers that the value behind this set changed.
// Uses copy-before-notify so no lock is held while running user code.
//
// Inside a batch, eager listeners (effects) are queued for the flush while
// lazy listeners (memos) are invalidated immediately, so a read within the
// batch never sees a stale cache.
func (d *depSet) notify() {
	d.subMu.RLock()
	subs := make([]Listener, len(d.subs))
	copy(subs, d.subs)
	d.subMu.RUnlock()

	statTriggers.Add(1)

	if getBatchDepth() > 0 {
		for _, sub := range subs {
			if s, ok := sub.(staleable); ok {
				s.markStale()
				continue
			}
			queuePendingUpdate(sub)
		}
		return
	}

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// len reports the current number of subscribers. Test hook.
func (d *depSet) len() int {
	d.subMu.RLock()
	defer d.subMu.RUnlock()
	return len(d.subs)
}

// depMap is the dependency store for one handle: a two-level mapping from
// property name to subscriber set, so triggering one property cannot notify
// subscribers of a different property on the same target.
type depMap struct {
	mu    sync.Mutex
	props map[string]*depSet
}

// forProp returns the subscriber set for a property, creating it if needed.
func (m *depMap) forProp(prop string) *depSet {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.props == nil {
		m.props = make(map[string]*depSet)
	}
	set, ok := m.props[prop]
	if !ok {
		set = &depSet{}
		m.props[prop] = set
	}
	return set
}

// track subscribes the currently running computation to a property.
// Creates the set lazily only when a computation is actually tracking;
// untracked reads allocate nothing.
func (m *depMap) track(prop string) {
	if getCurrentListener() == nil {
		return
	}
	m.forProp(prop).track()
}

// trigger notifies the subscriber set for a property, if one exists.
func (m *depMap) trigger(prop string) {
	m.mu.Lock()
	set := m.props[prop]
	m.mu.Unlock()

	if set != nil {
		set.notify()
	}
}
