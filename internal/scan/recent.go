// ABOUTME: Time-windowed set of recently scanned codes
// ABOUTME: Suppresses repeat submissions of the same code within the window

package scan

import (
	"container/list"
	"sync"
	"time"
)

type recentEntry struct {
	at      time.Time
	element *list.Element
}

// recentCodes remembers codes for a fixed window. Entries are kept in a
// list ordered by last sighting so expiry and eviction work from the front.
type recentCodes struct {
	mu      sync.Mutex
	seen    map[string]*recentEntry
	order   *list.List
	window  time.Duration
	maxSize int
	now     func() time.Time
}

func newRecentCodes(window time.Duration, maxSize int) *recentCodes {
	return &recentCodes{
		seen:    make(map[string]*recentEntry),
		order:   list.New(),
		window:  window,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// checkAndMark reports whether code was seen inside the window. When it was
// not, the code is recorded. A zero window disables suppression.
func (r *recentCodes) checkAndMark(code string) bool {
	if r.window <= 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.expireLocked(now)

	if _, ok := r.seen[code]; ok {
		return true
	}

	if len(r.seen) >= r.maxSize {
		r.removeLocked(r.order.Front())
	}
	r.seen[code] = &recentEntry{at: now, element: r.order.PushBack(code)}
	return false
}

// forget drops code so the next submission is treated as new.
func (r *recentCodes) forget(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.seen[code]; ok {
		r.removeLocked(e.element)
	}
}

// expireLocked must be called with mu held.
func (r *recentCodes) expireLocked(now time.Time) {
	for front := r.order.Front(); front != nil; front = r.order.Front() {
		code, _ := front.Value.(string)
		if now.Sub(r.seen[code].at) < r.window {
			return
		}
		r.removeLocked(front)
	}
}

// removeLocked must be called with mu held.
func (r *recentCodes) removeLocked(e *list.Element) {
	if e == nil {
		return
	}
	code, _ := e.Value.(string)
	r.order.Remove(e)
	delete(r.seen, code)
}

func (r *recentCodes) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
