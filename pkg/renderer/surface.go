package renderer

import "sync"

// Surface is a shared markup slot standing in for the document region a
// diagram renders into. It is the one piece of state touched by more than
// one party: the controller writes results, a misbehaving engine may
// inject stray nodes after the fact, and the janitor keeps removing
// denylisted nodes.
//
// All mutation goes through best-effort, idempotent removal or whole-slot
// replacement, so concurrent sweeps are commutative and safe to repeat.
type Surface struct {
	mu     sync.Mutex
	markup string
	watch  chan struct{}
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{watch: make(chan struct{}, 1)}
}

// Replace swaps the surface content and notifies the mutation watcher.
func (s *Surface) Replace(markup string) {
	s.mu.Lock()
	s.markup = markup
	s.mu.Unlock()
	s.notify()
}

// Inject appends a markup fragment, emulating an engine side effect that
// lands outside the controller's own write. Watchers are notified.
func (s *Surface) Inject(fragment string) {
	s.mu.Lock()
	s.markup += fragment
	s.mu.Unlock()
	s.notify()
}

// Markup returns the current surface content.
func (s *Surface) Markup() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markup
}

// Purge strips denylisted error nodes from the surface. It reports
// whether anything changed. Purging a clean surface is a no-op, so the
// sweep loop and the mutation watcher may race each other freely.
func (s *Surface) Purge() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markup == "" || !containsDenied(s.markup) {
		return false
	}
	cleaned := Sanitize(s.markup)
	changed := cleaned != s.markup
	s.markup = cleaned
	return changed
}

// Watch returns the mutation channel. Notifications are coalesced: the
// channel carries at most one pending signal regardless of how many
// writes occurred.
func (s *Surface) Watch() <-chan struct{} { return s.watch }

// notify signals the watcher without ever blocking a writer.
func (s *Surface) notify() {
	select {
	case s.watch <- struct{}{}:
	default:
	}
}
