// Package lifecycle carries the application-lifetime signal shared with
// every host scope.
package lifecycle

import "sync"

// Lifetime signals application shutdown to interested services. It is bound
// into the root scope and forwarded into host scopes by the standard bridge
// set, so a host-local service can watch Stopping() without ever seeing the
// kernel.
type Lifetime struct {
	mu       sync.Mutex
	once     sync.Once
	stopping chan struct{}
	hooks    []func()
}

// New creates a Lifetime in the running state.
func New() *Lifetime {
	return &Lifetime{stopping: make(chan struct{})}
}

// Stopping returns a channel closed when shutdown begins.
func (l *Lifetime) Stopping() <-chan struct{} {
	return l.stopping
}

// OnStopping registers a hook invoked when shutdown begins. Hooks added after
// NotifyStopping run immediately.
func (l *Lifetime) OnStopping(fn func()) {
	l.mu.Lock()
	select {
	case <-l.stopping:
		l.mu.Unlock()
		fn()
		return
	default:
	}
	l.hooks = append(l.hooks, fn)
	l.mu.Unlock()
}

// NotifyStopping fires the stopping signal. Idempotent; hooks run once, in
// registration order.
func (l *Lifetime) NotifyStopping() {
	l.once.Do(func() {
		l.mu.Lock()
		hooks := l.hooks
		l.hooks = nil
		close(l.stopping)
		l.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
	})
}
