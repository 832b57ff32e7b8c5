package engine

import (
	"context"

	"github.com/dmitrijs2005/subkeeper/internal/models"
)

// Subscribe registers a listener for snapshot updates and returns the
// function that removes it. If a snapshot already exists the listener is
// invoked with it immediately.
//
// Listeners are called synchronously from the updating goroutine, once per
// state replacement. Each invocation is isolated: a panicking listener is
// logged and does not block delivery to the others, and each listener
// receives its own deep copy of the snapshot, so mutating it affects
// neither the engine nor the other listeners.
//
// Update notifications run while the engine's transition lock is held. A
// listener must not call back into Configure, Refresh, Purchase,
// OnTransactionEvent or Close; doing so deadlocks. IsEntitled and
// GetCustomerInfo are safe to call from a listener.
func (e *Engine) Subscribe(fn func(*models.CustomerState)) (unsubscribe func()) {
	e.lmu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.lmu.Unlock()

	if s := e.state.Load(); s != nil {
		e.safeNotify(fn, s)
	}

	return func() {
		e.lmu.Lock()
		delete(e.listeners, id)
		e.lmu.Unlock()
	}
}

// notify fans the snapshot out to every registered listener.
func (e *Engine) notify(s *models.CustomerState) {
	e.lmu.Lock()
	fns := make([]func(*models.CustomerState), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.lmu.Unlock()

	for _, fn := range fns {
		e.safeNotify(fn, s)
	}
}

func (e *Engine) safeNotify(fn func(*models.CustomerState), s *models.CustomerState) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(context.Background(), "listener panicked", "panic", r)
		}
	}()
	fn(s.Clone())
}
