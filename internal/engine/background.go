package engine

import (
	"context"
	"sync"
	"time"
)

// startBackground launches the update-stream listener and, if enabled, the
// periodic refresh ticker for the lifetime of the current configuration.
// Callers hold cfgMu, so the previous listener set has always been stopped
// and drained before a new one starts.
func (e *Engine) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.bgMu.Lock()
	e.bgCancel = cancel
	e.bgDone = done
	e.bgMu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.listen(ctx)
	}()

	if e.refreshEvery > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.refreshLoop(ctx, e.refreshEvery)
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()
}

// stopBackground cancels the background tasks and waits until they are
// fully drained. After it returns no further update is processed; an update
// already mid-processing finishes first. Must not be called with e.mu held:
// a listener mid-update may be waiting on it.
func (e *Engine) stopBackground() {
	e.bgMu.Lock()
	cancel, done := e.bgCancel, e.bgDone
	e.bgCancel, e.bgDone = nil, nil
	e.bgMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// listen drains the store's asynchronous transaction-update stream,
// routing each update through OnTransactionEvent.
func (e *Engine) listen(ctx context.Context) {
	updates, err := e.purchases.TransactionUpdates(ctx)
	if err != nil {
		e.log.Error(ctx, "transaction update stream unavailable", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-updates:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				// cancelled between receive and dispatch
				return
			}
			if err := e.OnTransactionEvent(ctx, raw); err != nil {
				e.log.Warn(ctx, "transaction update not applied",
					"transaction_id", raw.TransactionID, "error", err)
			}
		}
	}
}

// refreshLoop periodically pulls a fresh snapshot, reusing Refresh's
// fallback semantics. Failures are logged, never fatal to the loop.
func (e *Engine) refreshLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Refresh(ctx); err != nil {
				e.log.Warn(ctx, "background refresh failed", "error", err)
			}
		}
	}
}
