package quiz

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/store"
)

// Backoff maps a retry attempt (0-based) to a delay before resubscribing.
type Backoff func(attempt int) time.Duration

// DefaultBackoff doubles from half a second up to a 30 second cap.
func DefaultBackoff(attempt int) time.Duration {
	d := 500 * time.Millisecond << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// subscribeFunc establishes one store subscription, reporting stream
// failures through onError.
type subscribeFunc func(onError store.ErrorHandler) (store.Unsubscribe, error)

// watcherState is the lifecycle of a watcher: active → errored →
// resubscribing → active. Errors never reach request callers; the watcher
// retries with backoff until closed.
type watcherState int

const (
	watcherIdle watcherState = iota
	watcherActive
	watcherResubscribing
	watcherClosed
)

// watcher owns a single store subscription handle and keeps it alive. Only
// the watcher releases its handle, and it always releases the old handle
// before taking a new one.
type watcher struct {
	name      string
	backoff   Backoff
	subscribe subscribeFunc

	mu      sync.Mutex
	state   watcherState
	unsub   store.Unsubscribe
	attempt int
	timer   *time.Timer
}

func newWatcher(name string, backoff Backoff, subscribe subscribeFunc) *watcher {
	if backoff == nil {
		backoff = DefaultBackoff
	}
	return &watcher{name: name, backoff: backoff, subscribe: subscribe}
}

// start establishes the subscription. A failed first attempt is retried
// with backoff like any later failure; the error is returned so the caller
// can log it.
func (w *watcher) start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resubscribeLocked()
}

func (w *watcher) resubscribeLocked() error {
	if w.state == watcherClosed {
		return nil
	}

	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}

	unsub, err := w.subscribe(w.onError)
	if err != nil {
		w.state = watcherResubscribing
		w.scheduleRetryLocked()
		return err
	}

	w.unsub = unsub
	w.state = watcherActive
	w.attempt = 0
	return nil
}

// onError is invoked from the subscription's own goroutine when the stream
// breaks. The handle is dead at this point; release it and retry later.
func (w *watcher) onError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == watcherClosed {
		return
	}

	slog.Error("subscription failed, resubscribing", "watch", w.name, "attempt", w.attempt, "error", err)

	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
	w.state = watcherResubscribing
	w.scheduleRetryLocked()
}

func (w *watcher) scheduleRetryLocked() {
	delay := w.backoff(w.attempt)
	w.attempt++

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(delay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.state != watcherResubscribing {
			return
		}
		if err := w.resubscribeLocked(); err != nil {
			slog.Error("resubscribe attempt failed", "watch", w.name, "attempt", w.attempt, "error", err)
		}
	})
}

// close releases the handle and stops any pending retry. Idempotent.
func (w *watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = watcherClosed
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
}
