package session

import (
	"context"
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period after the last edit before an
// automatic save starts.
const DefaultAutoSaveDelay = 2 * time.Second

// AutoSaverOption configures an AutoSaver.
type AutoSaverOption func(*AutoSaver)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) AutoSaverOption {
	return func(a *AutoSaver) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithOnSaved is called after every successful automatic save.
func WithOnSaved(fn func(rev uint64)) AutoSaverOption {
	return func(a *AutoSaver) {
		a.onSaved = fn
	}
}

// WithOnError is called when an automatic save fails.
func WithOnError(fn func(error)) AutoSaverOption {
	return func(a *AutoSaver) {
		a.onError = fn
	}
}

// AutoSaver saves a session once edits have stopped for the configured
// delay. Each edit restarts the timer.
type AutoSaver struct {
	session *Session
	delay   time.Duration
	onSaved func(rev uint64)
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	saving  sync.Mutex
	baseCtx context.Context
}

// NewAutoSaver attaches an auto saver to s. Saves run with a context derived
// from ctx; cancel it or call Close to stop.
func NewAutoSaver(ctx context.Context, s *Session, opts ...AutoSaverOption) *AutoSaver {
	a := &AutoSaver{
		session: s,
		delay:   DefaultAutoSaveDelay,
		baseCtx: ctx,
	}
	for _, opt := range opts {
		opt(a)
	}
	s.OnChange(func(uint64) { a.Trigger() })
	return a
}

// Trigger restarts the debounce timer.
func (a *AutoSaver) Trigger() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *AutoSaver) fire() {
	if a.baseCtx.Err() != nil {
		return
	}
	if _, err := a.Flush(a.baseCtx); err != nil && a.onError != nil {
		a.onError(err)
	}
}

// Flush saves immediately if the session has unsaved changes. It returns
// false when there was nothing to save.
func (a *AutoSaver) Flush(ctx context.Context) (bool, error) {
	a.saving.Lock()
	defer a.saving.Unlock()
	if !a.session.Dirty() {
		return false, nil
	}
	rev, err := a.session.Save(ctx)
	if err != nil {
		return false, err
	}
	if a.onSaved != nil {
		a.onSaved(rev)
	}
	return true, nil
}

// Close stops the timer. Pending changes are not saved; call Flush first.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
}
