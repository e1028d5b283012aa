package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dori/leadboard/internal/model"
)

// Store persists the CRM document
type Store interface {
	Load(ctx context.Context, key string) (*model.Document, error)
	Save(ctx context.Context, key string, doc model.Document) (int64, error)
}

// saveTimeout bounds a single background save
const saveTimeout = 10 * time.Second

// Autosaver writes document snapshots in the background. Only the latest
// snapshot is kept: a burst of moves produces one save of the final state.
// A failed save is reported and dropped; the in-memory document is never
// rolled back.
type Autosaver struct {
	store Store
	key   string
	log   logrus.FieldLogger

	mu       sync.Mutex
	pending  *model.Document
	lastErr  error
	revision int64
	onError  []func(error)
	onSaved  []func(int64)

	wake  chan struct{}
	flush chan chan struct{}
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewAutosaver starts the background saver for key
func NewAutosaver(store Store, key string, log logrus.FieldLogger) *Autosaver {
	a := &Autosaver{
		store: store,
		key:   key,
		log:   log.WithField("key", key),
		wake:  make(chan struct{}, 1),
		flush: make(chan chan struct{}),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Push queues doc for saving, replacing anything not yet written. It never
// blocks, so it is safe to call from the service's change hook.
func (a *Autosaver) Push(doc model.Document) {
	a.mu.Lock()
	a.pending = &doc
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// OnError registers a callback for failed saves
func (a *Autosaver) OnError(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = append(a.onError, fn)
}

// OnSaved registers a callback for successful saves
func (a *Autosaver) OnSaved(fn func(revision int64)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onSaved = append(a.onSaved, fn)
}

// Revision returns the revision of the last successful save
func (a *Autosaver) Revision() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.revision
}

// Flush waits until everything pushed before the call has been saved. The
// error describes the last save attempt, which may predate this call when
// nothing was pending: a failed snapshot is dropped, so the store stays
// behind memory until a later save succeeds and clears the error.
func (a *Autosaver) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case a.flush <- reply:
	case <-a.done:
		return a.err()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return a.err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close saves what is pending and stops the background goroutine
func (a *Autosaver) Close() error {
	a.once.Do(func() { close(a.stop) })
	<-a.done
	return a.err()
}

func (a *Autosaver) err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *Autosaver) run() {
	defer close(a.done)
	for {
		select {
		case <-a.wake:
			a.saveLatest()
		case reply := <-a.flush:
			a.saveLatest()
			close(reply)
		case <-a.stop:
			a.saveLatest()
			return
		}
	}
}

func (a *Autosaver) saveLatest() {
	a.mu.Lock()
	doc := a.pending
	a.pending = nil
	a.mu.Unlock()
	if doc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	rev, err := a.store.Save(ctx, a.key, *doc)

	a.mu.Lock()
	a.lastErr = err
	if err == nil {
		a.revision = rev
	}
	onError := append([]func(error){}, a.onError...)
	onSaved := append([]func(int64){}, a.onSaved...)
	a.mu.Unlock()

	if err != nil {
		a.log.WithError(err).Error("save failed")
		for _, fn := range onError {
			fn(err)
		}
		return
	}
	a.log.WithField("revision", rev).Debug("saved")
	for _, fn := range onSaved {
		fn(rev)
	}
}
