package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/event"
)

// DefaultSnapshotEvery is how many recorded changes pass between snapshots.
const DefaultSnapshotEvery = 50

// AttachOption configures an Attachment.
type AttachOption func(*Attachment)

// WithSnapshotEvery sets the snapshot interval; zero disables periodic
// snapshots.
func WithSnapshotEvery(n int) AttachOption {
	return func(a *Attachment) {
		if n >= 0 {
			a.snapshotEvery = n
		}
	}
}

// WithErrorHandler receives write failures. Failures never affect the
// engine's commit.
func WithErrorHandler(fn func(error)) AttachOption {
	return func(a *Attachment) {
		a.onError = fn
	}
}

// WithTimeout bounds each database write.
func WithTimeout(d time.Duration) AttachOption {
	return func(a *Attachment) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// Attachment records an engine's changes into a store.
type Attachment struct {
	store         *Store
	engine        *engine.Engine
	docID         string
	base          uint64
	snapshotEvery int
	timeout       time.Duration
	onError       func(error)

	mu       sync.Mutex
	sub      event.Subscription
	recorded int
	failed   int
}

// Attach subscribes to e and records every committed change under docID.
// The engine's current document is snapshotted at the stored head
// revision, which becomes the offset for this session's revisions.
func (s *Store) Attach(ctx context.Context, e *engine.Engine, docID string, opts ...AttachOption) (*Attachment, error) {
	if docID == "" {
		return nil, ErrEmptyDocID
	}
	a := &Attachment{
		store:         s,
		engine:        e,
		docID:         docID,
		snapshotEvery: DefaultSnapshotEvery,
		timeout:       5 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}

	head, err := s.Head(ctx, docID)
	if err != nil {
		return nil, err
	}
	if rev := e.Revision(); head > rev {
		a.base = head - rev
	}
	if err := s.SaveSnapshot(ctx, docID, a.base+e.Revision(), e.Document()); err != nil {
		return nil, err
	}

	sub, err := e.Subscribe(a.record, event.WithPriority(event.PriorityHigh))
	if err != nil {
		return nil, fmt.Errorf("store: subscribing: %w", err)
	}
	a.sub = sub
	return a, nil
}

func (a *Attachment) record(ev engine.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	rev := a.base + ev.Revision
	err := a.store.Append(ctx, Change{
		DocID:         a.docID,
		Revision:      rev,
		TransactionID: ev.TransactionID,
		Reason:        ev.Reason,
		Description:   ev.Description,
		Operations:    ev.Operations,
	})
	if err != nil {
		a.fail(err)
		return
	}

	a.mu.Lock()
	a.recorded++
	n := a.recorded
	a.mu.Unlock()

	if a.snapshotEvery > 0 && n%a.snapshotEvery == 0 {
		if err := a.store.SaveSnapshot(ctx, a.docID, rev, a.engine.Document()); err != nil {
			a.fail(err)
		}
	}
}

func (a *Attachment) fail(err error) {
	a.mu.Lock()
	a.failed++
	a.mu.Unlock()
	if a.onError != nil {
		a.onError(err)
	}
}

// Base returns the revision offset of this session.
func (a *Attachment) Base() uint64 {
	return a.base
}

// Recorded returns the number of changes written.
func (a *Attachment) Recorded() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recorded
}

// Failed returns the number of failed writes.
func (a *Attachment) Failed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

// Detach stops recording and writes a final snapshot.
func (a *Attachment) Detach(ctx context.Context) error {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()
	if sub == nil {
		return nil
	}
	if err := a.engine.Unsubscribe(sub); err != nil {
		return err
	}
	return a.store.SaveSnapshot(ctx, a.docID, a.base+a.engine.Revision(), a.engine.Document())
}
