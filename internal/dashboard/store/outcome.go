package store

import (
	"context"
	"fmt"
)

// Outcome is the sync state of one optimistic mutation.
type Outcome int

const (
	// Pending: applied locally, remote write in flight.
	Pending Outcome = iota
	// Applied: applied locally and confirmed by the remote store.
	Applied
	// RolledBack: the remote write failed and the local change was reverted.
	RolledBack
	// Diverged: the remote write failed and the local change was kept.
	Diverged
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Applied:
		return "applied"
	case RolledBack:
		return "rolled_back"
	case Diverged:
		return "diverged"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Receipt tracks the remote half of a mutation. The local half has already
// happened by the time a Receipt is handed out.
type Receipt struct {
	Op string
	ID string

	done    chan struct{}
	outcome Outcome
	err     error
}

func newReceipt(op, id string) *Receipt {
	return &Receipt{Op: op, ID: id, done: make(chan struct{})}
}

func (r *Receipt) resolve(o Outcome, err error) {
	r.outcome = o
	r.err = err
	close(r.done)
}

// Done is closed once the remote write has settled.
func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Outcome reports the current state without blocking.
func (r *Receipt) Outcome() Outcome {
	select {
	case <-r.done:
		return r.outcome
	default:
		return Pending
	}
}

// Err is the remote failure, if any. Nil while pending.
func (r *Receipt) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the remote write settles or ctx ends. On ctx expiry it
// returns Pending with the context error; the write itself keeps going.
func (r *Receipt) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-r.done:
		return r.outcome, r.err
	case <-ctx.Done():
		return Pending, ctx.Err()
	}
}

// RollbackPolicy selects which failed remote writes undo their local change.
type RollbackPolicy int

const (
	// RollbackCreates reverts failed creates only; failed updates and
	// deletes stay applied locally and are reported as Diverged.
	RollbackCreates RollbackPolicy = iota
	// RollbackAll reverts every failed mutation.
	RollbackAll
)

func ParseRollbackPolicy(s string) (RollbackPolicy, error) {
	switch s {
	case "", "creates":
		return RollbackCreates, nil
	case "all":
		return RollbackAll, nil
	}
	return RollbackCreates, fmt.Errorf("unknown rollback policy %q", s)
}

func (p RollbackPolicy) String() string {
	if p == RollbackAll {
		return "all"
	}
	return "creates"
}
