package source

import (
	"context"
	"errors"
	"net"
	"time"
)

// Reason explains why a source produced no usable data.
type Reason string

const (
	ReasonTimeout     Reason = "timeout"
	ReasonAuthFailure Reason = "auth_failure"
	ReasonNotFound    Reason = "not_found"
	ReasonTransport   Reason = "transport_error"
	ReasonEmpty       Reason = "empty"
)

// Result is the outcome of one upstream call: either Ok with at least one
// item, or Unavailable with a Reason. Adapters normalize a successful but
// empty response to Unavailable(ReasonEmpty), so callers can always tell
// "nothing matched" apart from "source broken".
type Result[T any] struct {
	items  []T
	took   time.Duration
	reason Reason
	ok     bool
}

// Ok builds an available result. An empty item slice degrades to
// Unavailable(ReasonEmpty).
func Ok[T any](items []T, took time.Duration) Result[T] {
	if len(items) == 0 {
		return Unavailable[T](ReasonEmpty)
	}
	return Result[T]{items: items, took: took, ok: true}
}

// Unavailable builds a result carrying only the failure reason.
func Unavailable[T any](reason Reason) Result[T] {
	return Result[T]{reason: reason}
}

func (r Result[T]) Available() bool { return r.ok }

// Items returns the payload. Nil unless Available.
func (r Result[T]) Items() []T { return r.items }

// First returns the single payload item, for sources that return at most one.
func (r Result[T]) First() (T, bool) {
	if !r.ok || len(r.items) == 0 {
		var zero T
		return zero, false
	}
	return r.items[0], true
}

// Reason returns the failure reason. Empty string when Available.
func (r Result[T]) Reason() Reason { return r.reason }

// Took reports how long the upstream call took. Zero unless Available.
func (r Result[T]) Took() time.Duration { return r.took }

// FromError maps a transport-layer error into the Reason vocabulary.
// Adapters call it exactly once, at their own boundary; orchestration code
// never sees raw transport errors.
func FromError(err error) Reason {
	if err == nil {
		return ReasonEmpty
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}
