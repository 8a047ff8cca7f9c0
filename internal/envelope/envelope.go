// Package envelope wraps the lifecycle of one asynchronous result.
package envelope

import "github.com/mmcdole/marquee/internal/domain"

// State is the active variant of an Envelope
type State int

const (
	Idle State = iota
	Pending
	Resolved
	Rejected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Ticket identifies the Begin call a completion belongs to
type Ticket uint64

// Envelope holds exactly one of Idle, Pending, Resolved{data} or Rejected{err}.
// Completions carrying a ticket from a superseded Begin are ignored.
type Envelope[T any] struct {
	state      State
	data       T
	err        *domain.APIError
	generation uint64
}

// Begin moves to Pending, clears previous data and error, and returns the
// ticket that the matching completion must present.
func (e *Envelope[T]) Begin() Ticket {
	var zero T
	e.generation++
	e.state = Pending
	e.data = zero
	e.err = nil
	return Ticket(e.generation)
}

// Succeed resolves the envelope if t is still the current ticket
func (e *Envelope[T]) Succeed(t Ticket, data T) bool {
	if !e.accepts(t) {
		return false
	}
	e.state = Resolved
	e.data = data
	e.err = nil
	return true
}

// Fail rejects the envelope if t is still the current ticket
func (e *Envelope[T]) Fail(t Ticket, err error) bool {
	if !e.accepts(t) {
		return false
	}
	apiErr := domain.AsAPIError(err)
	if apiErr == nil {
		apiErr = &domain.APIError{Message: "unknown error"}
	}
	var zero T
	e.state = Rejected
	e.data = zero
	e.err = apiErr
	return true
}

// Resolve installs pre-fetched data on an Idle envelope. Used for hydration
// only; it reports false and changes nothing once a fetch has begun.
func (e *Envelope[T]) Resolve(data T) bool {
	if e.state != Idle {
		return false
	}
	e.state = Resolved
	e.data = data
	return true
}

// Reject installs a pre-fetched failure on an Idle envelope
func (e *Envelope[T]) Reject(err error) bool {
	if e.state != Idle || err == nil {
		return false
	}
	e.state = Rejected
	e.err = domain.AsAPIError(err)
	return true
}

func (e *Envelope[T]) accepts(t Ticket) bool {
	return e.state == Pending && uint64(t) == e.generation
}

// State returns the active variant
func (e *Envelope[T]) State() State { return e.state }

// Data returns the resolved value, if any
func (e *Envelope[T]) Data() (T, bool) {
	return e.data, e.state == Resolved
}

// Err returns the rejection, if any
func (e *Envelope[T]) Err() *domain.APIError {
	if e.state != Rejected {
		return nil
	}
	return e.err
}

// Generation returns the number of Begin calls so far
func (e *Envelope[T]) Generation() uint64 { return e.generation }

// IsPending reports whether a fetch is outstanding
func (e *Envelope[T]) IsPending() bool { return e.state == Pending }
