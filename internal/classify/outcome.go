package classify

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ppiankov/debatelens/internal/llm"
	"github.com/ppiankov/debatelens/internal/model"
)

// FailureReason says why a remote step produced no label
type FailureReason string

const (
	ReasonUnavailable FailureReason = "unavailable" // Not configured (no key, disabled)
	ReasonTimeout     FailureReason = "timeout"
	ReasonBadStatus   FailureReason = "bad_status"  // Non-2xx answer
	ReasonUnparseable FailureReason = "unparseable" // Answer received but not interpretable
	ReasonTransport   FailureReason = "transport"   // Anything else on the wire
)

// Failure is a typed step failure. It is recorded, never propagated past
// the cascade.
type Failure struct {
	Reason FailureReason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome is what a step returns: a concrete label, no signal, or a failure
// (which the cascade treats as no signal).
type Outcome struct {
	Label   model.Label
	Marker  string
	Failure *Failure
}

// Decided reports whether the step produced a concrete label
func (o Outcome) Decided() bool {
	return o.Label != ""
}

// NoSignal is the outcome of a step that did not fire
func NoSignal() Outcome {
	return Outcome{}
}

// Decide is the outcome of a step that fired
func Decide(label model.Label, marker string) Outcome {
	return Outcome{Label: label, Marker: marker}
}

// Failed is the outcome of a step that could not reach a verdict
func Failed(reason FailureReason, err error) Outcome {
	return Outcome{Failure: &Failure{Reason: reason, Err: err}}
}

// FailureFromError maps a remote call error to a failure reason
func FailureFromError(err error) Outcome {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Failed(ReasonTimeout, err)
	case errors.Is(err, llm.ErrEmptyResponse), errors.Is(err, llm.ErrMalformedResponse):
		return Failed(ReasonUnparseable, err)
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return Failed(ReasonBadStatus, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Failed(ReasonTimeout, err)
	}

	return Failed(ReasonTransport, err)
}
