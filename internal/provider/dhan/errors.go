package dhan

import (
	"errors"
	"fmt"
)

// Kind partitions fetch failures so callers can tell "no data" from
// "transient failure" from "malformed response" without giving up the
// tolerate-and-continue behavior: none of these is fatal.
type Kind int

const (
	// KindTransient covers network errors, timeouts and provider 5xx.
	// The affected (instrument, timeframe) tick is skipped.
	KindTransient Kind = iota
	// KindFormat means the response shape was unrecognized. Treated as
	// "no data" for that series.
	KindFormat
	// KindNotConfigured means credentials are absent. No request was made.
	KindNotConfigured
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindFormat:
		return "format"
	case KindNotConfigured:
		return "not_configured"
	}
	return "unknown"
}

// FetchError is a typed provider failure.
type FetchError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dhan %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("dhan %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func transientErr(op string, err error) *FetchError {
	return &FetchError{Kind: KindTransient, Op: op, Err: err}
}

func formatErr(op string, err error) *FetchError {
	return &FetchError{Kind: KindFormat, Op: op, Err: err}
}

// ErrKind extracts the failure kind, defaulting to transient for
// untyped errors.
func ErrKind(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}
