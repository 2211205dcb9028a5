// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"errors"
	"fmt"

	"github.com/pdiddy/pmid-pdf/internal/apierror"
)

// Kind classifies a resolution error for callers.
type Kind int

const (
	// KindNotAvailable means no PDF could be produced for the PMID. It is an
	// expected outcome, not a fault.
	KindNotAvailable Kind = iota + 1

	// KindInternal means a storage or programming fault prevented a decision.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotAvailable:
		return "not_available"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is returned by Engine.Resolve. Every Error carries the PMID and a
// stable code suitable for the HTTP envelope.
type Error struct {
	Kind    Kind
	PMID    string
	Code    apierror.Code
	Message string

	// Err is the underlying cause, if any.
	Err error

	// PersistErr is set when recording a failed attempt could not be saved.
	// The caller still receives KindNotAvailable.
	PersistErr error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotAvailable reports whether err is a KindNotAvailable resolution error.
func IsNotAvailable(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindNotAvailable
}

// notAvailable builds the user-facing error. The wording depends on whether
// a download had been attempted before this call.
func notAvailable(pmid string, attemptedBefore bool, cause error) *Error {
	msg := fmt.Sprintf("Failed to retrieve PDF for PMID: %s", pmid)
	if attemptedBefore {
		msg = fmt.Sprintf("PDF not available for PMID: %s", pmid)
	}
	return &Error{
		Kind:    KindNotAvailable,
		PMID:    pmid,
		Code:    apierror.PDFNotAvailable,
		Message: msg,
		Err:     cause,
	}
}

func internal(pmid, op string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		PMID:    pmid,
		Code:    apierror.InternalServerError,
		Message: fmt.Sprintf("An error occurred while %s for PMID: %s", op, pmid),
		Err:     cause,
	}
}
