package entities

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch reports parallel corpus slices of unequal length or an
// embedding whose dimensionality differs from the configured one. Always a
// construction-time failure, never a search-time one.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// GatewayError wraps a failed embedding or LLM capability call. The pipeline
// surfaces it with detail but never retries it.
type GatewayError struct {
	Op      string // "embed" or "complete"
	Timeout bool
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s gateway timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s gateway: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IsGatewayTimeout reports whether err is a gateway failure caused by a timeout.
func IsGatewayTimeout(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Timeout
}

// MalformedOutputError reports an LLM response that was expected to be JSON but
// was not. Stage handling differs: the admission filter treats it as rejection,
// the context selector discards the offending batch, everywhere else it is fatal.
type MalformedOutputError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: model output is not valid JSON: %v", e.Stage, e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }
