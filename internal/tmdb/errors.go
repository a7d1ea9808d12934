package tmdb

import (
	"errors"
	"fmt"
)

// ErrInvalidRequestKind is a programmer error: the request kind has no endpoint.
var ErrInvalidRequestKind = errors.New("invalid metadata request kind")

// UpstreamRequestError reports a non-200 response or a transport failure.
// Callers decide whether to retry; the client never does.
type UpstreamRequestError struct {
	Kind       Kind
	Param      string
	StatusCode int
	Reason     string
	Err        error
}

func (e *UpstreamRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("metadata %s %q: HTTP %d %s", e.Kind, e.Param, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("metadata %s %q: %s: %v", e.Kind, e.Param, e.Reason, e.Err)
}

func (e *UpstreamRequestError) Unwrap() error { return e.Err }

// IsUpstream reports whether err came from a failed metadata request.
func IsUpstream(err error) bool {
	var e *UpstreamRequestError
	return errors.As(err, &e)
}
