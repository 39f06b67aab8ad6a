package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNoJSON         = errors.New("oracle reply is not json")
	ErrSchemaMismatch = errors.New("oracle reply does not match schema")
	ErrEmptyReply     = errors.New("oracle reply is empty")
)

// StatusError is returned for non-2xx oracle responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status: %d", e.Code)
}

// FailureReason classifies an oracle error into a short metric-friendly label.
func FailureReason(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema"
	case errors.Is(err, ErrNoJSON), errors.Is(err, ErrEmptyReply):
		return "parse"
	}
	return "transport"
}
