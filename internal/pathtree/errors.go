package pathtree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoOperation        = errors.New("path item declares no operation")
	ErrMultipleOperations = errors.New("path item declares more than one operation")
	ErrUnknownVerb        = errors.New("invalid api type")
	ErrBodyNotAllowed     = errors.New("request body is only allowed on post")
)

// OperationError reports a path item that cannot be turned into an
// operation. Path holds the reference tokens from the path item down to the
// offending member.
type OperationError struct {
	Reason error
	Verb   string
	Path   []string
}

func (e *OperationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason.Error())
	if e.Verb != "" {
		fmt.Fprintf(&b, " %q", e.Verb)
	}
	return b.String()
}

func (e *OperationError) Unwrap() error { return e.Reason }
