package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTypeWithoutValue   = errors.New("type with no value specified")
	ErrFormatWithoutValue = errors.New("format type with no value specified")
	ErrUnknownFormat      = errors.New("unknown format type")
	ErrNoTypeInformation  = errors.New("no custom or plain type specified")
)

// DecodeError reports a schema fragment that cannot be turned into a type
// name. Path holds the reference tokens from the decoded fragment down to the
// offending member.
type DecodeError struct {
	Reason error
	Value  string
	Path   []string
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Reason.Error())
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (at %s)", strings.Join(e.Path, "/"))
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Reason }

func decodeErr(reason error, value string, path []string) *DecodeError {
	return &DecodeError{Reason: reason, Value: value, Path: append([]string(nil), path...)}
}

// WithPrefix returns err with prefix prepended to its Path when err is a
// *DecodeError, and err unchanged otherwise.
func WithPrefix(err error, prefix ...string) error {
	var de *DecodeError
	if !errors.As(err, &de) {
		return err
	}
	out := *de
	out.Path = append(append([]string(nil), prefix...), de.Path...)
	return &out
}
