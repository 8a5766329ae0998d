package cli

import (
	"errors"
	"fmt"

	genspec "github.com/MinikPLayer/OpenApiCsGenerator/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// specUsageError maps structured spec errors into friendly messages.
func specUsageError(err error) error {
	var se *genspec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}
