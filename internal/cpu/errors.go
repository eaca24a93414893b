package cpu

import (
	"errors"
	"fmt"
)

var errNilReader = errors.New("no program source")

// LoadError reports a program image that could not be read. The CPU stays
// in the state it had before the load was attempted.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("program load failed: %v", e.Err)
	}
	return fmt.Sprintf("program load failed for %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
