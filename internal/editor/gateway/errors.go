package gateway

import (
	"fmt"
	"strings"
)

// ComponentError names one component whose upsert failed.
type ComponentError struct {
	Component string
	Err       error
}

func (e ComponentError) Error() string {
	return fmt.Sprintf("component %q: %v", e.Component, e.Err)
}

func (e ComponentError) Unwrap() error {
	return e.Err
}

// SaveError aggregates the failed components of one save attempt. A save
// keeps going after an individual failure, so a SaveError can coexist with
// components that were written successfully — partial success is a real
// outcome and is reported, not papered over.
type SaveError struct {
	Failed []ComponentError
}

func (e *SaveError) Error() string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Component
	}
	return fmt.Sprintf("save failed for %d component(s): %s", len(e.Failed), strings.Join(names, ", "))
}

// Unwrap exposes the per-component errors to errors.Is / errors.As.
func (e *SaveError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i := range e.Failed {
		errs[i] = e.Failed[i]
	}
	return errs
}

// Components lists the names of the failed components.
func (e *SaveError) Components() []string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Component
	}
	return names
}
