package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrPermanentlyUnavailable marks a field whose upstream data was removed
	// for good. It is never returned for a field that simply did not match.
	ErrPermanentlyUnavailable = errors.New("field permanently unavailable")

	// ErrUnknownField is returned for names that are not in the registry.
	ErrUnknownField = errors.New("unknown field")
)

// FetchError reports that the page for URL could not be retrieved.
// No partial record accompanies it.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TransformError reports a match whose post-processing failed.
// The engine logs it and treats the field as absent.
type TransformError struct {
	Field string
	Raw   string
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transforming %s %q: %v", e.Field, e.Raw, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
