package aggregate

import "fmt"

// SourceReadError reports a build artifact that is missing, unreadable or
// not valid JSON.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("could not open file %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// DestinationWriteError reports an aggregated artifact that could not be
// written.
type DestinationWriteError struct {
	Name string
	Path string
	Err  error
}

func (e *DestinationWriteError) Error() string {
	return fmt.Sprintf("could not write file %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *DestinationWriteError) Unwrap() error {
	return e.Err
}
