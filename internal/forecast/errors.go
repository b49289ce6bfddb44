package forecast

import "fmt"

// FetchErrorKind classifies failures of the fetch pipeline.
type FetchErrorKind string

// Kinds surfaced by the remote fetcher and the document parser.
const (
	FetchKindSessionLaunch     FetchErrorKind = "session_launch"
	FetchKindNavigationTimeout FetchErrorKind = "navigation_timeout"
	FetchKindReadinessTimeout  FetchErrorKind = "readiness_timeout"
	FetchKindParse             FetchErrorKind = "parse"
)

// FetchError wraps a pipeline failure with its classification. The fetchers
// never retry; the error travels up through the coordinator to the caller.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a classified fetch error.
func NewFetchError(kind FetchErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// CorruptSnapshotError reports persisted state that could not be decoded.
// The coordinator downgrades it to "no cache"; it is never surfaced to API
// callers.
type CorruptSnapshotError struct {
	Path string
	Err  error
}

func (e *CorruptSnapshotError) Error() string {
	return fmt.Sprintf("corrupt snapshot at %s: %v", e.Path, e.Err)
}

func (e *CorruptSnapshotError) Unwrap() error {
	return e.Err
}
