package engine

// notReadyError signals that the model handle has not finished loading.
type notReadyError struct{}

func (notReadyError) Error() string { return "model not loaded" }

// ErrNotReady is returned for requests arriving before Load completes.
func ErrNotReady() error { return notReadyError{} }

// IsNotReady reports whether err means the model handle is not ready yet.
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}

// emptyTranscriptError signals a request with no messages to answer.
type emptyTranscriptError struct{}

func (emptyTranscriptError) Error() string { return "transcript is empty" }

// ErrEmptyTranscript constructs an emptyTranscriptError.
func ErrEmptyTranscript() error { return emptyTranscriptError{} }

// IsEmptyTranscript reports whether err indicates an empty transcript.
func IsEmptyTranscript(err error) bool {
	_, ok := err.(emptyTranscriptError)
	return ok
}

// dependencyUnavailableError signals a missing external dependency (e.g., the
// llama runtime) so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
