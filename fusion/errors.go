package fusion

import "errors"

// errPrecondition tags the fatal, non-retryable precondition violation of
// mismatched slice lengths. Nil collaborators are reported by
// ErrNilCollaborator instead.
var errPrecondition = errors.New("precondition violation")
