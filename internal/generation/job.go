// Package generation drives the client-side lifecycle of one form
// generation job: submit, poll until the remote status resolves, decode the
// artifact and field list.
package generation

import (
	"errors"

	"github.com/formlens/formlens/internal/artifact"
	"github.com/formlens/formlens/internal/fields"
)

// Status is the client-side job state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSubmitted Status = "submitted"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// ErrPollTimeout means the remote job did not resolve within the bounded
// poll window. Without this bound a wedged remote job would poll forever.
var ErrPollTimeout = errors.New("generation: poll deadline exceeded")

// Job is the single active generation job of a review session. It is
// created on submit, mutated only by poll responses, and terminal at
// Completed or Error. Each new generation replaces it wholesale.
type Job struct {
	ID           string
	Status       Status
	ErrorMessage string

	// Set only when Status is Completed.
	Artifact *artifact.Artifact
	Fields   []fields.ExtractedField
}
