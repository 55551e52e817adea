package pipeline

import "errors"

// Error taxonomy for the remote pipeline. All of these terminate the active
// job and surface to the user as a single human-readable notice; none of
// them trigger an automatic whole-job retry.
var (
	// ErrConnectivity means the service is unreachable (failed health
	// check or network failure).
	ErrConnectivity = errors.New("pipeline unreachable")

	// ErrSubmission means the submit call failed or returned no job id.
	ErrSubmission = errors.New("job submission failed")

	// ErrPoll means a status poll returned non-2xx or a malformed body.
	// A single bad poll response is fatal for the job, not retried.
	ErrPoll = errors.New("status poll failed")

	// ErrRemoteProcessing means the remote job finished in the error state.
	ErrRemoteProcessing = errors.New("remote processing failed")
)
