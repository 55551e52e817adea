// Package pipeline is the HTTP client for the remote extraction service.
// The service is consumed as an opaque job-submission/polling contract; how
// it extracts field values internally is out of scope here.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
)

// Remote job states as reported by GET /status/{job_id}.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Client talks to the remote pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a pipeline client. Generation jobs move large artifacts,
// so the per-request timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Document is one uploaded file part.
type Document struct {
	Name string
	Data []byte
}

// SubmitRequest carries everything the pipeline needs to fill a form:
// source medical records, the target form template and the field-coordinate
// specification for that template.
type SubmitRequest struct {
	Documents []Document
	Template  Document
	FieldSpec Document
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

// StatusResponse is the poll payload. Fields stays raw so the caller can
// schema-validate it before decoding.
type StatusResponse struct {
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
	ArtifactB64 string          `json:"artifact_b64,omitempty"`
	Fields      json.RawMessage `json:"fields,omitempty"`
}

// Health checks GET /health once. Any failure maps to ErrConnectivity.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health returned %d", ErrConnectivity, resp.StatusCode)
	}
	return nil
}

// Preflight verifies the service is reachable before a submission, retrying
// transient failures a few times with a fixed delay.
func (c *Client) Preflight(ctx context.Context) error {
	return retry.Do(
		func() error { return c.Health(ctx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// Submit uploads the documents and returns the acknowledged job id. A 2xx
// ack without a job id is a submission failure, not a pending job.
func (c *Client) Submit(ctx context.Context, sub SubmitRequest) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, doc := range sub.Documents {
		if err := writeFilePart(w, "documents", doc); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSubmission, err)
		}
	}
	if err := writeFilePart(w, "template", sub.Template); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	if err := writeFilePart(w, "field_spec", sub.FieldSpec); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: submit returned %d: %s", ErrSubmission, resp.StatusCode, errorBody(body))
	}

	var ack submitResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("%w: malformed submit ack: %v", ErrSubmission, err)
	}
	if ack.JobID == "" {
		return "", fmt.Errorf("%w: submit ack carried no job id", ErrSubmission)
	}
	return ack.JobID, nil
}

// Status fetches the current state of a job. Non-2xx responses and
// malformed bodies both map to ErrPoll.
func (c *Client) Status(ctx context.Context, jobID string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoll, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoll, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoll, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status returned %d: %s", ErrPoll, resp.StatusCode, errorBody(body))
	}

	var status StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: malformed status body: %v", ErrPoll, err)
	}
	switch status.Status {
	case StatusPending, StatusCompleted, StatusError:
		return &status, nil
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrPoll, status.Status)
	}
}

func writeFilePart(w *multipart.Writer, field string, doc Document) error {
	name := doc.Name
	if name == "" {
		name = field
	}
	part, err := w.CreateFormFile(field, filepath.Base(name))
	if err != nil {
		return err
	}
	_, err = part.Write(doc.Data)
	return err
}

// errorBody extracts a printable error from a plain-text or JSON error body.
func errorBody(body []byte) string {
	var resp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &resp) == nil && resp.Error != "" {
		return resp.Error
	}
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(bytes.TrimSpace(body))
}
