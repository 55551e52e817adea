package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealth(t *testing.T) {
	t.Run("healthy service", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		if err := NewClient(srv.URL).Health(context.Background()); err != nil {
			t.Fatalf("health: %v", err)
		}
	})

	t.Run("non-2xx maps to connectivity", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := NewClient(srv.URL).Health(context.Background())
		if !errors.Is(err, ErrConnectivity) {
			t.Fatalf("expected ErrConnectivity, got %v", err)
		}
	})

	t.Run("unreachable host maps to connectivity", func(t *testing.T) {
		err := NewClient("http://127.0.0.1:1").Health(context.Background())
		if !errors.Is(err, ErrConnectivity) {
			t.Fatalf("expected ErrConnectivity, got %v", err)
		}
	})
}

func TestSubmit(t *testing.T) {
	sub := SubmitRequest{
		Documents: []Document{
			{Name: "records1.pdf", Data: []byte("doc one")},
			{Name: "records2.pdf", Data: []byte("doc two")},
		},
		Template:  Document{Name: "form.pdf", Data: []byte("template")},
		FieldSpec: Document{Name: "fields.json", Data: []byte(`{}`)},
	}

	t.Run("uploads all parts and returns the job id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/submit" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			if got := len(r.MultipartForm.File["documents"]); got != 2 {
				t.Errorf("expected 2 document parts, got %d", got)
			}
			for _, field := range []string{"template", "field_spec"} {
				if got := len(r.MultipartForm.File[field]); got != 1 {
					t.Errorf("expected 1 %s part, got %d", field, got)
				}
			}
			w.Write([]byte(`{"job_id":"job-123"}`))
		}))
		defer srv.Close()

		jobID, err := NewClient(srv.URL).Submit(context.Background(), sub)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if jobID != "job-123" {
			t.Errorf("expected job-123, got %q", jobID)
		}
	})

	t.Run("ack without job id fails submission", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Submit(context.Background(), sub)
		if !errors.Is(err, ErrSubmission) {
			t.Fatalf("expected ErrSubmission, got %v", err)
		}
	})

	t.Run("rejection surfaces the service error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"template is not a PDF"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Submit(context.Background(), sub)
		if !errors.Is(err, ErrSubmission) {
			t.Fatalf("expected ErrSubmission, got %v", err)
		}
		if !strings.Contains(err.Error(), "template is not a PDF") {
			t.Errorf("service error lost: %v", err)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("known statuses pass through", func(t *testing.T) {
		for _, status := range []string{StatusPending, StatusCompleted, StatusError} {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/status/job-9" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Write([]byte(`{"status":"` + status + `"}`))
			}))

			resp, err := NewClient(srv.URL).Status(context.Background(), "job-9")
			srv.Close()
			if err != nil {
				t.Fatalf("status %s: %v", status, err)
			}
			if resp.Status != status {
				t.Errorf("expected %s, got %s", status, resp.Status)
			}
		}
	})

	t.Run("unknown status maps to poll error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"paused"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Status(context.Background(), "job-9")
		if !errors.Is(err, ErrPoll) {
			t.Fatalf("expected ErrPoll, got %v", err)
		}
	})

	t.Run("malformed body maps to poll error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Status(context.Background(), "job-9")
		if !errors.Is(err, ErrPoll) {
			t.Fatalf("expected ErrPoll, got %v", err)
		}
	})

	t.Run("non-2xx maps to poll error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Status(context.Background(), "job-9")
		if !errors.Is(err, ErrPoll) {
			t.Fatalf("expected ErrPoll, got %v", err)
		}
	})

	t.Run("completed response carries artifact and fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"completed","artifact_b64":"cGRm","fields":{"fields":[]}}`))
		}))
		defer srv.Close()

		resp, err := NewClient(srv.URL).Status(context.Background(), "job-9")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if resp.ArtifactB64 != "cGRm" {
			t.Errorf("artifact lost: %q", resp.ArtifactB64)
		}
		if len(resp.Fields) == 0 {
			t.Error("fields payload lost")
		}
	})
}

func TestErrorBody(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"json error", `{"error":"bad template"}`, "bad template"},
		{"plain text", "internal failure\n", "internal failure"},
		{"json without error key", `{"detail":"x"}`, `{"detail":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errorBody([]byte(tc.body)); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
