package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/awlabs/tasksync/internal/runstore"
)

func newTestServer(runs *runstore.Store) *mux.Router {
	r := mux.NewRouter()
	NewHandler(runs).RegisterRoutes(r)
	return r
}

func TestRunList(t *testing.T) {
	runs := runstore.NewStore()
	runs.Create(&runstore.Run{ID: "r1", Kind: "post_merge", Repo: "acme/site", Number: 42})
	runs.Complete("r1", []runstore.KeyResult{{TaskKey: "AW-1", Outcome: "created"}})

	rec := httptest.NewRecorder()
	newTestServer(runs).ServeHTTP(rec, httptest.NewRequest("GET", "/runs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body struct {
		Runs []runstore.Run `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Runs) != 1 || body.Runs[0].ID != "r1" {
		t.Errorf("runs = %+v", body.Runs)
	}
	if body.Runs[0].Results[0].TaskKey != "AW-1" {
		t.Errorf("results = %+v", body.Runs[0].Results)
	}
}

func TestRunDetail(t *testing.T) {
	runs := runstore.NewStore()
	runs.Create(&runstore.Run{ID: "r1", Kind: "comment_preview_url", Repo: "acme/site", Number: 7})

	rec := httptest.NewRecorder()
	newTestServer(runs).ServeHTTP(rec, httptest.NewRequest("GET", "/runs/r1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var run runstore.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if run.ID != "r1" || run.Kind != "comment_preview_url" {
		t.Errorf("run = %+v", run)
	}
}

func TestRunDetailNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(runstore.NewStore()).ServeHTTP(rec, httptest.NewRequest("GET", "/runs/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
