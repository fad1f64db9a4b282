// Package web serves the operational JSON endpoints for inspecting sync runs.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/awlabs/tasksync/internal/runstore"
)

// Handler serves run listings and details.
type Handler struct {
	runs *runstore.Store
}

// NewHandler creates a web handler over the run store.
func NewHandler(runs *runstore.Store) *Handler {
	return &Handler{runs: runs}
}

// RegisterRoutes registers run inspection routes.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/runs", h.handleRunList).Methods("GET")
	r.HandleFunc("/runs/{id}", h.handleRunDetail).Methods("GET")
}

func (h *Handler) handleRunList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"runs": h.runs.List(),
	})
}

func (h *Handler) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, ok := h.runs.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
