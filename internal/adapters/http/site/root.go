// Package site serves the service root: a JSON banner for API clients and
// a small landing page for browsers.
package site

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Banner is the message returned by GET /.
const Banner = "Scam Detection API is running. Use the /predict endpoint to POST job data."

type bannerResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Register attaches the root route to mux. Unmatched paths get a JSON 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler())
}

// RootHandler handles root path requests.
type RootHandler struct {
	index []byte
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{index: indexPage()}
}

// ServeHTTP handles GET / and answers 404 for anything the mux did not route.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "not_found", Message: "no route for " + r.URL.Path})
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "method_not_allowed", Message: "method not allowed"})
		return
	}

	if wantsHTML(r) && len(h.index) > 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(h.index)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse{Message: Banner})
}

// wantsHTML reports whether the client prefers HTML, as browsers do.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
