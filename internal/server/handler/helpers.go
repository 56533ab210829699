package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bufferlabs/buffer-solver/internal/domain"
)

// Error kind labels. They appear verbatim in response bodies and as the
// reason label on rejection metrics.
const (
	kindMalformedInput    = "malformed_input"
	kindSemanticViolation = "semantic_violation"
	kindInternalFault     = "internal_fault"
)

// errorResponse is the JSON body of every non-2xx response. Violations
// is populated only for semantic rejections.
type errorResponse struct {
	Error      string             `json:"error"`
	Kind       string             `json:"kind"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error","kind":"internal_fault"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response of the given kind.
func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// writeViolations sends the semantic rejection body. The status is
// distinct from malformed input so drivers can tell a broken request
// from a broken auction.
func writeViolations(w http.ResponseWriter, violations []domain.Violation) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:      "auction violates solver invariants",
		Kind:       kindSemanticViolation,
		Violations: violations,
	})
}
