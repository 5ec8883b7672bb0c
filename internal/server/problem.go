package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/illarion/pph/internal/core"
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeProblem(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}
	if p.RequestID == "" && r != nil {
		p.RequestID = RequestIDFrom(r.Context())
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblem(w, r, Problem{Status: status, Detail: detail})
}

// problemFor maps domain errors onto HTTP problems. Unknown errors become
// a 500 without detail.
func problemFor(err error) Problem {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return Problem{Status: http.StatusRequestEntityTooLarge, Detail: "request body too large"}
	case errors.Is(err, core.ErrInvalidInput):
		return Problem{Status: http.StatusBadRequest, Title: "Invalid input", Detail: err.Error()}
	case errors.Is(err, core.ErrUnsupportedAlphabet):
		return Problem{Status: http.StatusBadRequest, Title: "Unsupported alphabet", Detail: err.Error()}
	case errors.Is(err, core.ErrOverflow):
		return Problem{Status: http.StatusUnprocessableEntity, Title: "Numeric overflow", Detail: err.Error()}
	default:
		return Problem{Status: http.StatusInternalServerError}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
