package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/illarion/pph/internal/bruteforce"
	"github.com/illarion/pph/internal/core"
	"github.com/illarion/pph/internal/crypto"
	"github.com/illarion/pph/internal/metadata"
	"github.com/illarion/pph/internal/strength"
)

type hardenRequest struct {
	Password   string  `json:"password"`
	Iterations int     `json:"iterations,omitempty"`
	GuessRate  float64 `json:"guess_rate,omitempty"`
	metadata.Record
}

type hardenedVariants struct {
	Short         string                      `json:"short"`
	Medium        string                      `json:"medium"`
	Long          string                      `json:"long"`
	ShortEntropy  float64                     `json:"short_entropy"`
	MediumEntropy float64                     `json:"medium_entropy"`
	LongEntropy   float64                     `json:"long_entropy"`
	Analysis      map[string]*strength.Report `json:"analysis"`
}

type cryptoDetails struct {
	Algorithm  string `json:"algorithm"`
	Iterations int    `json:"iterations"`
	Salt       string `json:"salt"`
}

type hardenResponse struct {
	Success       bool              `json:"success"`
	Original      *strength.Report  `json:"original"`
	Hardened      hardenedVariants  `json:"hardened"`
	CryptoDetails cryptoDetails     `json:"crypto_details"`
	MetadataHints map[string]string `json:"metadata_hints"`
}

type analyzeRequest struct {
	Password  string  `json:"password"`
	GuessRate float64 `json:"guess_rate,omitempty"`
}

type analyzeResponse struct {
	Success  bool             `json:"success"`
	Analysis *strength.Report `json:"analysis"`
}

type simulateRequest struct {
	Password    string `json:"password"`
	MaxAttempts int    `json:"max_attempts"`
	Strategy    string `json:"strategy"`
	Seed        uint64 `json:"seed"`
}

type simulateResponse struct {
	Success bool               `json:"success"`
	Result  *bruteforce.Result `json:"result"`
}

var errPasswordRequired = fmt.Errorf("%w: password is required", core.ErrInvalidInput)

func (s *Server) handleHarden(w http.ResponseWriter, r *http.Request) {
	var req hardenRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		s.fail(w, r, errPasswordRequired)
		return
	}

	if req.Iterations != 0 && (req.Iterations < crypto.MinIters || req.Iterations > s.maxIters) {
		s.fail(w, r, fmt.Errorf("%w: iterations must be between %d and %d", core.ErrInvalidInput, crypto.MinIters, s.maxIters))
		return
	}
	h := s.hardener.With(req.Iterations, req.GuessRate)

	password := []byte(req.Password)
	defer crypto.ClearBytes(password)

	hd, err := h.Harden(password, req.Record)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	analysis, err := h.AnalyzeHardened(password, req.Record, hd)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, hardenResponse{
		Success:  true,
		Original: analysis.Original,
		Hardened: hardenedVariants{
			Short:         hd.Short,
			Medium:        hd.Medium,
			Long:          hd.Long,
			ShortEntropy:  analysis.Variants[crypto.Short.String()].Entropy,
			MediumEntropy: analysis.Variants[crypto.Medium.String()].Entropy,
			LongEntropy:   analysis.Variants[crypto.Long.String()].Entropy,
			Analysis:      analysis.Variants,
		},
		CryptoDetails: cryptoDetails{
			Algorithm:  hd.Algorithm,
			Iterations: hd.Iterations,
			Salt:       hd.SaltHex(),
		},
		MetadataHints: metadata.Hints(req.Record),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		s.fail(w, r, errPasswordRequired)
		return
	}

	report, err := s.hardener.With(0, req.GuessRate).AnalyzeStrength(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, Analysis: report})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req := simulateRequest{MaxAttempts: bruteforce.DefaultMaxAttempts}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		s.fail(w, r, errPasswordRequired)
		return
	}
	strategy, err := bruteforce.ParseStrategy(req.Strategy)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.hardener.Simulate(r.Context(), req.Password, bruteforce.Options{
		MaxAttempts: min(req.MaxAttempts, s.maxAttempts),
		Strategy:    strategy,
		Seed:        req.Seed,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, simulateResponse{Success: true, Result: res})
}

// decode reads a single JSON object. It writes the problem response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.fail(w, r, err)
			return false
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		writeProblem(w, r, Problem{Status: http.StatusBadRequest, Title: "Malformed JSON", Detail: err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	if p.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeProblem(w, r, p)
}
