package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/maintinsight/maintinsight/core"
	"github.com/maintinsight/maintinsight/internal/contract"
	"github.com/maintinsight/maintinsight/internal/ingest"
	"github.com/maintinsight/maintinsight/schema"
)

const bytesPerMB = 1 << 20

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing_features,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var missing *contract.MissingFeaturesError
	if errors.As(err, &missing) {
		resp.Missing = missing.Missing
	}
	writeJSON(w, status, resp)
}

// statusFor maps pipeline failures to response codes.
func statusFor(err error) int {
	var (
		missing  *contract.MissingFeaturesError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingest.ErrMalformedCSV):
		return http.StatusBadRequest
	default:
		// ScoringError and ModelLoadError included
		return http.StatusInternalServerError
	}
}

func (s *Server) describeModel(w http.ResponseWriter, _ *http.Request) {
	mdl, err := s.provider.Model()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, mdl.Info())
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	includeRecords := true
	if raw := r.URL.Query().Get("records"); raw != "" {
		v, err := contract.ParseBoolString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid records parameter: %w", err))
			return
		}
		includeRecords = v
	}

	body := http.MaxBytesReader(w, r.Body, int64(s.maxUploadMB())*bytesPerMB)
	data, err := io.ReadAll(body)
	if err != nil {
		writeError(w, statusFor(err), fmt.Errorf("failed to read request body: %w", err))
		return
	}

	ctx := core.WithSuppressHeader(r.Context())
	result, err := core.GetAnalysisResults(ctx, s.cfg, s.provider, s.mgr, data, "http-upload")
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, schema.NewAnalysisReport(result, s.cfg.ComplianceThreshold, includeRecords))
}

func (s *Server) maxUploadMB() int {
	if s.cfg.MaxUploadMB <= 0 {
		return contract.DefaultMaxUploadMB
	}
	return s.cfg.MaxUploadMB
}
