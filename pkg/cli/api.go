package cli

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/sprio/pkg/score"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// scoreAPI scores a JSON array of records and returns them in the same order.
func (h *handler) scoreAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, serverMaxUploadBytes)

	var records []*score.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected a JSON array of species records")
		return
	}
	for i, rec := range records {
		if rec == nil {
			writeError(w, http.StatusBadRequest, "record "+strconv.Itoa(i)+" is null")
			return
		}
	}

	rows, err := score.ScoreAll(r.Context(), records, h.workers)
	if err != nil {
		slog.Error("failed to score records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to score records")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func criteriaAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, score.Criteria())
}
