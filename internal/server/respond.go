package server

import (
	"encoding/json"
	"net/http"

	"aisim/internal/apierrors"
)

// envelope is the JSON response shape shared by every API endpoint.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

// respondClassified maps an error's kind to an HTTP status.
func respondClassified(w http.ResponseWriter, err error, message string) {
	switch apierrors.KindOf(err) {
	case apierrors.KindValidation, apierrors.KindSignature:
		respondError(w, http.StatusBadRequest, message)
	case apierrors.KindNotFound:
		respondError(w, http.StatusNotFound, message)
	case apierrors.KindUpstream:
		respondError(w, http.StatusBadGateway, message)
	default:
		respondError(w, http.StatusInternalServerError, message)
	}
}
