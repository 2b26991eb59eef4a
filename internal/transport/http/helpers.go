package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quiz-session-engine/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var errBadPathID = errors.New("path id must be an integer")

// statusFor maps an engine failure kind to an HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindIllegalState, domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindCapacityExceeded:
		return http.StatusConflict
	}
	if errors.Is(err, domain.ErrEngineClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Error: "request failed"})
		return
	}
	resp := errorResponse{Error: err.Error()}
	if kind := domain.KindOf(err); kind != domain.KindUnknown {
		resp.Kind = kind.String()
	}
	writeJSON(w, status, resp)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, errBadPathID
	}
	return v, nil
}
