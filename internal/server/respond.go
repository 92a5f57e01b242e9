package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/abhisek/cifra/internal/api"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.MessageResponse{Success: false, Message: msg})
}

func writeOK(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, api.MessageResponse{Success: true, Message: msg})
}

// decode reads a JSON body into v, rejecting oversized or malformed input.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeErr(w, http.StatusRequestEntityTooLarge, "Слишком большой запрос")
		case errors.Is(err, io.EOF):
			writeErr(w, http.StatusBadRequest, "Пустой запрос")
		default:
			writeErr(w, http.StatusBadRequest, "Некорректный JSON")
		}
		return false
	}
	return true
}
