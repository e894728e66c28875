package profiletwin

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type messageBody struct {
	Message string       `json:"message"`
	Errors  []fieldError `json:"errors,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeMessage writes the backend's usual {"message": ...} error body.
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, messageBody{Message: message})
}

// writeValidation writes a 400 with field-level errors.
func writeValidation(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusBadRequest, messageBody{Message: "validation failed", Errors: fields})
}
