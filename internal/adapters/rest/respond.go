package rest

import (
	"CivicPulse/internal/core/domain"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:          http.StatusNotFound,
	domain.KindUnauthorized:      http.StatusForbidden,
	domain.KindInvalidRoleTarget: http.StatusUnprocessableEntity,
	domain.KindIllegalState:      http.StatusConflict,
	domain.KindOutOfRange:        http.StatusUnprocessableEntity,
	domain.KindValidation:        http.StatusBadRequest,
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates domain errors into the JSON error envelope.
// Errors without a kind become a 500 whose text is not exposed.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
		return
	}
	status, ok := kindStatus[de.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorBody{Error: string(de.Kind), ErrorDescription: de.Message})
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="civicpulse"`)
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated", ErrorDescription: msg})
}

type messageBody struct {
	Message string `json:"message"`
}
