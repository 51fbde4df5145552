package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string, fields []wire.FieldError) {
	writeJSON(w, status, wire.Error{Code: code, Message: message, Fields: fields})
}

// decode reads a JSON body into dst. Unknown fields are rejected so typos
// surface as 400 rather than silently ignored updates.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, wire.CodeBadRequest, msg, nil)
		return false
	}
	return true
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeBadRequest, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps a service error onto a status code and wire.Error body.
func respondError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]wire.FieldError, len(verr.Errors))
		for i, fe := range verr.Errors {
			fields[i] = wire.FieldError{Field: fe.Field, Message: fe.Message}
		}
		writeError(w, http.StatusBadRequest, wire.CodeValidation, "validation failed", fields)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, wire.CodeValidation, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, wire.CodeUnauthorized, "unauthorized", nil)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, wire.CodeForbidden, publicMessage(err, "forbidden"), nil)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, wire.CodeNotFound, "not found", nil)
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, wire.CodeConflict, publicMessage(err, "conflict"), nil)
	default:
		log.ErrorContext(r.Context(), "internal error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, wire.CodeInternal, "internal server error", nil)
	}
}

// publicMessage returns the text of the domain sentinel err wraps, hiding
// any lower-level wrapping context.
func publicMessage(err error, fallback string) string {
	for _, known := range []error{
		domain.ErrNotInCouple,
		domain.ErrAlreadyInCouple,
		domain.ErrCoupleFull,
		domain.ErrJoinOwnCouple,
		domain.ErrRewardClaimed,
		domain.ErrBalanceBelowGoal,
		domain.ErrVersionMismatch,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return fallback
}

func queryBool(w http.ResponseWriter, r *http.Request, name string, def bool) (bool, bool) {
	raw := r.URL.Query().Get(name)
	switch raw {
	case "":
		return def, true
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	writeError(w, http.StatusBadRequest, wire.CodeBadRequest, fmt.Sprintf("%s must be a boolean", name), nil)
	return false, false
}
