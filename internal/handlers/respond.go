package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxJSONBody caps JSON request bodies. Uploads have their own limit.
const maxJSONBody = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError writes {"message": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeInternal logs err and sends a generic 500.
func writeInternal(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// writeFieldErrors sends a 400 with per-field messages.
func writeFieldErrors(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// decodeJSON reads a JSON body into dst. A type mismatch on a known field
// is reported as a field error so clients see which input was wrong. An
// empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) fieldErrors {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fieldErrors{{Field: typeErr.Field, Message: fmt.Sprintf("must be a %s", jsonKind(typeErr.Type.Kind().String()))}}
	}
	var fe *fieldError
	if errors.As(err, &fe) {
		return fieldErrors{*fe}
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fieldErrors{{Field: "body", Message: "request body too large"}}
	}
	return fieldErrors{{Field: "body", Message: "malformed JSON"}}
}

// jsonKind names a Go kind the way a JSON client thinks of it.
func jsonKind(kind string) string {
	switch {
	case kind == "string":
		return "string"
	case kind == "bool":
		return "boolean"
	case kind == "slice":
		return "list"
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "number"
	default:
		return "valid value"
	}
}
