package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"voxablog/internal/apperror"
)

// ErrorResponse is the error body of the blog and utility endpoints.
type ErrorResponse struct {
	Error string        `json:"error"`
	Kind  apperror.Kind `json:"kind"`
}

// AuthErrorResponse is the error body of the auth endpoints, which clients
// read from "message".
type AuthErrorResponse struct {
	Message string        `json:"message"`
	Kind    apperror.Kind `json:"kind"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func logFailure(err error) {
	if apperror.KindOf(err) == apperror.KindInternal || apperror.KindOf(err) == apperror.KindUpstream {
		slog.Error("request failed", "error", err)
	}
}

// WriteError answers with the status that matches the error kind.
func WriteError(w http.ResponseWriter, err error) {
	logFailure(err)
	kind := apperror.KindOf(err)
	writeJSON(w, ErrorResponse{Error: apperror.Message(err), Kind: kind}, apperror.HTTPStatus(kind))
}

func writeAuthError(w http.ResponseWriter, err error) {
	logFailure(err)
	kind := apperror.KindOf(err)
	writeJSON(w, AuthErrorResponse{Message: apperror.Message(err), Kind: kind}, apperror.HTTPStatus(kind))
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// decodeJSON reads a JSON body. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Wrap(apperror.KindValidation, "Invalid request body", err)
	}
	return nil
}

// validate runs the struct tags and turns the first failure into a
// readable validation error.
func (h *Handlers) validate(req interface{}) error {
	err := h.Validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Wrap(apperror.KindValidation, "Invalid request", err)
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]

	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		message = fmt.Sprintf("%s is invalid", field)
	}

	return apperror.Wrap(apperror.KindValidation, message, err)
}
