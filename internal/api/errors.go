package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/store"
)

// Error codes returned in the error envelope.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeStoreError    = "STORE_ERROR"
	CodeConfigMissing = "CONFIG_MISSING"
	CodeInternal      = "INTERNAL_ERROR"
)

// Error is the JSON error envelope.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Status  int               `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Summary renders the message and field details on one line.
func (e *Error) Summary() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Details[k])
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func newError(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

func errBadRequest(message string) *Error {
	return newError(http.StatusBadRequest, CodeBadRequest, message)
}

func errValidation(fields map[string]string) *Error {
	e := newError(http.StatusBadRequest, CodeValidation, "validation failed")
	e.Details = fields
	return e
}

func errNotFound(resource, id string) *Error {
	e := newError(http.StatusNotFound, CodeNotFound, resource+" not found")
	e.Details = map[string]string{"id": id}
	return e
}

// errConfigMissing names the settings an operator has to provide.
func errConfigMissing() *Error {
	e := newError(http.StatusServiceUnavailable, CodeConfigMissing, "store is not configured")
	e.Details = map[string]string{
		"store.database_url": "set DATABASE_URL or LADAK_STORE_DATABASE_URL",
		"store.driver":       "or set LADAK_STORE_DRIVER=sqlite",
	}
	return e
}

// StoreError maps a store failure onto the envelope. Unclassified failures
// keep the backend message.
func StoreError(log zerolog.Logger, resource, id string, err error) *Error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errNotFound(resource, id)
	case errors.Is(err, store.ErrDuplicate):
		e := newError(http.StatusConflict, CodeConflict, resource+" already exists")
		e.Details = map[string]string{"id": id}
		return e
	case errors.Is(err, store.ErrConfigMissing):
		return errConfigMissing()
	}
	log.Error().Err(err).Str("resource", resource).Msg("store operation failed")
	return newError(http.StatusInternalServerError, CodeStoreError, err.Error())
}
