// Package apperr agrupa la taxonomía de errores compartida por los módulos:
// validación local, fallas remotas de la plataforma, red caída y precondiciones.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetworkUnavailable marca fallas de transporte (dial, DNS, timeout).
	// Siempre viaja envuelto en un *RemoteError.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrPrecondition se usa para operaciones que nunca deben llegar a la red
	// (ej: borrar un registro sin id).
	ErrPrecondition = errors.New("precondition failed")

	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ValidationError es una falla local, previa a cualquier llamada remota.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validation construye un *ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RemoteError envuelve cualquier falla de las APIs de la plataforma
// (entidades, funciones, upload).
type RemoteError struct {
	Op     string
	Status int // 0 si no hubo respuesta HTTP
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote %s: status=%d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote construye un *RemoteError.
func Remote(op string, status int, err error) error {
	if err == nil {
		err = errors.New("upstream error")
	}
	return &RemoteError{Op: op, Status: status, Err: err}
}

// IsNetworkUnavailable reporta si err es la variante "sin conexión".
func IsNetworkUnavailable(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable)
}

// IsValidation reporta si err es un *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Status traduce un error al status HTTP que devuelven los handlers.
func Status(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var ve *ValidationError
	var re *RemoteError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTimestamp):
		return http.StatusBadRequest
	case errors.Is(err, ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNetworkUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &re):
		switch re.Status {
		case http.StatusNotFound:
			return http.StatusNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusForbidden
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage devuelve el texto que se le muestra al usuario.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	var re *RemoteError

	switch {
	case errors.As(err, &ve):
		return strings.TrimPrefix(ve.Error(), "validation: ")
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid timestamp"
	case errors.Is(err, ErrPrecondition):
		return "operation not allowed in the current state"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "sign in again to continue"
	case errors.Is(err, ErrNetworkUnavailable):
		return "check your connection and try again"
	case errors.As(err, &re):
		return "the service could not complete the request, please try again"
	default:
		return "internal error"
	}
}
