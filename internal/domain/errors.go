package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidTransition   = errors.New("transición de estado inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente con datos actualizados")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
)

// Error es un error de dominio con contexto (ids, estado actual, cantidades) para
// que el caller pueda construir un mensaje preciso. errors.Is(err, Kind) funciona.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

// NewError construye un *Error. fields se interpreta como pares clave/valor.
func NewError(kind error, message string, fields ...string) *Error {
	e := &Error{Kind: kind, Message: message}
	if len(fields) > 0 {
		e.Fields = make(map[string]string, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			e.Fields[fields[i]] = fields[i+1]
		}
	}
	return e
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(parts, ", "))
}

func (e *Error) Unwrap() error { return e.Kind }

// Invalid atajo para errores de validación.
func Invalid(message string, fields ...string) *Error {
	return NewError(ErrInvalidInput, message, fields...)
}

// NotFound atajo para recursos que no resuelven en el alcance del actor.
func NotFound(message string, fields ...string) *Error {
	return NewError(ErrNotFound, message, fields...)
}

// FieldsOf devuelve el contexto de un error de dominio, o nil si err no lo tiene.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}
