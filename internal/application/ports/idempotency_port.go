package ports

import (
	"context"
	"time"
)

// StoredResponse respuesta guardada de una petición con Idempotency-Key, para repetirla tal cual.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore puerto de salida para las claves de idempotencia de las rutas que mutan estado.
// El adaptador (Redis) debe ser atómico en Reserve: dos peticiones con la misma clave no pueden
// reservarla ambas.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. Devuelve false si ya estaba reservada o resuelta.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get devuelve la respuesta guardada; nil si no existe o si la petición original sigue en curso.
	Get(ctx context.Context, key string) (*StoredResponse, error)
	// Save reemplaza la reserva por la respuesta final.
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Release libera la reserva sin guardar respuesta (la petición falló y puede reintentarse).
	Release(ctx context.Context, key string) error
}
