package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/application/ports"
	"github.com/jhoicas/pharma-transfers/pkg/logger"
)

// Cabeceras de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// Idempotency repite la respuesta guardada cuando llega de nuevo la misma Idempotency-Key.
// La clave se aísla por empresa, usuario y ruta. Solo se guardan respuestas 2xx; cualquier
// otro resultado libera la clave para que el cliente pueda reintentar.
// Sin cabecera, o con store nil, la petición pasa sin cambios.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if store == nil || key == "" {
			return c.Next()
		}
		if len(key) > 200 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		scoped := strings.Join([]string{GetCompanyID(c), GetUserID(c), c.Method(), c.Path(), key}, ":")
		ctx := c.UserContext()

		if stored, err := store.Get(ctx, scoped); err != nil {
			log.Warn().Err(err).Msg("idempotencia: lectura fallida, se procesa sin clave")
			return c.Next()
		} else if stored != nil {
			return replay(c, stored)
		}

		ok, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Warn().Err(err).Msg("idempotencia: reserva fallida, se procesa sin clave")
			return c.Next()
		}
		if !ok {
			// Otra petición con la misma clave terminó entre Get y Reserve, o sigue en curso.
			if stored, err := store.Get(ctx, scoped); err == nil && stored != nil {
				return replay(c, stored)
			}
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code: "IDEMPOTENCY_IN_PROGRESS", Message: "hay una petición en curso con la misma Idempotency-Key",
			})
		}

		err = c.Next()
		status := c.Response().StatusCode()
		if err != nil || status < 200 || status >= 300 {
			if rerr := store.Release(ctx, scoped); rerr != nil {
				log.Warn().Err(rerr).Msg("idempotencia: no se pudo liberar la clave")
			}
			return err
		}
		resp := ports.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if serr := store.Save(ctx, scoped, resp, ttl); serr != nil {
			log.Warn().Err(serr).Msg("idempotencia: no se pudo guardar la respuesta")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, stored *ports.StoredResponse) error {
	c.Set(HeaderReplayed, "true")
	if stored.ContentType != "" {
		c.Set(fiber.HeaderContentType, stored.ContentType)
	}
	return c.Status(stored.Status).Send(stored.Body)
}
