package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-transfers/internal/application/ports"
	"github.com/jhoicas/pharma-transfers/internal/application/transfer"
	"github.com/jhoicas/pharma-transfers/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TransferUC *transfer.UseCase
	JWTSecret  string
	// Idempotency nil desactiva el soporte de Idempotency-Key.
	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	idem := Idempotency(deps.Idempotency, ttl, log.Component("idempotency"))
	h := NewTransferHandler(deps.TransferUC, log)

	// Traslados
	transfers := api.Group("/transfers")
	transfers.Post("/", idem, h.Create)
	transfers.Get("/", h.List)
	transfers.Get("/:id", h.GetByID)
	transfers.Get("/:id/history", h.History)
	transfers.Get("/:id/slip.pdf", h.Slip)
	transfers.Post("/:id/approve-all", idem, h.ApproveAll)
	transfers.Post("/:id/cancel", idem, RequireRole("ADMIN", "OWNER"), h.CancelTransfer)

	// Ítems
	items := api.Group("/transfer-items")
	items.Get("/:id/allocation", h.SuggestAllocation)
	items.Post("/:id/approve", idem, h.ApproveItem)
	items.Post("/:id/prepare", idem, h.PrepareItem)
	items.Post("/:id/deliver", idem, h.DeliverItem)
	items.Post("/:id/cancel", idem, RequireRole("ADMIN", "OWNER"), h.CancelItem)
}
