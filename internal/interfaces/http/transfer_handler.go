package http

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/application/transfer"
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/pkg/logger"
)

// TransferHandler maneja las peticiones HTTP de traslados e ítems (protegido).
type TransferHandler struct {
	uc       *transfer.UseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase, log *logger.Logger) *TransferHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferHandler{uc: uc, validate: newValidator(), log: log.Component("http")}
}

// bind parsea el body (si viene) y valida el struct. Un body vacío deja los valores cero.
func (h *TransferHandler) bind(c *fiber.Ctx, in interface{}, required bool) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(in); err != nil {
			return domain.Invalid("cuerpo inválido")
		}
	} else if required {
		return domain.Invalid("cuerpo requerido")
	}
	if err := h.validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}

// ── Traslados ─────────────────────────────────────────────────────────────────

// Create crea un traslado con sus ítems en PENDING.
// POST /api/transfers
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := h.bind(c, &in, true); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.CreateTransfer(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID devuelve el traslado con ítems, lotes y estado consolidado.
// GET /api/transfers/:id
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetTransfer(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List lista los traslados del departamento del actor.
// GET /api/transfers?status=&department_id=&limit=&offset=
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var in dto.ListTransfersRequest
	if err := c.QueryParser(&in); err != nil {
		return respondError(c, h.log, domain.Invalid("parámetros de consulta inválidos"))
	}
	if err := h.validate.Struct(in); err != nil {
		return respondError(c, h.log, validationError(err))
	}
	out, err := h.uc.ListTransfers(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// History devuelve el historial de transiciones en orden cronológico.
// GET /api/transfers/:id/history
func (h *TransferHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"items": out})
}

// Slip descarga el comprobante PDF del traslado.
// GET /api/transfers/:id/slip.pdf
func (h *TransferHandler) Slip(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Slip(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}

// ApproveAll aprueba todos los ítems PENDING por su cantidad solicitada.
// POST /api/transfers/:id/approve-all
func (h *TransferHandler) ApproveAll(c *fiber.Ctx) error {
	var in dto.ApproveAllRequest
	if err := h.bind(c, &in, false); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.ApproveAll(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CancelTransfer cancela todos los ítems no cancelados (todos deben estar PENDING).
// POST /api/transfers/:id/cancel
func (h *TransferHandler) CancelTransfer(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := h.bind(c, &in, false); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.CancelTransfer(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// ── Ítems ─────────────────────────────────────────────────────────────────────

// ApproveItem aprueba un ítem PENDING.
// POST /api/transfer-items/:id/approve
func (h *TransferHandler) ApproveItem(c *fiber.Ctx) error {
	var in dto.ApproveItemRequest
	if err := h.bind(c, &in, true); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.ApproveItem(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// SuggestAllocation propone lotes FIFO por vencimiento sin reservar nada.
// GET /api/transfer-items/:id/allocation?strict=true|false
func (h *TransferHandler) SuggestAllocation(c *fiber.Ctx) error {
	var strict *bool
	if raw := c.Query("strict"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, h.log, domain.Invalid("strict debe ser true o false", "strict", raw))
		}
		strict = &b
	}
	out, err := h.uc.SuggestAllocation(c.UserContext(), ActorFrom(c), c.Params("id"), strict)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// PrepareItem reserva los lotes del ítem. Sin allocations usa la asignación automática.
// POST /api/transfer-items/:id/prepare
func (h *TransferHandler) PrepareItem(c *fiber.Ctx) error {
	var in dto.PrepareItemRequest
	if err := h.bind(c, &in, false); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.PrepareItem(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// DeliverItem confirma la recepción por lote.
// POST /api/transfer-items/:id/deliver
func (h *TransferHandler) DeliverItem(c *fiber.Ctx) error {
	var in dto.DeliverItemRequest
	if err := h.bind(c, &in, true); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.DeliverItem(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CancelItem cancela un ítem PENDING con motivo.
// POST /api/transfer-items/:id/cancel
func (h *TransferHandler) CancelItem(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := h.bind(c, &in, false); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.CancelItem(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
