package transfer

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	domtransfer "github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

// CreateTransfer crea el traslado y sus ítems en PENDING. El código lo aporta el caller;
// si ya existe en la empresa devuelve domain.ErrDuplicate.
func (uc *UseCase) CreateTransfer(ctx context.Context, actor entity.Actor, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	title := strings.TrimSpace(in.Title)
	if code == "" || title == "" {
		return nil, domain.Invalid("código y título son obligatorios")
	}
	requesting := in.RequestingDepartmentID
	if requesting == "" {
		requesting = actor.DepartmentID
	}
	if requesting != actor.DepartmentID && !actor.IsManager() {
		return nil, domain.NewError(domain.ErrForbidden, "solo el departamento solicitante puede crear el traslado",
			"department_id", actor.DepartmentID, "requesting_department_id", requesting)
	}
	if requesting == "" || in.SupplyingDepartmentID == "" {
		return nil, domain.Invalid("los departamentos solicitante y proveedor son obligatorios")
	}
	if requesting == in.SupplyingDepartmentID {
		return nil, domain.Invalid("el departamento proveedor debe ser distinto del solicitante",
			"requesting_department_id", requesting, "supplying_department_id", in.SupplyingDepartmentID)
	}
	priority := entity.TransferPriority(strings.ToUpper(in.Priority))
	if priority == "" {
		priority = entity.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, domain.Invalid("prioridad inválida", "priority", in.Priority)
	}
	if len(in.Items) == 0 {
		return nil, domain.Invalid("el traslado requiere al menos un ítem")
	}
	for _, id := range []string{requesting, in.SupplyingDepartmentID} {
		if err := uc.checkDepartment(ctx, actor.CompanyID, id); err != nil {
			return nil, err
		}
	}

	now := uc.clock()
	t := &entity.Transfer{
		ID:                     uuid.New().String(),
		CompanyID:              actor.CompanyID,
		Code:                   code,
		Title:                  title,
		RequestingDepartmentID: requesting,
		SupplyingDepartmentID:  in.SupplyingDepartmentID,
		Priority:               priority,
		RequestReason:          in.RequestReason,
		Notes:                  in.Notes,
		CreatedBy:              actor.UserID,
		Status:                 entity.TransferPending,
		RequestedAt:            now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	seen := map[string]bool{}
	for _, line := range in.Items {
		if seen[line.ProductID] {
			return nil, domain.Invalid("un producto solo puede aparecer en un ítem por traslado", "product_id", line.ProductID)
		}
		seen[line.ProductID] = true
		if !line.RequestedQuantity.IsPositive() {
			return nil, domain.Invalid("la cantidad solicitada debe ser mayor que cero",
				"product_id", line.ProductID, "requested_quantity", line.RequestedQuantity.String())
		}
		if err := domtransfer.CheckScale("requested_quantity", line.RequestedQuantity, "product_id", line.ProductID); err != nil {
			return nil, err
		}
		if err := uc.checkProduct(ctx, actor.CompanyID, line.ProductID); err != nil {
			return nil, err
		}
		t.Items = append(t.Items, &entity.TransferItem{
			ID:                uuid.New().String(),
			TransferID:        t.ID,
			ProductID:         line.ProductID,
			Status:            entity.ItemPending,
			RequestedQuantity: line.RequestedQuantity,
			Notes:             line.Notes,
			Version:           1,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	err := uc.txRunner.RunTransfer(ctx, func(
		_ repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error {
		if err := transferRepo.Create(ctx, t); err != nil {
			return err
		}
		return historyRepo.Append(ctx, newRecord(actor, t, "", entity.ActionCreate, "", string(t.Status), t.RequestReason, now))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", t.ID).Str("code", t.Code).Int("items", len(t.Items)).Msg("traslado creado")
	return toTransferResponse(t), nil
}

func (uc *UseCase) checkDepartment(ctx context.Context, companyID, id string) error {
	d, err := uc.departments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil || d.CompanyID != companyID {
		return domain.NotFound("departamento no encontrado", "department_id", id)
	}
	return nil
}

func (uc *UseCase) checkProduct(ctx context.Context, companyID, id string) error {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil || p.CompanyID != companyID {
		return domain.NotFound("producto no encontrado", "product_id", id)
	}
	return nil
}
