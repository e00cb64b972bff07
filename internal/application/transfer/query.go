package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

// GetTransfer devuelve el traslado con ítems, lotes asignados y estado consolidado.
func (uc *UseCase) GetTransfer(ctx context.Context, actor entity.Actor, id string) (*dto.TransferResponse, error) {
	t, err := uc.read(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

// ListTransfers lista los traslados donde participa el departamento del actor.
// ADMIN/OWNER pueden ver toda la empresa o filtrar por otro departamento.
func (uc *UseCase) ListTransfers(ctx context.Context, actor entity.Actor, in dto.ListTransfersRequest) (*dto.TransferListResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	page := dto.PageRequest{Limit: in.Limit, Offset: in.Offset}
	page.DefaultPage()
	filter := repository.TransferFilter{
		CompanyID:    actor.CompanyID,
		DepartmentID: actor.DepartmentID,
		Status:       entity.TransferStatus(in.Status),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if actor.IsManager() {
		filter.DepartmentID = in.DepartmentID
	}
	list, err := uc.transfers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// History devuelve los registros de transición del traslado en orden cronológico.
func (uc *UseCase) History(ctx context.Context, actor entity.Actor, transferID string) ([]dto.TransitionResponse, error) {
	if _, err := uc.read(ctx, actor, transferID); err != nil {
		return nil, err
	}
	records, err := uc.history.ListByTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransitionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toTransitionResponse(r))
	}
	return out, nil
}

// Slip genera el comprobante PDF del traslado y el nombre de archivo sugerido.
func (uc *UseCase) Slip(ctx context.Context, actor entity.Actor, transferID string) ([]byte, string, error) {
	if uc.slips == nil {
		return nil, "", fmt.Errorf("transfer: generador de comprobantes no configurado")
	}
	t, err := uc.read(ctx, actor, transferID)
	if err != nil {
		return nil, "", err
	}
	data := SlipData{Transfer: t, Products: map[string]*entity.Product{}, GeneratedAt: uc.clock()}
	if d, err := uc.departments.GetByID(ctx, t.RequestingDepartmentID); err == nil && d != nil {
		data.RequestingDepartment = d.Name
	}
	if d, err := uc.departments.GetByID(ctx, t.SupplyingDepartmentID); err == nil && d != nil {
		data.SupplyingDepartment = d.Name
	}
	for _, it := range t.Items {
		if p, err := uc.products.GetByID(ctx, it.ProductID); err == nil && p != nil {
			data.Products[it.ProductID] = p
		}
	}
	pdf, err := uc.slips.GenerateTransferSlip(ctx, data)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("traslado-%s.pdf", t.Code), nil
}

func (uc *UseCase) read(ctx context.Context, actor entity.Actor, id string) (*entity.Transfer, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || !visible(actor, t) {
		return nil, notFoundTransfer(id)
	}
	return t, nil
}

func (uc *UseCase) readItem(ctx context.Context, actor entity.Actor, itemID string) (*entity.Transfer, *entity.TransferItem, error) {
	transferID, err := uc.transfers.TransferIDOfItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if transferID == "" {
		return nil, nil, notFoundItem(itemID)
	}
	t, err := uc.read(ctx, actor, transferID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, notFoundItem(itemID)
		}
		return nil, nil, err
	}
	item := t.Item(itemID)
	if item == nil {
		return nil, nil, notFoundItem(itemID)
	}
	return t, item, nil
}
