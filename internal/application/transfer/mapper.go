package transfer

import (
	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
)

func toTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	out := &dto.TransferResponse{
		ID:                     t.ID,
		CompanyID:              t.CompanyID,
		Code:                   t.Code,
		Title:                  t.Title,
		RequestingDepartmentID: t.RequestingDepartmentID,
		SupplyingDepartmentID:  t.SupplyingDepartmentID,
		Priority:               string(t.Priority),
		RequestReason:          t.RequestReason,
		Notes:                  t.Notes,
		Status:                 string(t.Status),
		CreatedBy:              t.CreatedBy,
		RequestedAt:            t.RequestedAt,
		ApprovedAt:             t.ApprovedAt,
		PreparedAt:             t.PreparedAt,
		DeliveredAt:            t.DeliveredAt,
		CancelledAt:            t.CancelledAt,
		Items:                  make([]dto.TransferItemResponse, 0, len(t.Items)),
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
	for _, it := range t.Items {
		out.Items = append(out.Items, toItemResponse(it))
	}
	return out
}

func toItemResponse(it *entity.TransferItem) dto.TransferItemResponse {
	out := dto.TransferItemResponse{
		ID:                it.ID,
		ProductID:         it.ProductID,
		Status:            string(it.Status),
		RequestedQuantity: it.RequestedQuantity,
		ApprovedQuantity:  it.ApprovedQuantity,
		PreparedQuantity:  it.PreparedQuantity,
		ReceivedQuantity:  it.ReceivedQuantity,
		CancelReason:      it.CancelReason,
		Notes:             it.Notes,
		ApprovedAt:        it.ApprovedAt,
		PreparedAt:        it.PreparedAt,
		DeliveredAt:       it.DeliveredAt,
		CancelledAt:       it.CancelledAt,
		Batches:           make([]dto.TransferItemBatchResponse, 0, len(it.Batches)),
		Version:           it.Version,
	}
	if it.Status == entity.ItemDelivered {
		out.Shortfall = it.Shortfall()
	}
	for _, b := range it.Batches {
		out.Batches = append(out.Batches, dto.TransferItemBatchResponse{
			BatchID:          b.BatchID,
			LotNumber:        b.LotNumber,
			ExpiryDate:       b.ExpiryDate,
			Quantity:         b.Quantity,
			ReceivedQuantity: b.ReceivedQuantity,
		})
	}
	return out
}

func toTransitionResponse(r *entity.TransitionRecord) dto.TransitionResponse {
	return dto.TransitionResponse{
		ID:                r.ID,
		TransferItemID:    r.TransferItemID,
		Action:            r.Action,
		FromStatus:        r.FromStatus,
		ToStatus:          r.ToStatus,
		ChangedBy:         r.ChangedBy,
		ActorName:         r.ActorName,
		ActorRole:         r.ActorRole,
		ActorDepartmentID: r.ActorDepartmentID,
		Notes:             r.Notes,
		Quantities:        r.Quantities,
		CreatedAt:         r.CreatedAt,
	}
}

func toAllocationResponse(itemID string, strict bool, res inventory.AllocationResult) *dto.AllocationSuggestionResponse {
	out := &dto.AllocationSuggestionResponse{
		ItemID:      itemID,
		Strict:      strict,
		Requested:   res.Requested,
		Allocated:   res.Allocated,
		Shortfall:   res.Shortfall,
		Allocations: make([]dto.AllocationLineResponse, 0, len(res.Allocations)),
	}
	for _, a := range res.Allocations {
		out.Allocations = append(out.Allocations, dto.AllocationLineResponse{
			BatchID:    a.BatchID,
			LotNumber:  a.LotNumber,
			ExpiryDate: a.ExpiryDate,
			Quantity:   a.Quantity,
		})
	}
	return out
}
