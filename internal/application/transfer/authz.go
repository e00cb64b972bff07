package transfer

import (
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// visible: el traslado es de la empresa del actor y su departamento participa (o es ADMIN/OWNER).
// Fuera de ese alcance el traslado no existe para el actor.
func visible(actor entity.Actor, t *entity.Transfer) bool {
	if actor.CompanyID == "" || actor.CompanyID != t.CompanyID {
		return false
	}
	return actor.IsManager() || t.Involves(actor.DepartmentID)
}

func notFoundTransfer(id string) error {
	return domain.NotFound("traslado no encontrado", "transfer_id", id)
}

func notFoundItem(id string) error {
	return domain.NotFound("ítem de traslado no encontrado", "item_id", id)
}

func requireSupplying(actor entity.Actor, t *entity.Transfer) error {
	if actor.DepartmentID != t.SupplyingDepartmentID {
		return domain.NewError(domain.ErrForbidden, "solo el departamento proveedor puede ejecutar esta acción",
			"transfer_id", t.ID, "department_id", actor.DepartmentID, "supplying_department_id", t.SupplyingDepartmentID)
	}
	return nil
}

func requireRequesting(actor entity.Actor, t *entity.Transfer) error {
	if actor.DepartmentID != t.RequestingDepartmentID {
		return domain.NewError(domain.ErrForbidden, "solo el departamento solicitante puede ejecutar esta acción",
			"transfer_id", t.ID, "department_id", actor.DepartmentID, "requesting_department_id", t.RequestingDepartmentID)
	}
	return nil
}

func requireManager(actor entity.Actor) error {
	if !actor.IsManager() {
		return domain.NewError(domain.ErrForbidden, "se requiere rol ADMIN u OWNER", "role", actor.Role)
	}
	return nil
}

func requireActor(actor entity.Actor) error {
	if actor.UserID == "" || actor.CompanyID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}
