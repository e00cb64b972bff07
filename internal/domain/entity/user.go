package entity

// Roles de un usuario dentro de la organización.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Actor es la identidad autenticada que ejecuta una operación (viene del token).
type Actor struct {
	UserID       string
	CompanyID    string
	DepartmentID string
	Role         string
	Name         string
}

// IsManager indica si el actor tiene rol ADMIN u OWNER.
func (a Actor) IsManager() bool {
	return a.Role == RoleAdmin || a.Role == RoleOwner
}
