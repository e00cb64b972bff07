package entity

import "time"

// Department representa un departamento de la organización (farmacia central, urgencias, UCI...).
// El CRUD de departamentos es externo; el motor solo lo consulta.
type Department struct {
	ID        string
	CompanyID string
	Name      string
	Code      string
	CreatedAt time.Time
}
