package property

import (
	"github.com/google/uuid"
)

// Property is a managed building as stored by the API
type Property struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"property_name" validate:"min=3,max=20"`
	LRL              string    `json:"property_lrl" validate:"min=3,max=10"`
	NumberOfUnits    int       `json:"number_of_units" validate:"gte=0,lte=2147483647"`
	NumberOfFloors   *int      `json:"number_of_floors" validate:"omitempty,gte=0,lte=2147483647"`
	WaterRatePerUnit string    `json:"water_rate_per_unit" validate:"decimal"`
	Units            []Unit    `json:"unit_set" validate:"dive"`
	UpdatedAt        string    `json:"updated_at,omitempty"`
}

// Floors returns the floor count with a missing value treated as zero
func (p Property) Floors() int {
	if p.NumberOfFloors == nil {
		return 0
	}
	return *p.NumberOfFloors
}

// MaxCount is the largest unit, floor or count value the store holds
const MaxCount = 1<<31 - 1

// Unit is a rentable unit inside a property
type Unit struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property"`
	Name       string    `json:"unit_name"`
	Floor      int       `json:"floor" validate:"gte=0,lte=2147483647"`
}

// FindUnit returns the unit with the given ID
func (p Property) FindUnit(id uuid.UUID) (Unit, bool) {
	for _, u := range p.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// Maintenance is a maintenance record logged against a unit
type Maintenance struct {
	ID          uuid.UUID `json:"id"`
	PropertyID  uuid.UUID `json:"property"`
	UnitID      uuid.UUID `json:"unit" validate:"required"`
	UnitName    string    `json:"unit_name,omitempty"`
	Description string    `json:"description" validate:"min=3,max=200"`
	Cost        string    `json:"cost" validate:"decimal"`
	Date        string    `json:"maintenance_date" validate:"datetime=2006-01-02"`
	CreatedAt   string    `json:"created_at,omitempty"`
}
