package editform

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/lpms-app/lpms/internal/validation"
)

// MaintenanceDraft is the add-maintenance modal's input
type MaintenanceDraft struct {
	PropertyID  uuid.UUID
	UnitID      string
	Description string
	Cost        string
	Date        string
}

// Maintenance converts the draft into a record for creation
func (d MaintenanceDraft) Maintenance() (property.Maintenance, error) {
	unitID, err := uuid.Parse(d.UnitID)
	if err != nil {
		return property.Maintenance{}, fmt.Errorf("unit %q: %w", d.UnitID, err)
	}
	return property.Maintenance{
		PropertyID:  d.PropertyID,
		UnitID:      unitID,
		Description: d.Description,
		Cost:        d.Cost,
		Date:        d.Date,
	}, nil
}

// SeedMaintenanceDraft starts a draft for a property dated today. When the
// property has exactly one unit it is preselected.
func SeedMaintenanceDraft(p property.Property, now time.Time) MaintenanceDraft {
	d := MaintenanceDraft{
		PropertyID: p.ID,
		Date:       now.Format(time.DateOnly),
	}
	if len(p.Units) == 1 {
		d.UnitID = p.Units[0].ID.String()
	}
	return d
}

// MaintenanceSchema is the rule table for the add-maintenance modal
var MaintenanceSchema = validation.Schema{
	{Field: "unit", Checks: []validation.Check{validation.Required(), validation.UUID()}},
	{Field: "description", Checks: []validation.Check{validation.Length(3, 200)}},
	{Field: "cost", Checks: []validation.Check{validation.Decimal("cost")}},
	{Field: "maintenance_date", Checks: []validation.Check{validation.Date()}},
}

// MaintenanceFields wires wire names to MaintenanceDraft members
var MaintenanceFields = []Field[MaintenanceDraft]{
	{
		Name: "property",
		Get:  func(d MaintenanceDraft) string { return d.PropertyID.String() },
	},
	{
		Name: "unit",
		Get:  func(d MaintenanceDraft) string { return d.UnitID },
		Set:  func(d *MaintenanceDraft, v string) error { d.UnitID = v; return nil },
	},
	{
		Name: "description",
		Get:  func(d MaintenanceDraft) string { return d.Description },
		Set:  func(d *MaintenanceDraft, v string) error { d.Description = v; return nil },
	},
	{
		Name: "cost",
		Get:  func(d MaintenanceDraft) string { return d.Cost },
		Set:  func(d *MaintenanceDraft, v string) error { d.Cost = v; return nil },
	},
	{
		Name: "maintenance_date",
		Get:  func(d MaintenanceDraft) string { return d.Date },
		Set:  func(d *MaintenanceDraft, v string) error { d.Date = v; return nil },
	},
}

// NewMaintenanceForm returns an empty add-maintenance form
func NewMaintenanceForm() *Form[MaintenanceDraft] {
	return New(MaintenanceFields, MaintenanceSchema)
}
