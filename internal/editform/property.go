package editform

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/property"
	"github.com/lpms-app/lpms/internal/validation"
)

// PropertyDraft is the editable copy of a property
type PropertyDraft struct {
	ID        uuid.UUID
	Name      string
	LRL       string
	WaterRate string
	Floors    int
	Units     int
}

// Fields converts the draft into the editable subset of a property
func (d PropertyDraft) Fields() property.Fields {
	return property.Fields{
		Name:             d.Name,
		LRL:              d.LRL,
		WaterRatePerUnit: d.WaterRate,
		NumberOfFloors:   d.Floors,
		NumberOfUnits:    d.Units,
	}
}

// SeedPropertyDraft copies a record into a fresh draft. A missing floor
// count becomes 0.
func SeedPropertyDraft(p property.Property) PropertyDraft {
	return PropertyDraft{
		ID:        p.ID,
		Name:      p.Name,
		LRL:       p.LRL,
		WaterRate: p.WaterRatePerUnit,
		Floors:    p.Floors(),
		Units:     p.NumberOfUnits,
	}
}

// PropertySchema is the rule table for the edit-property dialog
var PropertySchema = validation.Schema{
	{Field: "property_name", Checks: []validation.Check{validation.Length(3, 20)}},
	{Field: "property_lrl", Checks: []validation.Check{validation.Length(3, 10)}},
	{Field: "water_rate_per_unit", Checks: []validation.Check{validation.Decimal("water_rate_per_unit")}},
	{Field: "number_of_floors", Checks: []validation.Check{validation.Integer(), validation.Min(0), validation.Max(property.MaxCount)}},
	{Field: "number_of_units", Checks: []validation.Check{validation.Integer(), validation.Min(0), validation.Max(property.MaxCount)}},
}

// PropertyFields wires wire names to PropertyDraft members
var PropertyFields = []Field[PropertyDraft]{
	{
		Name: "id",
		Get:  func(d PropertyDraft) string { return d.ID.String() },
	},
	{
		Name: "property_name",
		Get:  func(d PropertyDraft) string { return d.Name },
		Set:  func(d *PropertyDraft, v string) error { d.Name = v; return nil },
	},
	{
		Name: "property_lrl",
		Get:  func(d PropertyDraft) string { return d.LRL },
		Set:  func(d *PropertyDraft, v string) error { d.LRL = v; return nil },
	},
	{
		Name: "water_rate_per_unit",
		Get:  func(d PropertyDraft) string { return d.WaterRate },
		Set:  func(d *PropertyDraft, v string) error { d.WaterRate = v; return nil },
	},
	{
		Name: "number_of_floors",
		Get:  func(d PropertyDraft) string { return strconv.Itoa(d.Floors) },
		Set: func(d *PropertyDraft, v string) error {
			n, err := parseInt(v)
			if err != nil {
				return err
			}
			d.Floors = n
			return nil
		},
	},
	{
		Name: "number_of_units",
		Get:  func(d PropertyDraft) string { return strconv.Itoa(d.Units) },
		Set: func(d *PropertyDraft, v string) error {
			n, err := parseInt(v)
			if err != nil {
				return err
			}
			d.Units = n
			return nil
		},
	},
}

// NewPropertyForm returns an empty edit-property form
func NewPropertyForm() *Form[PropertyDraft] {
	return New(PropertyFields, PropertySchema)
}
