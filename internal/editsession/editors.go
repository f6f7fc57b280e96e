package editsession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lpms-app/lpms/internal/client"
	"github.com/lpms-app/lpms/internal/editform"
	"github.com/lpms-app/lpms/internal/property"
)

// PropertyUpdater sends a partial update for a property
type PropertyUpdater interface {
	Update(ctx context.Context, id uuid.UUID, patch property.Patch) (*property.Property, error)
}

// MaintenanceCreator logs a maintenance record for a property
type MaintenanceCreator interface {
	Create(ctx context.Context, propertyID uuid.UUID, m property.Maintenance) (*property.Maintenance, error)
}

// PropertyEditor is the edit-property dialog
type PropertyEditor = Session[property.Property, editform.PropertyDraft]

// NewPropertyEditor wires the edit-property dialog. The PATCH body is the
// opened record merged with the draft; the confirmation names the record
// as it was opened.
func NewPropertyEditor(updater PropertyUpdater, notifier Notifier, refresher Refresher) *PropertyEditor {
	return New(Config[property.Property, editform.PropertyDraft]{
		Name:    "edit-property",
		NewForm: editform.NewPropertyForm,
		Seed:    editform.SeedPropertyDraft,
		Action: func(ctx context.Context, rec property.Property, d editform.PropertyDraft) (string, error) {
			patch, err := property.Merge(rec, d.Fields())
			if err != nil {
				return "", err
			}
			if _, err := updater.Update(ctx, d.ID, patch); err != nil {
				return "", err
			}
			return fmt.Sprintf("%s details updated", rec.Name), nil
		},
		Notifier:  notifier,
		Refresher: refresher,
	})
}

// MaintenanceModal is the add-unit-maintenance modal
type MaintenanceModal = Session[property.Property, editform.MaintenanceDraft]

// NewMaintenanceModal wires the add-maintenance modal for a property's units
func NewMaintenanceModal(creator MaintenanceCreator, notifier Notifier, refresher Refresher, now func() time.Time) *MaintenanceModal {
	if now == nil {
		now = time.Now
	}
	return New(Config[property.Property, editform.MaintenanceDraft]{
		Name:    "add-maintenance",
		NewForm: editform.NewMaintenanceForm,
		Seed: func(p property.Property) editform.MaintenanceDraft {
			return editform.SeedMaintenanceDraft(p, now())
		},
		Action: func(ctx context.Context, rec property.Property, d editform.MaintenanceDraft) (string, error) {
			m, err := d.Maintenance()
			if err != nil {
				return "", client.ErrValidation{
					Message: err.Error(),
					Fields:  map[string]string{"unit": "Invalid uuid"},
				}
			}
			unit, ok := rec.FindUnit(m.UnitID)
			if !ok {
				return "", client.ErrValidation{
					Message: fmt.Sprintf("unit does not belong to %s", rec.Name),
					Fields:  map[string]string{"unit": "Unknown unit"},
				}
			}
			if _, err := creator.Create(ctx, d.PropertyID, m); err != nil {
				return "", err
			}
			return fmt.Sprintf("Maintenance added for %s", unit.Name), nil
		},
		Notifier:  notifier,
		Refresher: refresher,
	})
}
