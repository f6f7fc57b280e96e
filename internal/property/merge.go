package property

import (
	"encoding/json"
	"fmt"
)

// Server-owned keys that a partial update may never overwrite
var readOnlyKeys = map[string]bool{
	"id":         true,
	"unit_set":   true,
	"updated_at": true,
}

// Patch is a partial update body keyed by wire field name
type Patch map[string]any

// Fields is the editable subset of a property
type Fields struct {
	Name             string
	LRL              string
	WaterRatePerUnit string
	NumberOfFloors   int
	NumberOfUnits    int
}

// Merge builds the PATCH body for an edit: every field of the record
// overlaid with the edited values. The record itself is not modified.
func Merge(record Property, edited Fields) (Patch, error) {
	patch, err := toPatch(record)
	if err != nil {
		return nil, err
	}
	patch["property_name"] = edited.Name
	patch["property_lrl"] = edited.LRL
	patch["water_rate_per_unit"] = edited.WaterRatePerUnit
	patch["number_of_floors"] = edited.NumberOfFloors
	patch["number_of_units"] = edited.NumberOfUnits
	return patch, nil
}

// Apply merges a partial update into an existing record and returns the
// result. Read-only keys in the patch are ignored.
func Apply(existing Property, patch Patch) (Property, error) {
	merged, err := toPatch(existing)
	if err != nil {
		return Property{}, err
	}
	for k, v := range patch {
		if readOnlyKeys[k] {
			continue
		}
		merged[k] = v
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return Property{}, fmt.Errorf("marshal merged property: %w", err)
	}
	var out Property
	if err := json.Unmarshal(raw, &out); err != nil {
		return Property{}, fmt.Errorf("decode merged property: %w", err)
	}
	out.ID = existing.ID
	out.Units = existing.Units
	out.UpdatedAt = existing.UpdatedAt
	return out, nil
}

func toPatch(p Property) (Patch, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal property: %w", err)
	}
	var m Patch
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode property: %w", err)
	}
	return m, nil
}
