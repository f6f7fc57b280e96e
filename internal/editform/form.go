// Package editform holds the state behind an edit dialog: the draft being
// edited, the per-field error set, and the change/submit handlers.
//
// Fields are wired through an explicit table of getter/setter pairs so the
// draft can stay a plain typed struct.
package editform

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lpms-app/lpms/internal/validation"
)

// ErrUnknownField is returned by SetField for names outside the field table
var ErrUnknownField = errors.New("unknown field")

// Field maps a wire field name to accessors on the draft type
type Field[D any] struct {
	Name string
	Get  func(D) string
	// Set applies raw input. A nil Set makes the field read-only.
	Set func(*D, string) error
}

// Form is the form state controller for one draft type
type Form[D any] struct {
	fields    []Field[D]
	index     map[string]int
	schema    validation.Schema
	draft     D
	errs      validation.Errors
	parseErrs map[string]string
}

// New builds a form over the given field table and schema
func New[D any](fields []Field[D], schema validation.Schema) *Form[D] {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return &Form[D]{
		fields: fields,
		index:  idx,
		schema: schema,
	}
}

// Initialize seeds the draft and drops any previous errors
func (f *Form[D]) Initialize(draft D) {
	f.draft = draft
	f.errs = nil
	f.parseErrs = nil
}

// Draft returns a copy of the current draft
func (f *Form[D]) Draft() D {
	return f.draft
}

// Errors returns the current field error set (nil when clean)
func (f *Form[D]) Errors() validation.Errors {
	if len(f.errs) == 0 {
		return nil
	}
	out := make(validation.Errors, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// SetField applies raw user input to one field and recomputes errors.
// Input that the setter cannot parse is kept as a field error rather than
// being coerced; the draft keeps its previous value for that field.
func (f *Form[D]) SetField(name, raw string) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	field := f.fields[i]
	if field.Set == nil {
		return fmt.Errorf("field %s is read-only", name)
	}

	if err := field.Set(&f.draft, raw); err != nil {
		if f.parseErrs == nil {
			f.parseErrs = map[string]string{}
		}
		f.parseErrs[name] = err.Error()
	} else {
		delete(f.parseErrs, name)
	}

	f.errs = f.validate()
	return nil
}

// Submit validates the draft. On failure the error set is stored and
// returned; on success the errors are cleared and the draft returned.
func (f *Form[D]) Submit() (D, error) {
	f.errs = f.validate()
	if len(f.errs) > 0 {
		var zero D
		return zero, f.Errors()
	}
	return f.draft, nil
}

// SetServerErrors merges field errors reported by the remote store
func (f *Form[D]) SetServerErrors(errs map[string]string) {
	if len(errs) == 0 {
		return
	}
	if f.errs == nil {
		f.errs = validation.Errors{}
	}
	for k, v := range errs {
		f.errs[k] = v
	}
}

func (f *Form[D]) validate() validation.Errors {
	values := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		values[field.Name] = field.Get(f.draft)
	}

	errs := f.schema.Validate(values)
	for name, msg := range f.parseErrs {
		if errs == nil {
			errs = validation.Errors{}
		}
		errs[name] = msg
	}
	return errs
}

// parseInt is the setter helper for numeric inputs
func parseInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("Expected number, received nan")
	}
	return n, nil
}
