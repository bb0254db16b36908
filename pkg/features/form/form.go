// Package form provides reactive form state on top of ripple handles.
//
// A Form binds a Go struct to a reactive object: field writes notify only
// the computations that read that field, validation errors land in their own
// reactive object, and the "valid" flag is a computed property. Validation
// rules come from `validate` struct tags, evaluated by
// github.com/go-playground/validator.
package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ripple-state/ripple/pkg/ripple"
)

// fieldMeta records how one exported struct field maps to a form field.
type fieldMeta struct {
	name       string
	fieldIndex int
}

// Form is a reactive form bound to a struct type T. Field names come from
// the `form` struct tag, defaulting to the lowercased Go field name; a tag
// of "-" excludes the field.
type Form[T any] struct {
	initial T

	// values holds one reactive property per form field.
	values *ripple.Object

	// errors holds the validation messages for fields that failed the
	// last Validate; a field with no entry is valid. The computed
	// property "\x00valid" on it backs Valid().
	errors  *ripple.Object
	touched *ripple.Object
	state   *ripple.Object

	fields   []fieldMeta
	validate *validator.Validate
}

const validKey = "\x00valid"

// New creates a Form with the given initial struct value.
func New[T any](initial T) *Form[T] {
	f := &Form[T]{
		initial:  initial,
		values:   ripple.WrapObject(nil),
		errors:   ripple.WrapObject(nil),
		touched:  ripple.WrapObject(nil),
		state:    ripple.WrapObject(map[string]any{"submitting": false}),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	// Report validation errors under form field names.
	f.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := formFieldName(fld)
		if name == "" {
			return "-"
		}
		return name
	})

	f.parseFields()
	f.setFromStruct(initial)

	f.errors.Compute(validKey, func() any {
		// Keys tracks the iteration key, so adding or clearing an
		// error re-evaluates validity.
		for _, key := range f.errors.Keys() {
			if key != validKey {
				return false
			}
		}
		return true
	})

	return f
}

// formFieldName resolves the form name for a struct field, "" if excluded.
func formFieldName(fld reflect.StructField) string {
	tag := fld.Tag.Get("form")
	if tag == "-" {
		return ""
	}
	if tag != "" {
		return tag
	}
	return strings.ToLower(fld.Name)
}

func (f *Form[T]) parseFields() {
	t := reflect.TypeOf(f.initial)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := formFieldName(fld)
		if name == "" {
			continue
		}
		f.fields = append(f.fields, fieldMeta{
			name:       name,
			fieldIndex: i,
		})
	}
}

// setFromStruct writes every field from v into the values object.
func (f *Form[T]) setFromStruct(v T) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}

	ripple.Batch(func() {
		for _, meta := range f.fields {
			f.values.Set(meta.name, rv.Field(meta.fieldIndex).Interface())
		}
	})
}

// Get reads a field value, subscribing the current computation to it.
func (f *Form[T]) Get(field string) any {
	return f.values.Get(field)
}

// Set writes a field value and marks the field touched.
func (f *Form[T]) Set(field string, value any) {
	ripple.Batch(func() {
		f.values.Set(field, value)
		f.touched.Set(field, true)
	})
}

// Touched reports whether a field has been written since creation or the
// last Reset.
func (f *Form[T]) Touched(field string) bool {
	v := f.touched.Get(field)
	b, _ := v.(bool)
	return b
}

// Value assembles the current field values into a T. Reads are tracked, so
// a computation reading Value re-runs when any field changes.
func (f *Form[T]) Value() T {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out
	}

	for _, meta := range f.fields {
		v := f.values.Get(meta.name)
		if v == nil {
			continue
		}
		fv := reflect.ValueOf(v)
		target := rv.Field(meta.fieldIndex)
		if fv.Type().AssignableTo(target.Type()) {
			target.Set(fv)
		} else if fv.Type().ConvertibleTo(target.Type()) {
			target.Set(fv.Convert(target.Type()))
		}
	}
	return out
}

// Validate runs the struct's `validate` tags against the current values and
// replaces the reactive error set. Returns true when the form is valid.
func (f *Form[T]) Validate() bool {
	var current T
	ripple.Untracked(func() {
		current = f.Value()
	})

	err := f.validate.Struct(current)

	ripple.Batch(func() {
		// Clear stale errors first so fixed fields notify their readers.
		for _, key := range f.errors.Keys() {
			if key != validKey {
				f.errors.Delete(key)
			}
		}
		if err == nil {
			return
		}
		var invalid validator.ValidationErrors
		if !errors.As(err, &invalid) {
			f.errors.Set("\x00form", err.Error())
			return
		}
		for _, fe := range invalid {
			f.errors.Set(fe.Field(), messageFor(fe))
		}
	})

	return err == nil
}

// Error returns the validation message for a field, "" when valid.
// The read is tracked.
func (f *Form[T]) Error(field string) string {
	v := f.errors.Get(field)
	s, _ := v.(string)
	return s
}

// Valid reports whether the last Validate found no errors. Exposed as a
// computed property, so effects reading it re-run when the error set
// changes.
func (f *Form[T]) Valid() bool {
	v := f.errors.Get(validKey)
	b, _ := v.(bool)
	return b
}

// Submitting reports whether a Submit is in progress. Tracked.
func (f *Form[T]) Submitting() bool {
	v := f.state.Get("submitting")
	b, _ := v.(bool)
	return b
}

// Submit validates and, when valid, calls fn with the assembled value.
// The submitting flag is reactive for the duration of fn.
func (f *Form[T]) Submit(fn func(T) error) error {
	if !f.Validate() {
		return ErrInvalid
	}

	f.state.Set("submitting", true)
	defer f.state.Set("submitting", false)

	var current T
	ripple.Untracked(func() {
		current = f.Value()
	})
	return fn(current)
}

// Reset restores the initial values and clears errors and touched flags.
func (f *Form[T]) Reset() {
	ripple.Batch(func() {
		f.setFromStruct(f.initial)
		for _, key := range f.errors.Keys() {
			if key != validKey {
				f.errors.Delete(key)
			}
		}
		for _, key := range f.touched.Keys() {
			f.touched.Delete(key)
		}
	})
}

// messageFor renders a short human-readable message for one field error.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "too small (min " + fe.Param() + ")"
	case "max":
		return "too large (max " + fe.Param() + ")"
	default:
		return "invalid (" + fe.Tag() + ")"
	}
}
