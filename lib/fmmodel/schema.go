// Package fmmodel binds Go structs to FileMaker layouts and turns symbolic
// filter expressions into CWP find queries.
package fmmodel

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Layout identifies the database and layout a model reads and writes.
type Layout struct {
	Database string
	Layout   string
}

// Model is implemented by structs that embed Record and declare their
// layout. Fields are bound with `fm:"FieldName,opts"` tags.
type Model interface {
	FMLayout() Layout
}

// Record carries the FileMaker record identity. Embed it in every model.
type Record struct {
	RecordID int
	ModID    int
}

// Kind is the FileMaker result type a field converts through.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBool
	KindDate
	KindTime
	KindTimestamp
)

// FieldSpec describes one bound struct field.
type FieldSpec struct {
	// Name of the field on the FileMaker layout.
	Name string
	// Attr is the Go struct field name.
	Attr string
	Kind Kind
	// NotEmpty fields reject empty values.
	NotEmpty bool
	// Strict disables lenient numeric conversion.
	Strict bool
	// Calc fields are results of calculations and are never written back.
	Calc bool

	index []int
	ptr   bool
}

type Schema struct {
	Layout Layout
	Fields []FieldSpec

	goType      reflect.Type
	recordIndex []int
	byName      map[string]*FieldSpec
}

// Field resolves a field reference, accepting either the Go attribute name
// or the FileMaker field name (case-insensitive, like FileMaker itself).
func (s *Schema) Field(ref string) (*FieldSpec, error) {
	spec, ok := s.byName[strings.ToLower(ref)]
	if !ok {
		return nil, fmt.Errorf("%s has no field %q", s.goType, ref)
	}
	return spec, nil
}

var schemaCache sync.Map // reflect.Type -> *Schema

// SchemaOf builds (and caches) the schema of a model type.
func SchemaOf[T Model]() (*Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Schema), nil
	}

	schema, err := buildSchema(t, zero.FMLayout())
	if err != nil {
		return nil, err
	}
	schemaCache.Store(t, schema)
	return schema, nil
}

var recordType = reflect.TypeOf(Record{})

func buildSchema(t reflect.Type, layout Layout) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model type %s is not a struct", t)
	}
	if layout.Database == "" {
		return nil, fmt.Errorf("model %s declares no database in its layout", t)
	}
	if layout.Layout == "" {
		return nil, fmt.Errorf("model %s declares no layout name", t)
	}

	schema := &Schema{
		Layout: layout,
		goType: t,
		byName: map[string]*FieldSpec{},
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous && field.Type == recordType {
			schema.recordIndex = field.Index
			continue
		}

		tag, ok := field.Tag.Lookup("fm")
		if !ok || tag == "-" {
			continue
		}
		if !field.IsExported() {
			return nil, fmt.Errorf("fm tag on unexported field %s.%s", t, field.Name)
		}

		spec, err := parseFieldSpec(field, tag)
		if err != nil {
			return nil, err
		}

		lower := strings.ToLower(spec.Name)
		if _, dup := schema.byName[lower]; dup {
			return nil, fmt.Errorf("duplicate field name %q (attribute %s)", spec.Name, spec.Attr)
		}

		schema.Fields = append(schema.Fields, spec)
		ptr := &schema.Fields[len(schema.Fields)-1]
		schema.byName[lower] = ptr
		if attr := strings.ToLower(spec.Attr); attr != lower {
			schema.byName[attr] = ptr
		}
	}

	if schema.recordIndex == nil {
		return nil, fmt.Errorf("model %s does not embed fmmodel.Record", t)
	}
	if len(schema.Fields) == 0 {
		return nil, fmt.Errorf("model %s binds no fields", t)
	}

	return schema, nil
}

func parseFieldSpec(field reflect.StructField, tag string) (FieldSpec, error) {
	parts := strings.Split(tag, ",")
	spec := FieldSpec{
		Name:  parts[0],
		Attr:  field.Name,
		index: field.Index,
	}
	if spec.Name == "" {
		return spec, fmt.Errorf("fm tag on field %s has no layout field name", field.Name)
	}

	t := field.Type
	if t.Kind() == reflect.Ptr {
		spec.ptr = true
		t = t.Elem()
	}

	switch {
	case t.Kind() == reflect.String:
		spec.Kind = KindText
	case t.Kind() == reflect.Int || t.Kind() == reflect.Int64 || t.Kind() == reflect.Float64:
		spec.Kind = KindNumber
	case t.Kind() == reflect.Bool:
		spec.Kind = KindBool
	case t == reflect.TypeOf(time.Time{}):
		spec.Kind = KindTimestamp
	default:
		return spec, fmt.Errorf("unsupported field type %s on %s", field.Type, field.Name)
	}

	for _, opt := range parts[1:] {
		switch {
		case opt == "notempty":
			spec.NotEmpty = true
		case opt == "strict":
			spec.Strict = true
		case opt == "calc":
			spec.Calc = true
		case strings.HasPrefix(opt, "kind="):
			kind, err := parseKind(strings.TrimPrefix(opt, "kind="))
			if err != nil {
				return spec, fmt.Errorf("field %s: %w", field.Name, err)
			}
			spec.Kind = kind
		case opt == "":
		default:
			return spec, fmt.Errorf("unknown fm tag option %q on field %s", opt, field.Name)
		}
	}

	if (spec.Kind == KindDate || spec.Kind == KindTime || spec.Kind == KindTimestamp) &&
		t != reflect.TypeOf(time.Time{}) {
		return spec, fmt.Errorf("field %s must be a time.Time to use a date/time kind", field.Name)
	}

	return spec, nil
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "number":
		return KindNumber, nil
	case "bool":
		return KindBool, nil
	case "date":
		return KindDate, nil
	case "time":
		return KindTime, nil
	case "timestamp":
		return KindTimestamp, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}
