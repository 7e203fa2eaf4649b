package fmmodel

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lariat/lib/fmxml"
)

// Wire formats of the date/time result types.
const (
	dateLayout      = "01/02/2006"
	timeLayout      = "15:04:05"
	timestampLayout = "01/02/2006 15:04:05"
)

// ConversionError reports a FileMaker value that could not be converted to
// the field's Go type.
type ConversionError struct {
	Field string
	Value string
	Err   error
}

func (e ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q for field %s: %s", e.Value, e.Field, e.Err)
}

func (e ConversionError) Unwrap() error { return e.Err }

// FieldError reports an invalid assignment, e.g. emptying a notempty field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

func (spec *FieldSpec) convErr(value string, err error) error {
	return ConversionError{Field: spec.Attr, Value: value, Err: err}
}

// parseValue converts a raw FileMaker value to the field's Go scalar.
// Number parsing is lenient unless the field is strict: stray units or
// thousands separators are stripped before a retry, matching how messy
// number fields tend to be on real layouts.
func (spec *FieldSpec) parseValue(raw string, target reflect.Type) (reflect.Value, error) {
	switch spec.Kind {
	case KindText:
		return reflect.ValueOf(raw).Convert(target), nil

	case KindNumber:
		switch target.Kind() {
		case reflect.Float64:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil && !spec.Strict {
				f, err = strconv.ParseFloat(nonNumeric.ReplaceAllString(raw, ""), 64)
			}
			if err != nil {
				return reflect.Value{}, spec.convErr(raw, err)
			}
			return reflect.ValueOf(f).Convert(target), nil
		default:
			n, err := strconv.Atoi(raw)
			if err != nil && !spec.Strict {
				stripped := nonNumeric.ReplaceAllString(raw, "")
				stripped, _, _ = strings.Cut(stripped, ".")
				n, err = strconv.Atoi(stripped)
			}
			if err != nil {
				return reflect.Value{}, spec.convErr(raw, err)
			}
			return reflect.ValueOf(n).Convert(target), nil
		}

	case KindBool:
		switch raw {
		case "t", "true", "True", "1", "yes":
			return reflect.ValueOf(true).Convert(target), nil
		case "f", "false", "False", "0", "no":
			return reflect.ValueOf(false).Convert(target), nil
		}
		return reflect.Value{}, spec.convErr(raw, fmt.Errorf("not a boolean"))

	case KindDate:
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return reflect.Value{}, spec.convErr(raw, err)
		}
		return reflect.ValueOf(t), nil

	case KindTime:
		t, err := time.Parse(timeLayout, raw)
		if err != nil {
			return reflect.Value{}, spec.convErr(raw, err)
		}
		return reflect.ValueOf(t), nil

	case KindTimestamp:
		t, err := time.Parse(timestampLayout, raw)
		if err != nil {
			return reflect.Value{}, spec.convErr(raw, err)
		}
		return reflect.ValueOf(t), nil
	}

	return reflect.Value{}, spec.convErr(raw, fmt.Errorf("unknown field kind"))
}

// setValue assigns a raw FileMaker value to the struct field. An empty
// value clears the field (nil for pointers, zero otherwise) and is an
// error on notempty fields. A value that still fails to convert after the
// lenient retry also clears the field; only strict and notempty fields
// report it.
func (spec *FieldSpec) setValue(structVal reflect.Value, raw string) error {
	field := structVal.FieldByIndex(spec.index)

	if raw == "" {
		if spec.NotEmpty {
			return FieldError{Field: spec.Attr, Message: "value cannot be empty"}
		}
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	target := field.Type()
	if spec.ptr {
		target = target.Elem()
	}

	value, err := spec.parseValue(raw, target)
	if err != nil {
		if spec.Strict || spec.NotEmpty {
			return err
		}
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if spec.ptr {
		ptr := reflect.New(target)
		ptr.Elem().Set(value)
		field.Set(ptr)
	} else {
		field.Set(value)
	}
	return nil
}

// formatValue renders a struct field as the string FileMaker expects.
// The second return is false when the field holds no value (nil pointer).
func (spec *FieldSpec) formatValue(structVal reflect.Value) (string, bool) {
	field := structVal.FieldByIndex(spec.index)
	if spec.ptr {
		if field.IsNil() {
			return "", false
		}
		field = field.Elem()
	}

	switch spec.Kind {
	case KindText:
		return field.String(), true
	case KindNumber:
		if field.Kind() == reflect.Float64 {
			return strconv.FormatFloat(field.Float(), 'f', -1, 64), true
		}
		return strconv.FormatInt(field.Int(), 10), true
	case KindBool:
		if field.Bool() {
			return "1", true
		}
		return "0", true
	case KindDate:
		return field.Interface().(time.Time).Format(dateLayout), true
	case KindTime:
		return field.Interface().(time.Time).Format(timeLayout), true
	case KindTimestamp:
		return field.Interface().(time.Time).Format(timestampLayout), true
	}
	return "", false
}

// formatFilterValue renders a filter's comparison value. Typed values go
// through the same formatting as writes so date filters match the wire
// format; anything else falls back to Sprint.
func (spec *FieldSpec) formatFilterValue(value any) string {
	switch v := value.(type) {
	case time.Time:
		switch spec.Kind {
		case KindDate:
			return v.Format(dateLayout)
		case KindTime:
			return v.Format(timeLayout)
		default:
			return v.Format(timestampLayout)
		}
	case bool:
		if v {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

// bind fills a model struct from a parsed record. Fields the record does
// not carry keep their zero values.
func bind(schema *Schema, structVal reflect.Value, record fmxml.Record) error {
	rec := structVal.FieldByIndex(schema.recordIndex).Addr().Interface().(*Record)
	rec.RecordID = record.ID
	rec.ModID = record.ModID

	for _, f := range record.Fields {
		spec, ok := schema.byName[f.Name]
		if !ok {
			continue
		}
		if err := spec.setValue(structVal, f.Value); err != nil {
			return err
		}
	}
	return nil
}
