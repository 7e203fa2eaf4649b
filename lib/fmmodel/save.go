package fmmodel

import (
	"context"
	"fmt"
	"reflect"

	"lariat/lib/fmquery"
	"lariat/lib/fmserver"
)

// Save creates the record when it has no id yet, otherwise edits it in
// place. The model is refreshed from the record FileMaker returns, so
// calculated fields come back up to date.
func Save[T Model](ctx context.Context, client *fmserver.Client, model *T) error {
	return SaveWithScripts(ctx, client, model, Scripts{})
}

func SaveWithScripts[T Model](ctx context.Context, client *fmserver.Client, model *T, scripts Scripts) error {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()

	schema, err := SchemaOf[T]()
	if err != nil {
		return err
	}

	structVal := reflect.ValueOf(model).Elem()
	rec := structVal.FieldByIndex(schema.recordIndex).Addr().Interface().(*Record)

	query := fmquery.New("-new")
	if rec.RecordID != 0 {
		query.Command = "-edit"
		query.SetParam("-recid", rec.RecordID)
	}
	query.SetParam("-db", schema.Layout.Database)
	query.SetParam("-lay", schema.Layout.Layout)
	scripts.apply(query)

	for i := range schema.Fields {
		spec := &schema.Fields[i]
		if spec.Calc {
			continue
		}
		value, ok := spec.formatValue(structVal)
		if !ok {
			continue
		}
		query.SetFieldParam(spec.Name, value)
	}

	records, _, err := client.RunQuery(ctx, query)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("server did not return the saved record")
	}

	return bind(schema, structVal, records[0])
}

// Delete removes the record. The model must have been fetched or saved
// before, i.e. it must carry a record id.
func Delete[T Model](ctx context.Context, client *fmserver.Client, model *T) error {
	return DeleteWithScripts(ctx, client, model, Scripts{})
}

func DeleteWithScripts[T Model](ctx context.Context, client *fmserver.Client, model *T, scripts Scripts) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()

	schema, err := SchemaOf[T]()
	if err != nil {
		return err
	}

	structVal := reflect.ValueOf(model).Elem()
	rec := structVal.FieldByIndex(schema.recordIndex).Addr().Interface().(*Record)
	if rec.RecordID == 0 {
		return fmt.Errorf("cannot delete a record without a record id")
	}

	query := fmquery.New("-delete")
	query.SetParam("-db", schema.Layout.Database)
	query.SetParam("-lay", schema.Layout.Layout)
	query.SetParam("-recid", rec.RecordID)
	scripts.apply(query)

	_, _, err = client.RunQuery(ctx, query)
	return err
}
