package fmmodel

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"lariat/lib/fmerror"
	"lariat/lib/fmquery"
	"lariat/lib/fmserver"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("fmmodel")

// Script names a FileMaker script and an optional parameter.
type Script struct {
	Name  string
	Param string
}

// Scripts holds the scripts a request may trigger: after the request, and
// for finds also before the find and before the sort. A zero Name means
// the slot is unset.
type Scripts struct {
	After   Script
	Prefind Script
	Presort Script
}

func (s Scripts) apply(query *fmquery.Query) {
	type slot struct {
		script     Script
		nameParam  string
		paramParam string
	}
	for _, sl := range []slot{
		{s.After, "-script", "-script.param"},
		{s.Prefind, "-script.prefind", "-script.prefind.param"},
		{s.Presort, "-script.presort", "-script.presort.param"},
	} {
		if sl.script.Name == "" {
			continue
		}
		query.SetParam(sl.nameParam, sl.script.Name)
		if sl.script.Param != "" {
			query.SetParam(sl.paramParam, sl.script.Param)
		}
	}
}

// QuerySet is a lazy, immutable description of a find against a model's
// layout. Chainable operations return a copy; nothing hits the server
// until All or First.
type QuerySet[T Model] struct {
	client *fmserver.Client
	schema *Schema
	err    error

	filter  []Expr
	sorts   []SortExpr
	limit   int
	offset  int
	recID   int
	scripts Scripts
}

// Records starts a query set over T's layout.
func Records[T Model](client *fmserver.Client) QuerySet[T] {
	schema, err := SchemaOf[T]()
	return QuerySet[T]{client: client, schema: schema, err: err}
}

// Filter restricts the result set. Multiple calls AND together.
func (q QuerySet[T]) Filter(exprs ...Expr) QuerySet[T] {
	q.filter = append(slices.Clip(q.filter), exprs...)
	return q
}

// Sort appends sort rules, in precedence order. FileMaker caps a find at
// nine sort fields.
func (q QuerySet[T]) Sort(sorts ...SortExpr) QuerySet[T] {
	q.sorts = append(slices.Clip(q.sorts), sorts...)
	if q.err == nil && len(q.sorts) > 9 {
		q.err = fmt.Errorf("cannot sort by more than 9 fields")
	}
	return q
}

// Max caps the number of returned records.
func (q QuerySet[T]) Max(limit int) QuerySet[T] {
	q.limit = limit
	return q
}

// Skip offsets into the result set.
func (q QuerySet[T]) Skip(offset int) QuerySet[T] {
	q.offset = offset
	return q
}

// RecordID restricts the find to a single record by its id.
func (q QuerySet[T]) RecordID(id int) QuerySet[T] {
	q.recID = id
	return q
}

func (q QuerySet[T]) ScriptAfter(name, param string) QuerySet[T] {
	if q.err == nil && q.scripts.After.Name != "" {
		q.err = fmt.Errorf("already defined an after script")
	}
	q.scripts.After = Script{Name: name, Param: param}
	return q
}

func (q QuerySet[T]) ScriptPrefind(name, param string) QuerySet[T] {
	if q.err == nil && q.scripts.Prefind.Name != "" {
		q.err = fmt.Errorf("already defined a prefind script")
	}
	q.scripts.Prefind = Script{Name: name, Param: param}
	return q
}

func (q QuerySet[T]) ScriptPresort(name, param string) QuerySet[T] {
	if q.err == nil && q.scripts.Presort.Name != "" {
		q.err = fmt.Errorf("already defined a presort script")
	}
	q.scripts.Presort = Script{Name: name, Param: param}
	return q
}

// BuildQuery renders the query set to a wire query without executing it.
func (q QuerySet[T]) BuildQuery() (*fmquery.Query, error) {
	if q.err != nil {
		return nil, q.err
	}

	query := fmquery.New("-findall")
	query.SetParam("-db", q.schema.Layout.Database)
	query.SetParam("-lay", q.schema.Layout.Layout)

	if len(q.filter) > 0 {
		command, err := compileFilter(q.schema, query, q.filter)
		if err != nil {
			return nil, err
		}
		query.Command = command
	}
	if q.recID != 0 {
		if len(q.filter) > 0 {
			return nil, fmt.Errorf("cannot combine RecordID with Filter")
		}
		query.Command = "-find"
		query.SetParam("-recid", q.recID)
	}

	seenSorts := map[string]bool{}
	for i, s := range q.sorts {
		spec, err := q.schema.Field(s.Field)
		if err != nil {
			return nil, err
		}
		if seenSorts[spec.Name] {
			return nil, fmt.Errorf("already specified a sort rule for field %q", spec.Name)
		}
		seenSorts[spec.Name] = true

		query.SetParam(fmt.Sprintf("-sortfield.%d", i+1), spec.Name)
		query.SetParam(fmt.Sprintf("-sortorder.%d", i+1), s.Order)
	}

	if q.limit > 0 {
		query.SetParam("-max", q.limit)
	}
	if q.offset > 0 {
		query.SetParam("-skip", q.offset)
	}
	q.scripts.apply(query)

	return query, nil
}

// All executes the find and returns every matching record. A FileMaker
// "no records match" error is an empty result, not a failure.
func (q QuerySet[T]) All(ctx context.Context) ([]T, error) {
	ctx, span := tracer.Start(ctx, "All")
	defer span.End()

	query, err := q.BuildQuery()
	if err != nil {
		return nil, err
	}

	records, _, err := q.client.RunQuery(ctx, query)
	if fmerror.IsNoMatch(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, record := range records {
		var item T
		err := bind(q.schema, reflect.ValueOf(&item).Elem(), record)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// First executes the find capped at one record. Returns nil when nothing
// matches.
func (q QuerySet[T]) First(ctx context.Context) (*T, error) {
	results, err := q.Max(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}
