package fmmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type Event struct {
	Record
	Title    string    `fm:"Event Title,notempty"`
	Date     time.Time `fm:"Date,kind=date"`
	Starts   time.Time `fm:"Start Time,kind=time"`
	Created  time.Time `fm:"Created At"`
	Tickets  int       `fm:"Tickets Sold,strict"`
	Price    float64   `fm:"Price"`
	Public   bool      `fm:"Public"`
	Capacity *int      `fm:"Capacity"`
	Summary  string    `fm:"Summary,calc"`
}

func (Event) FMLayout() Layout {
	return Layout{Database: "events", Layout: "Event"}
}

func TestSchemaOf(t *testing.T) {
	schema, err := SchemaOf[Event]()
	require.NoError(t, err)
	require.Equal(t, Layout{Database: "events", Layout: "Event"}, schema.Layout)
	require.Len(t, schema.Fields, 9)

	title, err := schema.Field("Event Title")
	require.NoError(t, err)
	require.Equal(t, "Title", title.Attr)
	require.Equal(t, KindText, title.Kind)
	require.True(t, title.NotEmpty)

	date, err := schema.Field("Date")
	require.NoError(t, err)
	require.Equal(t, KindDate, date.Kind)

	starts, err := schema.Field("Start Time")
	require.NoError(t, err)
	require.Equal(t, KindTime, starts.Kind)

	// plain time.Time defaults to a timestamp
	created, err := schema.Field("Created At")
	require.NoError(t, err)
	require.Equal(t, KindTimestamp, created.Kind)

	tickets, err := schema.Field("Tickets Sold")
	require.NoError(t, err)
	require.Equal(t, KindNumber, tickets.Kind)
	require.True(t, tickets.Strict)

	summary, err := schema.Field("Summary")
	require.NoError(t, err)
	require.True(t, summary.Calc)
}

func TestSchemaFieldByAttribute(t *testing.T) {
	schema, err := SchemaOf[Event]()
	require.NoError(t, err)

	// Go attribute names resolve too, case-insensitively
	spec, err := schema.Field("tickets")
	require.NoError(t, err)
	require.Equal(t, "Tickets Sold", spec.Name)

	_, err = schema.Field("Refunds")
	require.ErrorContains(t, err, `no field "Refunds"`)
}

type noRecord struct {
	Name string `fm:"Name"`
}

func (noRecord) FMLayout() Layout { return Layout{Database: "db", Layout: "lay"} }

func TestSchemaRequiresEmbeddedRecord(t *testing.T) {
	_, err := SchemaOf[noRecord]()
	require.ErrorContains(t, err, "does not embed fmmodel.Record")
}

type noLayoutName struct {
	Record
	Name string `fm:"Name"`
}

func (noLayoutName) FMLayout() Layout { return Layout{Database: "db"} }

func TestSchemaRequiresLayoutName(t *testing.T) {
	_, err := SchemaOf[noLayoutName]()
	require.ErrorContains(t, err, "declares no layout name")
}

type badKind struct {
	Record
	Name string `fm:"Name,kind=date"`
}

func (badKind) FMLayout() Layout { return Layout{Database: "db", Layout: "lay"} }

func TestSchemaRejectsDateKindOnString(t *testing.T) {
	_, err := SchemaOf[badKind]()
	require.ErrorContains(t, err, "must be a time.Time")
}

type dupField struct {
	Record
	A string `fm:"Name"`
	B string `fm:"name"`
}

func (dupField) FMLayout() Layout { return Layout{Database: "db", Layout: "lay"} }

func TestSchemaRejectsDuplicateFieldNames(t *testing.T) {
	_, err := SchemaOf[dupField]()
	require.ErrorContains(t, err, "duplicate field name")
}
