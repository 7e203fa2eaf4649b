package fmquery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeFind(t *testing.T) {
	query := New("-find").
		SetParam("-db", "people").
		SetParam("-lay", "Person").
		SetParam("-max", 10).
		SetFieldParam("Name", "John").
		SetFieldParam("Name.op", "eq")

	encoded, err := query.Encode()
	require.NoError(t, err)
	require.Equal(t, "-find&-db=people&-lay=Person&-max=10&name=John&name.op=eq", encoded)
}

func TestEncodeNoParams(t *testing.T) {
	encoded, err := New("-dbnames").Encode()
	require.NoError(t, err)
	require.Equal(t, "-dbnames&", encoded)
}

func TestEncodeSortPrecedenceParams(t *testing.T) {
	query := New("-findall").
		SetParam("-db", "people").
		SetParam("-lay", "Person").
		SetParam("-sortfield.1", "Name").
		SetParam("-sortorder.1", "ascend")

	encoded, err := query.Encode()
	require.NoError(t, err)
	require.Equal(t, "-findall&-db=people&-lay=Person&-sortfield.1=Name&-sortorder.1=ascend", encoded)
}

func TestEncodeEscapesValues(t *testing.T) {
	query := New("-find").
		SetParam("-db", "my db").
		SetParam("-lay", "Person").
		SetFieldParam("Name", "a&b=c")

	encoded, err := query.Encode()
	require.NoError(t, err)
	require.Equal(t, "-find&-db=my+db&-lay=Person&name=a%26b%3Dc", encoded)
}

func TestMissingRequiredParams(t *testing.T) {
	_, err := New("-delete").SetParam("-db", "people").Encode()

	var missing MissingParamError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "-delete", missing.Command)
	require.Equal(t, []string{"-lay", "-recid"}, missing.Params)
}

func TestUnknownCommand(t *testing.T) {
	_, err := New("-explode").Encode()
	require.ErrorContains(t, err, "unknown query command")
}

func TestSetParamReplaces(t *testing.T) {
	query := New("-find").
		SetParam("-db", "a").
		SetParam("-DB", "b")

	value, ok := query.Param("-db")
	require.True(t, ok)
	require.Equal(t, "b", value)
	require.Len(t, query.Params(), 1)
}

func TestFieldParamsCaseInsensitive(t *testing.T) {
	query := New("-new").SetFieldParam("Name", "x")

	value, ok := query.FieldParam("name")
	require.True(t, ok)
	require.Equal(t, "x", value)
}
