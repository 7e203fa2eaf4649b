package fmmodel

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"lariat/lib/fmquery"

	"github.com/stretchr/testify/require"
)

type Person struct {
	Record
	Name string `fm:"Name"`
	Age  int    `fm:"Age"`
	City string `fm:"City"`
}

func (Person) FMLayout() Layout {
	return Layout{Database: "people", Layout: "Person"}
}

// formatQuery renders a built query in a stable, readable form for
// comparison.
func formatQuery(t *testing.T, query *fmquery.Query) string {
	t.Helper()

	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s", query.Command)

	if query.Command == "-findquery" {
		qstr, ok := query.Param("-query")
		require.True(t, ok)
		fmt.Fprintf(&b, "\n  -query: %s", qstr)

		for i := 1; ; i++ {
			name, ok := query.Param(fmt.Sprintf("-q%d", i))
			if !ok {
				break
			}
			value, ok := query.Param(fmt.Sprintf("-q%d.value", i))
			require.True(t, ok)
			fmt.Fprintf(&b, "\n  -q%d: %s = %s", i, name, value)
		}
		return b.String()
	}

	fields := query.FieldParams()
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	for _, p := range fields {
		fmt.Fprintf(&b, "\n  %s: %s", p.Name, p.Value)
	}
	return b.String()
}

func buildFilter(t *testing.T, qs QuerySet[Person]) string {
	t.Helper()
	query, err := qs.BuildQuery()
	require.NoError(t, err)
	return formatQuery(t, query)
}

func TestSimpleFind(t *testing.T) {
	qs := Records[Person](nil).Filter(F("Name").Eq("John"), F("Age").Eq(30))

	require.Equal(t, `Command: -find
  age: 30
  age.op: eq
  name: John
  name.op: eq`, buildFilter(t, qs))
}

func TestSimpleOrQuery(t *testing.T) {
	// (Name == John) OR (Name == Jane)
	qs := Records[Person](nil).Filter(Or(F("Name").Eq("John"), F("Name").Eq("Jane")))

	require.Equal(t, `Command: -findquery
  -query: (q1);(q2)
  -q1: Name = ==John
  -q2: Name = ==Jane`, buildFilter(t, qs))
}

func TestComplexAndOrQuery(t *testing.T) {
	// (City == NY AND Age > 20) OR (City == LA)
	qs := Records[Person](nil).Filter(Or(
		And(F("City").Eq("NY"), F("Age").Gt(20)),
		F("City").Eq("LA"),
	))

	require.Equal(t, `Command: -findquery
  -query: (q1,q2);(q3)
  -q1: City = ==NY
  -q2: Age = >20
  -q3: City = ==LA`, buildFilter(t, qs))
}

func TestNegationQuery(t *testing.T) {
	// NOT (Age > 30)  => Age <= 30
	qs := Records[Person](nil).Filter(Not(F("Age").Gt(30)))

	require.Equal(t, `Command: -findquery
  -query: (q1)
  -q1: Age = <=30`, buildFilter(t, qs))
}

func TestDeMorganNegation(t *testing.T) {
	// NOT (Name == John OR Name == Jane) => Name != John AND Name != Jane
	qs := Records[Person](nil).Filter(Not(Or(F("Name").Eq("John"), F("Name").Eq("Jane"))))

	require.Equal(t, `Command: -findquery
  -query: !(q1);!(q2)
  -q1: Name = ==Jane
  -q2: Name = ==John`, buildFilter(t, qs))
}

func TestDistribution(t *testing.T) {
	// (A | B) & C -> (A & C) | (B & C)
	qs := Records[Person](nil).Filter(
		Or(F("Name").Eq("John"), F("Name").Eq("Jane")),
		F("City").Eq("NY"),
	)

	require.Equal(t, `Command: -findquery
  -query: (q1,q2);(q3,q4)
  -q1: Name = ==John
  -q2: City = ==NY
  -q3: Name = ==Jane
  -q4: City = ==NY`, buildFilter(t, qs))
}

func TestSharedNegation(t *testing.T) {
	// (A & ~B) | (C & ~B) -> valid
	qs := Records[Person](nil).Filter(Or(
		And(F("Name").Eq("A"), Not(F("City").Eq("B"))),
		And(F("Name").Eq("C"), Not(F("City").Eq("B"))),
	))

	require.Equal(t, `Command: -findquery
  -query: (q1);!(q2);(q3);!(q4)
  -q1: Name = ==A
  -q2: City = ==B
  -q3: Name = ==C
  -q4: City = ==B`, buildFilter(t, qs))
}

func TestOmitOnlyChain(t *testing.T) {
	// ~A | ~B
	qs := Records[Person](nil).
		Filter(F("Name").Neq("A")).
		Filter(F("Name").Neq("B"))

	require.Equal(t, `Command: -findquery
  -query: !(q1);!(q2)
  -q1: Name = ==A
  -q2: Name = ==B`, buildFilter(t, qs))
}

func TestSubsetNegation(t *testing.T) {
	// (A & ~B & ~C) | (D & ~B) -> valid, G1's omits cover G2's
	qs := Records[Person](nil).Filter(Or(
		And(F("Name").Eq("A"), Not(F("City").Eq("B")), Not(F("Age").Eq(10))),
		And(F("Name").Eq("D"), Not(F("City").Eq("B"))),
	))

	require.Equal(t, `Command: -findquery
  -query: (q1);!(q2);!(q3);(q4);!(q5)
  -q1: Name = ==A
  -q2: Age = =10
  -q3: City = ==B
  -q4: Name = ==D
  -q5: City = ==B`, buildFilter(t, qs))
}

func TestReorderingNegation(t *testing.T) {
	// A | (B & ~C) -> valid after reordering to (B & ~C) | A
	qs := Records[Person](nil).Filter(Or(
		F("Name").Eq("A"),
		And(F("Name").Eq("B"), Not(F("City").Eq("C"))),
	))

	require.Equal(t, `Command: -findquery
  -query: (q1);!(q2);(q3)
  -q1: Name = ==B
  -q2: City = ==C
  -q3: Name = ==A`, buildFilter(t, qs))
}

func TestDisjointNegationFails(t *testing.T) {
	// (A & ~B) | (C & ~D) -> no omit ordering satisfies both branches
	qs := Records[Person](nil).Filter(Or(
		And(F("Name").Eq("A"), Not(F("City").Eq("B"))),
		And(F("Name").Eq("C"), Not(F("City").Eq("D"))),
	))

	_, err := qs.BuildQuery()
	require.ErrorIs(t, err, ErrCannotRepresent)
}

func TestMixedNegationFails(t *testing.T) {
	// (A & ~B) | C | (D & ~E)
	// omit sets {B}, {}, {E}: {B} is not a superset of {E}
	qs := Records[Person](nil).Filter(Or(
		And(F("Name").Eq("A"), Not(F("City").Eq("B"))),
		F("Name").Eq("C"),
		And(F("Name").Eq("D"), Not(F("City").Eq("E"))),
	))

	_, err := qs.BuildQuery()
	require.ErrorIs(t, err, ErrCannotRepresent)
}

func TestStringOperators(t *testing.T) {
	qs := Records[Person](nil).Filter(Or(
		F("Name").Contains("oh"),
		F("Name").StartsWith("J"),
		F("Name").EndsWith("n"),
	))

	require.Equal(t, `Command: -findquery
  -query: (q1);(q2);(q3)
  -q1: Name = *oh*
  -q2: Name = J*
  -q3: Name = *n`, buildFilter(t, qs))
}

func TestUnknownFieldFails(t *testing.T) {
	qs := Records[Person](nil).Filter(F("Nope").Eq("x"))

	_, err := qs.BuildQuery()
	require.ErrorContains(t, err, `no field "Nope"`)
}

func TestFieldRefByFileMakerName(t *testing.T) {
	// field refs accept the layout field name case-insensitively
	qs := Records[Person](nil).Filter(F("nAmE").Gte("J"))

	require.Equal(t, `Command: -find
  name: J
  name.op: gte`, buildFilter(t, qs))
}
