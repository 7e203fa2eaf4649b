package fmmodel

// Op is a find comparison operator.
type Op string

const (
	OpEq         Op = "eq"
	OpNeq        Op = "neq"
	OpContains   Op = "cn"
	OpStartsWith Op = "bw"
	OpEndsWith   Op = "ew"
	OpGt         Op = "gt"
	OpGte        Op = "gte"
	OpLt         Op = "lt"
	OpLte        Op = "lte"
)

// Expr is a filter expression tree over layout fields. Leaves are built
// from FieldRef comparisons, inner nodes with And, Or and Not.
type Expr interface {
	isExpr()
}

// Cond is a single field comparison.
type Cond struct {
	Field string
	Op    Op
	Value any
}

type andExpr struct{ children []Expr }
type orExpr struct{ children []Expr }
type notExpr struct{ child Expr }

func (Cond) isExpr()    {}
func (andExpr) isExpr() {}
func (orExpr) isExpr()  {}
func (notExpr) isExpr() {}

func And(exprs ...Expr) Expr { return andExpr{children: exprs} }
func Or(exprs ...Expr) Expr  { return orExpr{children: exprs} }
func Not(expr Expr) Expr     { return notExpr{child: expr} }

// FieldRef references a layout field symbolically, either by its Go
// attribute name or its FileMaker field name.
type FieldRef string

func F(name string) FieldRef { return FieldRef(name) }

func (f FieldRef) Eq(value any) Expr  { return Cond{Field: string(f), Op: OpEq, Value: value} }
func (f FieldRef) Neq(value any) Expr { return Cond{Field: string(f), Op: OpNeq, Value: value} }
func (f FieldRef) Gt(value any) Expr  { return Cond{Field: string(f), Op: OpGt, Value: value} }
func (f FieldRef) Gte(value any) Expr { return Cond{Field: string(f), Op: OpGte, Value: value} }
func (f FieldRef) Lt(value any) Expr  { return Cond{Field: string(f), Op: OpLt, Value: value} }
func (f FieldRef) Lte(value any) Expr { return Cond{Field: string(f), Op: OpLte, Value: value} }

func (f FieldRef) Contains(value string) Expr {
	return Cond{Field: string(f), Op: OpContains, Value: value}
}

func (f FieldRef) StartsWith(value string) Expr {
	return Cond{Field: string(f), Op: OpStartsWith, Value: value}
}

func (f FieldRef) EndsWith(value string) Expr {
	return Cond{Field: string(f), Op: OpEndsWith, Value: value}
}

// SortExpr orders a find result by one field. Order is "ascend",
// "descend" or the name of a value list on the layout.
type SortExpr struct {
	Field string
	Order string
}

func Asc(field string) SortExpr  { return SortExpr{Field: field, Order: "ascend"} }
func Desc(field string) SortExpr { return SortExpr{Field: field, Order: "descend"} }

// SortByValueList sorts a field by the order of a layout value list.
func SortByValueList(field, valueList string) SortExpr {
	return SortExpr{Field: field, Order: valueList}
}
