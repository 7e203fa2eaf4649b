package fmmodel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"lariat/lib/fmquery"
)

// ErrCannotRepresent is returned when a boolean filter has no compound-find
// encoding: an omit request applies to all find requests before it, so the
// omitted conditions of the OR branches must form a subset chain.
var ErrCannotRepresent = errors.New(
	"cannot represent query: negated conditions in OR branches must form a subset chain " +
		"(FileMaker omit requests apply to all preceding find requests)",
)

type literal struct {
	cond    Cond
	negated bool
}

// resolvedCond is a literal bound to its schema field with the comparison
// value already rendered to the wire format.
type resolvedCond struct {
	spec *FieldSpec
	op   Op
	// raw is the comparison value in wire format, value is raw with the
	// compound-find operator prefix applied.
	raw   string
	value string
}

func (c resolvedCond) key() string {
	return strings.ToLower(c.spec.Name) + "\x00" + string(c.op) + "\x00" + c.value
}

type findGroup struct {
	pos []resolvedCond
	neg []resolvedCond
}

// compileFilter lowers the conjunction of exprs into query params. A plain
// conjunction of positive conditions becomes -find field params; anything
// with OR or negation becomes a -findquery request list. The returned
// command is "-find" or "-findquery".
func compileFilter(schema *Schema, query *fmquery.Query, exprs []Expr) (string, error) {
	// A conjunction of plain positive conditions fits a simple find where
	// the operator travels in the .op param. Anything with combinators or
	// neq needs the compound-find request syntax.
	simple := true
	for _, expr := range exprs {
		cond, ok := expr.(Cond)
		if !ok || cond.Op == OpNeq {
			simple = false
			break
		}
	}
	if simple {
		for _, expr := range exprs {
			cond := expr.(Cond)
			spec, err := schema.Field(cond.Field)
			if err != nil {
				return "", err
			}
			rc, err := resolve(spec, cond.Op, cond.Value)
			if err != nil {
				return "", err
			}
			query.SetFieldParam(spec.Name, rc.raw)
			query.SetFieldParam(spec.Name+".op", string(rc.op))
		}
		return "-find", nil
	}

	groups, err := dnfGroups(schema, And(exprs...))
	if err != nil {
		return "", err
	}

	// Groups with larger omit sets first, giving the subset chain a chance
	// to hold.
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].neg) > len(groups[j].neg)
	})
	for i := 0; i < len(groups)-1; i++ {
		if !supersetOf(groups[i].neg, groups[i+1].neg) {
			return "", ErrCannotRepresent
		}
	}

	counter := 0
	nextID := func() string {
		counter++
		return fmt.Sprintf("q%d", counter)
	}

	var groupStrs []string
	for _, group := range groups {
		var parts []string

		var posIDs []string
		for _, cond := range group.pos {
			id := nextID()
			posIDs = append(posIDs, id)
			query.SetParam("-"+id, cond.spec.Name)
			query.SetParam("-"+id+".value", cond.value)
		}
		if len(posIDs) > 0 {
			parts = append(parts, "("+strings.Join(posIDs, ",")+")")
		}

		for _, cond := range group.neg {
			id := nextID()
			query.SetParam("-"+id, cond.spec.Name)
			query.SetParam("-"+id+".value", cond.value)
			parts = append(parts, "!("+id+")")
		}

		if len(parts) > 0 {
			groupStrs = append(groupStrs, strings.Join(parts, ";"))
		}
	}

	query.SetParam("-query", strings.Join(groupStrs, ";"))
	return "-findquery", nil
}

func supersetOf(set, subset []resolvedCond) bool {
	keys := map[string]bool{}
	for _, c := range set {
		keys[c.key()] = true
	}
	for _, c := range subset {
		if !keys[c.key()] {
			return false
		}
	}
	return true
}

// dnfGroups converts an expression to disjunctive normal form and resolves
// each conjunction into positive find conditions and omitted conditions.
func dnfGroups(schema *Schema, expr Expr) ([]findGroup, error) {
	clauses, err := dnf(expr, false)
	if err != nil {
		return nil, err
	}

	groups := make([]findGroup, 0, len(clauses))
	for _, clause := range clauses {
		group := findGroup{}
		seenNeg := map[string]bool{}

		addNeg := func(c resolvedCond) {
			if seenNeg[c.key()] {
				return
			}
			seenNeg[c.key()] = true
			group.neg = append(group.neg, c)
		}

		for _, lit := range clause {
			spec, err := schema.Field(lit.cond.Field)
			if err != nil {
				return nil, err
			}

			op := lit.cond.Op
			if lit.negated {
				if inverted, ok := invertOp(op); ok {
					op = inverted
				} else {
					// eq/cn/bw/ew have no inverted operator; they become
					// omit requests.
					rc, err := resolve(spec, op, lit.cond.Value)
					if err != nil {
						return nil, err
					}
					addNeg(rc)
					continue
				}
			}

			if op == OpNeq {
				rc, err := resolve(spec, OpEq, lit.cond.Value)
				if err != nil {
					return nil, err
				}
				addNeg(rc)
				continue
			}

			rc, err := resolve(spec, op, lit.cond.Value)
			if err != nil {
				return nil, err
			}
			group.pos = append(group.pos, rc)
		}

		// Deterministic omit order inside a group.
		sort.Slice(group.neg, func(i, j int) bool {
			return group.neg[i].key() < group.neg[j].key()
		})

		groups = append(groups, group)
	}

	return groups, nil
}

// Negating a comparison flips it where an inverse operator exists.
func invertOp(op Op) (Op, bool) {
	switch op {
	case OpNeq:
		return OpEq, true
	case OpGt:
		return OpLte, true
	case OpGte:
		return OpLt, true
	case OpLt:
		return OpGte, true
	case OpLte:
		return OpGt, true
	}
	return op, false
}

func resolve(spec *FieldSpec, op Op, value any) (resolvedCond, error) {
	raw := spec.formatFilterValue(value)
	rendered, err := findValue(spec, op, raw)
	if err != nil {
		return resolvedCond{}, err
	}
	return resolvedCond{spec: spec, op: op, raw: raw, value: rendered}, nil
}

// findValue renders a comparison the way a compound find request expects:
// the operator is part of the value. Text equality uses the exact-match
// form (==) while numeric and date equality use the plain = form.
func findValue(spec *FieldSpec, op Op, v string) (string, error) {
	switch op {
	case OpEq:
		if spec.Kind == KindText {
			return "==" + v, nil
		}
		return "=" + v, nil
	case OpContains:
		return "*" + v + "*", nil
	case OpStartsWith:
		return v + "*", nil
	case OpEndsWith:
		return "*" + v, nil
	case OpGt:
		return ">" + v, nil
	case OpGte:
		return ">=" + v, nil
	case OpLt:
		return "<" + v, nil
	case OpLte:
		return "<=" + v, nil
	}
	return "", fmt.Errorf("unsupported operator %q in query expression", op)
}

// dnf returns the clauses of the disjunctive normal form of expr, pushing
// negation down to the leaves on the way (De Morgan).
func dnf(expr Expr, negated bool) ([][]literal, error) {
	switch t := expr.(type) {
	case Cond:
		return [][]literal{{{cond: t, negated: negated}}}, nil

	case notExpr:
		return dnf(t.child, !negated)

	case andExpr:
		if negated {
			return dnfDisjunction(t.children, true)
		}
		return dnfConjunction(t.children, false)

	case orExpr:
		if negated {
			return dnfConjunction(t.children, true)
		}
		return dnfDisjunction(t.children, false)
	}

	return nil, fmt.Errorf("unknown expression type %T", expr)
}

func dnfDisjunction(children []Expr, negated bool) ([][]literal, error) {
	var clauses [][]literal
	for _, child := range children {
		sub, err := dnf(child, negated)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, sub...)
	}
	return clauses, nil
}

// dnfConjunction distributes AND over OR: the cartesian product of the
// children's clause lists.
func dnfConjunction(children []Expr, negated bool) ([][]literal, error) {
	clauses := [][]literal{{}}
	for _, child := range children {
		sub, err := dnf(child, negated)
		if err != nil {
			return nil, err
		}

		var next [][]literal
		for _, existing := range clauses {
			for _, clause := range sub {
				merged := make([]literal, 0, len(existing)+len(clause))
				merged = append(merged, existing...)
				merged = append(merged, clause...)
				next = append(next, merged)
			}
		}
		clauses = next
	}
	return clauses, nil
}
