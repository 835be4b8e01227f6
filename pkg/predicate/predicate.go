// Package predicate models WHERE-clause conditions as an immutable
// expression tree that compiles to dialect-correct SQL text. The
// compiler is pure: it depends only on the tree and the dialect's
// literal formatting, never on database connectivity.
package predicate

import (
	"fmt"
	"strings"

	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
)

// Op is a comparison operator. The set is a table rather than switch
// arms so it can grow without touching the compiler.
type Op string

const (
	Equals             Op = "="
	NotEquals          Op = "<>"
	GreaterThan        Op = ">"
	GreaterThanOrEqual Op = ">="
	LessThan           Op = "<"
	LessThanOrEqual    Op = "<="
	Like               Op = "LIKE"
	In                 Op = "IN"
	IsNull             Op = "IS NULL"
	IsNotNull          Op = "IS NOT NULL"
)

// Logic joins two subtrees.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Expr is one node of a predicate tree: either a leaf comparison or a
// combinator over two subtrees. Values are set at construction and
// never mutated; the builder consumes expressions read-only.
type Expr struct {
	left  string
	op    Op
	right any

	l, r  *Expr
	logic Logic
}

// Compare builds a leaf comparison. For IsNull/IsNotNull the right term
// is ignored; for In the right term should be a slice.
func Compare(left string, op Op, right any) *Expr {
	return &Expr{left: left, op: op, right: right}
}

// And combines two expressions conjunctively.
func And(l, r *Expr) *Expr {
	return &Expr{l: l, r: r, logic: LogicAnd}
}

// Or combines two expressions disjunctively.
func Or(l, r *Expr) *Expr {
	return &Expr{l: l, r: r, logic: LogicOr}
}

// Compile renders the tree as a WHERE-clause fragment for the dialect.
// A nil expression compiles to the empty string: the caller omits the
// WHERE keyword entirely and the statement matches all rows.
func (e *Expr) Compile(d dialect.Dialect) string {
	if e == nil {
		return ""
	}
	if e.logic != "" {
		return fmt.Sprintf("(%s) %s (%s)", e.l.Compile(d), e.logic, e.r.Compile(d))
	}

	switch e.op {
	case IsNull, IsNotNull:
		return fmt.Sprintf("%s %s", e.left, e.op)
	case In:
		return fmt.Sprintf("%s IN (%s)", e.left, joinLiterals(d, e.right))
	case Like:
		return fmt.Sprintf("%s LIKE %s", e.left, d.FormatLiteral(e.right))
	default:
		return fmt.Sprintf("%s%s%s", e.left, e.op, d.FormatLiteral(e.right))
	}
}

func joinLiterals(d dialect.Dialect, v any) string {
	var parts []string
	switch xs := v.(type) {
	case []any:
		for _, x := range xs {
			parts = append(parts, d.FormatLiteral(x))
		}
	case []string:
		for _, x := range xs {
			parts = append(parts, d.FormatLiteral(x))
		}
	case []int:
		for _, x := range xs {
			parts = append(parts, d.FormatLiteral(x))
		}
	default:
		return d.FormatLiteral(v)
	}
	return strings.Join(parts, ", ")
}
