// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package infer

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/canonical/sqlbgone/internal/parse"
	"github.com/canonical/sqlbgone/internal/schema"
	"github.com/canonical/sqlbgone/sqltype"
)

// comparisonOps are the ComparisonExpr operators treated as binary
// operations. IN, LIKE and REGEXP are not supported.
var comparisonOps = map[string]bool{
	"=":   true,
	"!=":  true,
	"<":   true,
	"<=":  true,
	">":   true,
	">=":  true,
	"<=>": true,
}

// aggregates are the functions whose result has the type of their argument.
var aggregates = map[string]bool{
	"MAX": true,
	"MIN": true,
}

// exprTypes returns the input types of the placeholders found in expr, in the
// order they are discovered, and the type expr evaluates to. A lone
// placeholder evaluates to sqltype.Null and contributes no input of its own;
// the enclosing expression decides its type.
func exprTypes(sch *schema.Schema, sc scope, expr sqlparser.Expr) ([]sqltype.Type, sqltype.Type, error) {
	switch e := expr.(type) {
	case *sqlparser.ColName:
		typ, err := resolveColumn(sch, sc, e)
		if err != nil {
			return nil, sqltype.Null, err
		}
		return nil, typ, nil
	case *sqlparser.SQLVal:
		if e.Type == sqlparser.ValArg {
			return nil, sqltype.Null, nil
		}
	case *sqlparser.Subquery:
		sel, ok := e.Select.(*sqlparser.Select)
		if !ok {
			break
		}
		inputs, outputs, err := selectTypes(sch, sel)
		if err != nil {
			return nil, sqltype.Null, err
		}
		if len(outputs) == 0 {
			return nil, sqltype.Null, fmt.Errorf("%w: %s", ErrEmptySubqueryResult, sqlparser.String(e))
		}
		return inputs, outputs[0], nil
	case *sqlparser.ComparisonExpr:
		if comparisonOps[e.Operator] {
			return binaryOp(sch, sc, e.Left, e.Right)
		}
	case *sqlparser.BinaryExpr:
		return binaryOp(sch, sc, e.Left, e.Right)
	case *sqlparser.AndExpr:
		return binaryOp(sch, sc, e.Left, e.Right)
	case *sqlparser.OrExpr:
		return binaryOp(sch, sc, e.Left, e.Right)
	case *sqlparser.ParenExpr:
		return exprTypes(sch, sc, e.Expr)
	case *sqlparser.FuncExpr:
		return aggregate(sch, sc, e)
	}
	return nil, sqltype.Null, fmt.Errorf("%w: %s", ErrUnsupportedExpression, describe(expr))
}

// binaryOp types "left OP right". A placeholder on one side takes the type of
// the other side: a right hand placeholder is typed before a left hand one.
// The inputs nested inside left and then right follow. The operation itself
// is always an Integer.
func binaryOp(sch *schema.Schema, sc scope, left, right sqlparser.Expr) ([]sqltype.Type, sqltype.Type, error) {
	leftInputs, leftType, err := exprTypes(sch, sc, left)
	if err != nil {
		return nil, sqltype.Null, err
	}
	rightInputs, rightType, err := exprTypes(sch, sc, right)
	if err != nil {
		return nil, sqltype.Null, err
	}

	var placeholders []sqltype.Type
	if parse.IsPlaceholder(right) {
		if leftType == sqltype.Null {
			return nil, sqltype.Null, untyped(left, right)
		}
		placeholders = append(placeholders, leftType)
	}
	if parse.IsPlaceholder(left) {
		if rightType == sqltype.Null {
			return nil, sqltype.Null, untyped(left, right)
		}
		placeholders = append(placeholders, rightType)
	}
	return concat(placeholders, leftInputs, rightInputs), sqltype.Integer, nil
}

func untyped(left, right sqlparser.Expr) error {
	return fmt.Errorf("%w: cannot infer placeholder type in %s and %s",
		ErrUnsupportedExpression, sqlparser.String(left), sqlparser.String(right))
}

// aggregate types MAX(expr) and MIN(expr) as expr.
func aggregate(sch *schema.Schema, sc scope, f *sqlparser.FuncExpr) ([]sqltype.Type, sqltype.Type, error) {
	if !f.Qualifier.IsEmpty() || !aggregates[strings.ToUpper(f.Name.String())] {
		return nil, sqltype.Null, fmt.Errorf("%w: function %s", ErrUnsupportedExpression, sqlparser.String(f))
	}
	if f.Distinct {
		return nil, sqltype.Null, fmt.Errorf("%w: DISTINCT in %s", ErrUnsupportedExpression, sqlparser.String(f))
	}
	if len(f.Exprs) != 1 {
		return nil, sqltype.Null, fmt.Errorf("%w: %s takes one argument", ErrUnsupportedExpression, sqlparser.String(f))
	}
	arg, ok := f.Exprs[0].(*sqlparser.AliasedExpr)
	if !ok || !arg.As.IsEmpty() {
		return nil, sqltype.Null, fmt.Errorf("%w: argument %s", ErrUnsupportedExpression, sqlparser.String(f.Exprs[0]))
	}
	return exprTypes(sch, sc, arg.Expr)
}

// concat returns a new slice holding the elements of lists in order.
func concat(lists ...[]sqltype.Type) []sqltype.Type {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]sqltype.Type, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// describe names an expression for error messages.
func describe(expr sqlparser.Expr) string {
	kind := strings.TrimPrefix(fmt.Sprintf("%T", expr), "*sqlparser.")
	return kind + " " + sqlparser.String(expr)
}
