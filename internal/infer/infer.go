// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package infer computes the types of the placeholders and result columns of
// a parsed statement against a schema.
package infer

import (
	"errors"
	"fmt"

	"github.com/xwb1989/sqlparser"

	"github.com/canonical/sqlbgone/internal/parse"
	"github.com/canonical/sqlbgone/internal/schema"
	"github.com/canonical/sqlbgone/sqltype"
)

var (
	ErrUnsupportedStatement  = errors.New("unsupported statement")
	ErrUnsupportedExpression = errors.New("unsupported expression")
	ErrEmptySubqueryResult   = errors.New("subquery has no result columns")

	// ErrUntypedPlaceholder is returned when a statement has placeholders
	// that inference could not assign a type to.
	ErrUntypedPlaceholder = errors.New("untyped placeholder")
)

// Statement returns the input types of stmt, one per placeholder, and its
// output types, one per result column. Only SELECT and INSERT ... VALUES
// statements are supported.
func Statement(sch *schema.Schema, stmt sqlparser.Statement) (inputs, outputs []sqltype.Type, err error) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		inputs, outputs, err = selectTypes(sch, s)
	case *sqlparser.Insert:
		inputs, err = insertTypes(sch, s)
		outputs = []sqltype.Type{}
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStatement, sqlparser.String(stmt))
	}
	if err != nil {
		return nil, nil, err
	}

	// Clauses that are not inspected, and placeholders whose context does not
	// type them, would leave a gap in the positional inputs.
	if n := placeholderCount(stmt); n != len(inputs) {
		return nil, nil, fmt.Errorf("%w: statement has %d placeholders, typed %d", ErrUntypedPlaceholder, n, len(inputs))
	}
	return inputs, outputs, nil
}

// placeholderCount counts the placeholders inference must type. Only the
// first row of an INSERT ... VALUES is typed.
func placeholderCount(stmt sqlparser.Statement) int {
	if ins, ok := stmt.(*sqlparser.Insert); ok {
		if rows, ok := ins.Rows.(sqlparser.Values); ok && len(rows) > 0 {
			return parse.CountPlaceholders(rows[0])
		}
	}
	return parse.CountPlaceholders(stmt)
}

// selectTypes types a SELECT. Inputs from the projections come first, in
// projection order, followed by the inputs from the WHERE clause.
func selectTypes(sch *schema.Schema, sel *sqlparser.Select) ([]sqltype.Type, []sqltype.Type, error) {
	if len(sel.From) != 1 {
		return nil, nil, fmt.Errorf("%w: FROM must name one table and its joins", ErrUnsupportedStatement)
	}
	sc, err := newRelationalScope(sel.From[0])
	if err != nil {
		return nil, nil, err
	}
	if err := sc.check(sch); err != nil {
		return nil, nil, err
	}

	inputs := []sqltype.Type{}
	outputs := []sqltype.Type{}
	for _, se := range sel.SelectExprs {
		ae, ok := se.(*sqlparser.AliasedExpr)
		if !ok || !ae.As.IsEmpty() {
			return nil, nil, fmt.Errorf("%w: projection %s", ErrUnsupportedExpression, sqlparser.String(se))
		}
		in, typ, err := exprTypes(sch, sc, ae.Expr)
		if err != nil {
			return nil, nil, err
		}
		inputs = concat(inputs, in)
		outputs = concat(outputs, []sqltype.Type{typ})
	}

	if sel.Where != nil {
		in, _, err := exprTypes(sch, sc, sel.Where.Expr)
		if err != nil {
			return nil, nil, err
		}
		inputs = concat(inputs, in)
	}
	return inputs, outputs, nil
}

// insertTypes types the first row of an INSERT ... VALUES. A placeholder
// given directly as a value takes the declared type of its column.
func insertTypes(sch *schema.Schema, ins *sqlparser.Insert) ([]sqltype.Type, error) {
	if ins.Action != sqlparser.InsertStr {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStatement, ins.Action)
	}
	if len(ins.OnDup) > 0 {
		return nil, fmt.Errorf("%w: ON DUPLICATE KEY UPDATE", ErrUnsupportedStatement)
	}
	rows, ok := ins.Rows.(sqlparser.Values)
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("%w: INSERT without VALUES", ErrUnsupportedStatement)
	}

	table := ins.Table.Name.String()
	columns, err := insertColumns(sch, table, ins.Columns)
	if err != nil {
		return nil, err
	}
	row := rows[0]
	if len(row) != len(columns) {
		return nil, fmt.Errorf("%w: %d columns but %d values", ErrUnsupportedStatement, len(columns), len(row))
	}

	sc := namedScope{table: table}
	inputs := []sqltype.Type{}
	for i, value := range row {
		if parse.IsPlaceholder(value) {
			typ, err := sch.Lookup(table, columns[i])
			if err != nil {
				return nil, err
			}
			inputs = concat(inputs, []sqltype.Type{typ})
			continue
		}
		in, _, err := exprTypes(sch, sc, value)
		if err != nil {
			return nil, err
		}
		inputs = concat(inputs, in)
	}
	return inputs, nil
}

// insertColumns returns the target column names. Without an explicit column
// list every column of the table is targeted, in declaration order.
func insertColumns(sch *schema.Schema, table string, cols sqlparser.Columns) ([]string, error) {
	if len(cols) > 0 {
		names := make([]string, len(cols))
		for i, col := range cols {
			names[i] = col.String()
		}
		return names, nil
	}
	declared, err := sch.Columns(table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(declared))
	for i, col := range declared {
		names[i] = col.Name
	}
	return names, nil
}
