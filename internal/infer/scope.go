// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package infer

import (
	"fmt"

	"github.com/xwb1989/sqlparser"

	"github.com/canonical/sqlbgone/internal/schema"
	"github.com/canonical/sqlbgone/sqltype"
)

// scope is the set of tables an unqualified column name may resolve against.
type scope interface {
	// resolve returns the type of an unqualified column name.
	resolve(sch *schema.Schema, column string) (sqltype.Type, error)
}

// namedScope is the target table of an INSERT.
type namedScope struct {
	table string
}

func (ns namedScope) resolve(sch *schema.Schema, column string) (sqltype.Type, error) {
	return sch.Lookup(ns.table, column)
}

// relationalScope is the FROM clause of a SELECT: a primary table and the
// tables joined to it, in the order they are written.
type relationalScope struct {
	primary string
	joins   []string
}

// resolve searches the joined tables first and the primary table last. The
// first table defining the column wins, so a name shared by several joined
// tables resolves to the earliest of them.
func (rs relationalScope) resolve(sch *schema.Schema, column string) (sqltype.Type, error) {
	for _, t := range append(append([]string(nil), rs.joins...), rs.primary) {
		if !sch.HasTable(t) {
			return sqltype.Null, fmt.Errorf("%w %q", schema.ErrUnknownTable, t)
		}
		typ, err := sch.Lookup(t, column)
		if err == nil {
			return typ, nil
		}
	}
	return sqltype.Null, fmt.Errorf("%w %q", schema.ErrUnknownColumn, column)
}

// check returns an error if a table in the scope is not in the schema. The
// primary table is checked first.
func (rs relationalScope) check(sch *schema.Schema) error {
	for _, t := range append([]string{rs.primary}, rs.joins...) {
		if !sch.HasTable(t) {
			return fmt.Errorf("%w %q", schema.ErrUnknownTable, t)
		}
	}
	return nil
}

// newRelationalScope flattens a FROM item into a primary table and its
// joins. Joins nest to the left, so the primary table is the leftmost leaf.
func newRelationalScope(from sqlparser.TableExpr) (relationalScope, error) {
	switch te := from.(type) {
	case *sqlparser.AliasedTableExpr:
		name, err := namedTable(te)
		if err != nil {
			return relationalScope{}, err
		}
		return relationalScope{primary: name}, nil
	case *sqlparser.JoinTableExpr:
		rs, err := newRelationalScope(te.LeftExpr)
		if err != nil {
			return relationalScope{}, err
		}
		right, err := newRelationalScope(te.RightExpr)
		if err != nil {
			return relationalScope{}, err
		}
		rs.joins = append(append(rs.joins, right.primary), right.joins...)
		return rs, nil
	}
	return relationalScope{}, fmt.Errorf("%w: table expression %s", ErrUnsupportedStatement, sqlparser.String(from))
}

func namedTable(te *sqlparser.AliasedTableExpr) (string, error) {
	tn, ok := te.Expr.(sqlparser.TableName)
	if !ok {
		return "", fmt.Errorf("%w: table expression %s", ErrUnsupportedStatement, sqlparser.String(te))
	}
	return tn.Name.String(), nil
}

// resolveColumn returns the type of a column reference. A qualified name is
// looked up in the schema directly, whether or not its table is in scope.
func resolveColumn(sch *schema.Schema, sc scope, col *sqlparser.ColName) (sqltype.Type, error) {
	if !col.Qualifier.IsEmpty() {
		return sch.Lookup(col.Qualifier.Name.String(), col.Name.String())
	}
	return sc.resolve(sch, col.Name.String())
}
