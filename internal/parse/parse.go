// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package parse turns SQL text into sqlparser ASTs. It is the only package
// that talks to the parser directly; everything downstream works on the
// sqlparser node types.
package parse

import (
	"fmt"
	"io"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// Statements parses every statement in sql, in order. Statements are
// separated by semicolons.
func Statements(sql string) (stmts []sqlparser.Statement, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot parse statement: %w", err)
		}
	}()

	tokens := sqlparser.NewStringTokenizer(sql)
	for {
		stmt, err := sqlparser.ParseNext(tokens)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// Statement parses sql, which must hold exactly one statement. A trailing
// semicolon is allowed.
func Statement(sql string) (sqlparser.Statement, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("cannot parse statement: empty statement")
	}
	stmts, err := Statements(sql)
	if err != nil {
		return nil, err
	}
	switch len(stmts) {
	case 0:
		return nil, fmt.Errorf("cannot parse statement: empty statement")
	case 1:
		return stmts[0], nil
	}
	return nil, fmt.Errorf("cannot parse statement: expected one statement, got %d", len(stmts))
}

// IsPlaceholder reports whether expr is a bind parameter marker. Positional
// "?" markers and named ":name" markers are both parsed as ValArg values.
func IsPlaceholder(expr sqlparser.Expr) bool {
	v, ok := expr.(*sqlparser.SQLVal)
	return ok && v.Type == sqlparser.ValArg
}

// CountPlaceholders returns the number of bind parameter markers anywhere
// under node, including subqueries and clauses that inference does not
// inspect.
func CountPlaceholders(node sqlparser.SQLNode) int {
	n := 0
	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		switch node := node.(type) {
		case *sqlparser.SQLVal:
			if node.Type == sqlparser.ValArg {
				n++
			}
		case sqlparser.ListArg:
			n++
		}
		return true, nil
	}, node)
	return n
}
