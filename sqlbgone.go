// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlbgone

import (
	"fmt"
	"strings"

	"github.com/canonical/sqlbgone/internal/infer"
	"github.com/canonical/sqlbgone/internal/parse"
	"github.com/canonical/sqlbgone/internal/schema"
	"github.com/canonical/sqlbgone/sqltype"
)

// Errors returned by BuildSchema and Schema.Infer. Use errors.Is to match
// them; the returned errors carry the offending table, column or expression.
var (
	ErrUnsupportedStatement  = infer.ErrUnsupportedStatement
	ErrUnsupportedExpression = infer.ErrUnsupportedExpression
	ErrUnsupportedColumnType = sqltype.ErrUnsupportedColumnType
	ErrMalformedTable        = schema.ErrMalformedTable
	ErrUnknownTable          = schema.ErrUnknownTable
	ErrUnknownColumn         = schema.ErrUnknownColumn
	ErrEmptySubqueryResult   = infer.ErrEmptySubqueryResult
	ErrUntypedPlaceholder    = infer.ErrUntypedPlaceholder
)

// Column is a column of a schema table.
type Column = schema.Column

// Schema holds the tables and column types that statements are checked
// against. A Schema is safe for concurrent use.
type Schema struct {
	schema *schema.Schema
	// cache holds the signatures of statements already inferred against this
	// schema.
	cache *signatureCache
}

// BuildSchema reads the CREATE TABLE statements in schemaText. Other
// statements are ignored. A table defined more than once takes its last
// definition.
func BuildSchema(schemaText string) (s *Schema, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot build schema: %w", err)
		}
	}()

	stmts, err := parse.Statements(schemaText)
	if err != nil {
		return nil, err
	}
	sch, err := schema.Build(stmts)
	if err != nil {
		return nil, err
	}
	return &Schema{schema: sch, cache: newSignatureCache()}, nil
}

// MustBuildSchema is the same as [BuildSchema] except that it panics on
// error.
func MustBuildSchema(schemaText string) *Schema {
	s, err := BuildSchema(schemaText)
	if err != nil {
		panic(err)
	}
	return s
}

// Tables returns the names of the tables in the schema in lexical order.
func (s *Schema) Tables() []string {
	return s.schema.Tables()
}

// Columns returns the columns of table in declaration order.
func (s *Schema) Columns(table string) ([]Column, error) {
	return s.schema.Columns(table)
}

// Infer returns the signature of a single SELECT or INSERT ... VALUES
// statement: the type of each placeholder and of each result column.
//
// Placeholders are typed by the expression they are compared with, or for
// an INSERT, by the column they are inserted into. Inputs are listed in the
// order the placeholders are discovered, which is not always source order:
// a placeholder compared with an expression that holds placeholders of its
// own, as in "(SELECT a FROM t WHERE b = ?) = ?", is listed before them.
func (s *Schema) Infer(query string) (sig *Signature, err error) {
	if sig, ok := s.cache.lookup(query); ok {
		return sig, nil
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot infer types: %w", err)
		}
	}()

	stmt, err := parse.Statement(query)
	if err != nil {
		return nil, err
	}
	inputs, outputs, err := infer.Statement(s.schema, stmt)
	if err != nil {
		return nil, err
	}
	return s.cache.store(&Signature{SQL: query, Inputs: inputs, Outputs: outputs}), nil
}

// Signature is the inferred type signature of a statement.
type Signature struct {
	// SQL is the statement text the signature was inferred from.
	SQL string
	// Inputs holds the type of each placeholder.
	Inputs []sqltype.Type
	// Outputs holds the type of each result column. It is empty for an
	// INSERT.
	Outputs []sqltype.Type
}

// String returns the signature in the form "(INPUTS) -> (OUTPUTS)".
func (sig *Signature) String() string {
	return "(" + typeList(sig.Inputs) + ") -> (" + typeList(sig.Outputs) + ")"
}

func (sig *Signature) clone() *Signature {
	return &Signature{
		SQL:     sig.SQL,
		Inputs:  append([]sqltype.Type{}, sig.Inputs...),
		Outputs: append([]sqltype.Type{}, sig.Outputs...),
	}
}

func typeList(ts []sqltype.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
