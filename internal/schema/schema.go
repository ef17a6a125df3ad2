// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package schema builds the table -> column -> type map that inference
// resolves identifiers against.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/canonical/sqlbgone/sqltype"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMalformedTable is returned for a CREATE TABLE statement the parser
	// could only partially read.
	ErrMalformedTable = errors.New("malformed table definition")
)

// Column is a single declared column.
type Column struct {
	Name string
	Type sqltype.Type
}

type table struct {
	// columns are kept in declaration order.
	columns []Column
	index   map[string]int
}

// Schema maps table names to their columns. It is not modified after Build
// returns. Table and column names are case-sensitive.
type Schema struct {
	tables map[string]*table
}

// Build creates a Schema from the CREATE TABLE statements in stmts. Other
// statements are skipped. A table defined more than once takes the columns
// of its last definition.
func Build(stmts []sqlparser.Statement) (*Schema, error) {
	s := &Schema{tables: map[string]*table{}}
	for _, stmt := range stmts {
		ddl, ok := stmt.(*sqlparser.DDL)
		if !ok || ddl.Action != sqlparser.CreateStr {
			continue
		}
		// CREATE VIEW and CREATE INDEX are also create DDLs, but only a
		// CREATE TABLE carries the new table name.
		if ddl.NewName.IsEmpty() {
			continue
		}
		name := ddl.NewName.Name.String()
		if ddl.TableSpec == nil {
			return nil, fmt.Errorf("table %q: %w", name, ErrMalformedTable)
		}
		t, err := buildTable(ddl.TableSpec)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		s.tables[name] = t
	}
	return s, nil
}

func buildTable(spec *sqlparser.TableSpec) (*table, error) {
	t := &table{index: map[string]int{}}
	for _, def := range spec.Columns {
		name := def.Name.String()
		typ, err := sqltype.Parse(def.Type.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		if i, ok := t.index[name]; ok {
			t.columns[i].Type = typ
			continue
		}
		t.index[name] = len(t.columns)
		t.columns = append(t.columns, Column{Name: name, Type: typ})
	}
	return t, nil
}

// Lookup returns the type of column in table.
func (s *Schema) Lookup(tableName, column string) (sqltype.Type, error) {
	t, ok := s.tables[tableName]
	if !ok {
		return sqltype.Null, fmt.Errorf("%w %q", ErrUnknownTable, tableName)
	}
	i, ok := t.index[column]
	if !ok {
		return sqltype.Null, fmt.Errorf("%w %q in table %q", ErrUnknownColumn, column, tableName)
	}
	return t.columns[i].Type, nil
}

// HasTable reports whether the schema defines tableName.
func (s *Schema) HasTable(tableName string) bool {
	_, ok := s.tables[tableName]
	return ok
}

// Columns returns the columns of tableName in declaration order.
func (s *Schema) Columns(tableName string) ([]Column, error) {
	t, ok := s.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTable, tableName)
	}
	return append([]Column(nil), t.columns...), nil
}

// Tables returns the table names in lexical order.
func (s *Schema) Tables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a textual representation of the schema for debugging and
// testing purposes.
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString("Schema[")
	for i, name := range s.Tables() {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name)
		b.WriteString("(")
		for j, col := range s.tables[name].columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col.Name + " " + col.Type.String())
		}
		b.WriteString(")")
	}
	b.WriteString("]")
	return b.String()
}
