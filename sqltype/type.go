// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package sqltype defines the primitive storage types that sqlbgone infers for
// statement parameters and result columns.
package sqltype

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedColumnType is returned when a declared column type has no
// primitive counterpart.
var ErrUnsupportedColumnType = errors.New("unsupported column type")

// Type is a SQL storage class.
//
// Boolean valued expressions (comparisons, AND, OR) are typed as Integer.
// Null is never a declared column type. During inference it stands for a
// value whose type has not been determined yet, such as a lone placeholder.
type Type int

const (
	Null Type = iota
	Integer
	Real
	Text
	Blob
)

var typeNames = [...]string{
	Null:    "NULL",
	Integer: "INTEGER",
	Real:    "REAL",
	Text:    "TEXT",
	Blob:    "BLOB",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(typeNames) {
		return nil, fmt.Errorf("invalid type %d", int(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the names
// produced by String, in any case.
func (t *Type) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for i, n := range typeNames {
		if n == name {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("unknown type %q", string(text))
}

// Parse returns the Type for a declared column type name such as "text" or
// "INTEGER". Only integer, real, text and blob are accepted.
func Parse(declared string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "integer":
		return Integer, nil
	case "real":
		return Real, nil
	case "text":
		return Text, nil
	case "blob":
		return Blob, nil
	}
	return Null, fmt.Errorf("%w %q", ErrUnsupportedColumnType, declared)
}
