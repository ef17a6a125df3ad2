// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqltype

import (
	"database/sql/driver"
	"fmt"
	"reflect"
)

var valuerInterface = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// CheckValue reports whether v can be bound to a parameter of type t. A nil
// value, or a nil pointer, is always accepted since it binds as SQL NULL.
// Values implementing driver.Valuer are checked by the value they produce.
func CheckValue(t Type, v any) error {
	val := reflect.ValueOf(v)
	for val.IsValid() && val.Type().Implements(valuerInterface) {
		if val.Kind() == reflect.Pointer && val.IsNil() {
			return nil
		}
		dv, err := val.Interface().(driver.Valuer).Value()
		if err != nil {
			return err
		}
		val = reflect.ValueOf(dv)
	}
	for val.IsValid() && val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if !val.IsValid() {
		return nil
	}
	if !accepts(t, val.Type()) {
		return fmt.Errorf("cannot use %s as %s", val.Type(), t)
	}
	return nil
}

func accepts(t Type, typ reflect.Type) bool {
	switch k := typ.Kind(); t {
	case Integer:
		return isInt(k) || k == reflect.Bool
	case Real:
		return isInt(k) || k == reflect.Float32 || k == reflect.Float64
	case Text:
		return k == reflect.String
	case Blob:
		return k == reflect.String || (k == reflect.Slice && typ.Elem().Kind() == reflect.Uint8)
	}
	return false
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
