package util

import (
	"fmt"
	"reflect"
)

// IsStructInitialized returns an error naming the first exported field of strct
// which still holds its zero value. strct must be a struct or a pointer to one.
func IsStructInitialized(strct any) error {
	val := reflect.ValueOf(strct)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return fmt.Errorf("struct pointer is nil")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("expected struct, got %s", val.Kind())
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		if val.Field(i).IsZero() {
			return fmt.Errorf("struct field %s.%s is not initialized", typ.Name(), field.Name)
		}
	}

	return nil
}
