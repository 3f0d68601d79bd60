package models

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Fields is a canonical write payload keyed by column name. Optional columns
// are left out rather than written as NULL, so a valid Fields never holds nil.
type Fields map[string]interface{}

// Set stores a required value.
func (f Fields) Set(column string, value interface{}) Fields {
	f[column] = value
	return f
}

// SetIfPresent stores value only when it is non-empty after trimming.
func (f Fields) SetIfPresent(column, value string) Fields {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		f[column] = trimmed
	}
	return f
}

// Has reports whether column is part of the payload.
func (f Fields) Has(column string) bool {
	_, ok := f[column]
	return ok
}

// Columns returns the payload's column names in a stable order.
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for col := range f {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Validate rejects payloads carrying an absence marker (nil or a nil pointer).
func (f Fields) Validate() error {
	for _, col := range f.Columns() {
		value := f[col]
		if value == nil {
			return fmt.Errorf("field %q carries a nil value", col)
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
			if rv.IsNil() {
				return fmt.Errorf("field %q carries a nil value", col)
			}
		}
	}
	return nil
}
