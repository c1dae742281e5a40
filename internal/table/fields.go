package table

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Fielder is implemented by rows that resolve their own fields.
type Fielder interface {
	Field(id string) (any, bool)
}

type fieldKey struct {
	typ reflect.Type
	id  string
}

// fieldIndex caches struct field lookups; -1 marks a missing field.
var fieldIndex sync.Map

// FieldValue resolves id on row. Rows may implement Fielder, be a map with
// string keys, or be a struct (or pointer to one) whose json tag or field
// name matches id. ok is false when the row has no such field.
func FieldValue(row any, id string) (any, bool) {
	if f, ok := row.(Fielder); ok {
		return f.Field(id)
	}
	if m, ok := row.(map[string]any); ok {
		v, ok := m[id]
		return v, ok
	}

	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(id).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		idx := structField(v.Type(), id)
		if idx < 0 {
			return nil, false
		}
		return v.Field(idx).Interface(), true
	}
	return nil, false
}

func structField(t reflect.Type, id string) int {
	key := fieldKey{typ: t, id: id}
	if idx, ok := fieldIndex.Load(key); ok {
		return idx.(int)
	}

	idx := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == id || (name == "" && strings.EqualFold(f.Name, id)) {
			idx = i
			break
		}
	}
	fieldIndex.Store(key, idx)
	return idx
}

// FieldString is the string form of a field value used for filtering,
// sorting and default display. nil and nil pointers are "".
func FieldString(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		v = rv.Elem().Interface()
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// isNil reports whether v is nil or a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
