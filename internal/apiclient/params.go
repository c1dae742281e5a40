package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
)

// BuildQueryParams serializes a flat parameter map into a query string.
// The result always begins with "?". Entries whose value is nil (including
// typed nil pointers) or the empty string are omitted. Keys are emitted in
// sorted order, so the same map always yields the same string.
//
//	BuildQueryParams(map[string]any{"page": 2, "search": ""}) == "?page=2"
func BuildQueryParams(params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		s, ok := paramString(v)
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	return "?" + values.Encode()
}

func paramString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		v = rv.Elem().Interface()
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	if s == "" {
		return "", false
	}
	return s, true
}
