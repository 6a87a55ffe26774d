package yamlio

import (
	"reflect"
	"strings"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// CheckPortablePaths walks v and enforces spec.md §4.3: any field tagged
// `portable:"true"` (string or []string) must not contain a backslash
// and must not be an absolute path. It walks struct tags via reflection
// to enforce the cross-field invariant at decode time, since the values
// in question only exist after YAML decoding.
func CheckPortablePaths(v interface{}) []error {
	var errs []error
	walk(reflect.ValueOf(v), &errs)
	return errs
}

func walk(v reflect.Value, errs *[]error) {
	if !v.IsValid() {
		return
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			walk(v.Elem(), errs)
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			fv := v.Field(i)
			if field.Tag.Get("portable") == "true" {
				checkPortableValue(field.Name, fv, errs)
			}
			walk(fv, errs)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			walk(v.Index(i), errs)
		}
	case reflect.Map:
		for _, k := range v.MapKeys() {
			walk(v.MapIndex(k), errs)
		}
	}
}

func checkPortableValue(fieldName string, v reflect.Value, errs *[]error) {
	switch v.Kind() {
	case reflect.String:
		checkOnePath(fieldName, v.String(), errs)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.String {
			for i := 0; i < v.Len(); i++ {
				checkOnePath(fieldName, v.Index(i).String(), errs)
			}
		}
	}
}

func checkOnePath(key, value string, errs *[]error) {
	if value == "" {
		return
	}
	if strings.ContainsRune(value, '\\') {
		*errs = append(*errs, &projmgr.PortabilityError{Key: key, Value: value})
		return
	}
	if isAbsolutePath(value) {
		*errs = append(*errs, &projmgr.PortabilityError{Key: key, Value: value})
	}
}

// isAbsolutePath checks both POSIX ("/...") and Windows ("C:\..." or
// "C:/...") absolute forms, since the check must reject either
// regardless of the host platform building this module.
func isAbsolutePath(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	if len(p) >= 2 && p[1] == ':' && ((p[0] >= 'A' && p[0] <= 'Z') || (p[0] >= 'a' && p[0] <= 'z')) {
		return true
	}
	return false
}
