package binder

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// DefaultMaxMemory bounds multipart parsing (10MB).
const DefaultMaxMemory = 10 << 20

// Form binds posted form values into struct fields tagged `form:"name"`.
// Supported field kinds are string, bool and the integer kinds; `form:"-"`
// skips a field.
func Form() Func {
	return func(r *http.Request, v any) error {
		rv, err := structValue(v)
		if err != nil {
			return err
		}

		if mediaType(r) == "multipart/form-data" {
			err = r.ParseMultipartForm(DefaultMaxMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}

		rt := rv.Type()
		for i := range rt.NumField() {
			field := rt.Field(i)
			name := field.Tag.Get("form")
			if name == "" || name == "-" || !field.IsExported() {
				continue
			}

			values, ok := r.PostForm[name]
			if !ok || len(values) == 0 {
				continue
			}
			if err := setField(rv.Field(i), values[0]); err != nil {
				return fmt.Errorf("%w: field %q: %v", ErrFailedToParseForm, name, err)
			}
		}
		return nil
	}
}

func setField(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetInt(n)
	default:
		return fmt.Errorf("unsupported kind %s", f.Kind())
	}
	return nil
}

func structValue(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidTarget
	}
	return rv.Elem(), nil
}
