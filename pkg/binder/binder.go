// Package binder decodes request bodies into structs. Form binds
// application/x-www-form-urlencoded and multipart fields through `form`
// tags, JSON decodes application/json strictly, and Auto picks one of the
// two from the Content-Type header so the same endpoint serves HTML forms
// and API clients.
//
//	type loginRequest struct {
//		Username string `form:"username" json:"username"`
//		Password string `form:"password" json:"password"`
//	}
//
//	var req loginRequest
//	if err := binder.Auto()(r, &req); err != nil {
//		// 400
//	}
package binder

import (
	"fmt"
	"mime"
	"net/http"
)

// Func binds request data into v.
type Func func(r *http.Request, v any) error

// Auto dispatches on the request media type. A missing Content-Type is
// treated as a form post.
func Auto() Func {
	form, js := Form(), JSON()
	return func(r *http.Request, v any) error {
		switch mediaType(r) {
		case "application/json":
			return js(r, v)
		case "", "application/x-www-form-urlencoded", "multipart/form-data":
			return form(r, v)
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, r.Header.Get("Content-Type"))
		}
	}
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}
