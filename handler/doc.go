// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value filled by the
// configured binders, and returns a Response that renders itself:
//
//	type LoginRequest struct {
//		Username string `form:"username" json:"username"`
//		Password string `form:"password" json:"password"`
//	}
//
//	r.Post("/login", handler.Wrap(func(ctx handler.Context, req LoginRequest) handler.Response {
//		...
//		return handler.Redirect("/")
//	}, handler.WithBinder[LoginRequest](binder.Auto())))
//
// Errors from binding and rendering go to the ErrorHandler. NewErrorHandler
// logs them and answers with a JSON error body whose status comes from
// HTTPError or validator.ValidationErrors.
package handler
