package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("binder: content type is neither JSON nor form")
	ErrFailedToParseJSON    = errors.New("binder: malformed JSON body")
	ErrFailedToParseForm    = errors.New("binder: malformed form body")
	ErrInvalidTarget        = errors.New("binder: target must be a non-nil struct pointer")
)
