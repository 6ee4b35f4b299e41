package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/identity/handler"
	"github.com/dmitrymomot/identity/pkg/binder"
	"github.com/dmitrymomot/identity/pkg/logger"
	"github.com/dmitrymomot/identity/pkg/validator"
)

type greetRequest struct {
	Name string `form:"name" json:"name"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestWrap(t *testing.T) {
	t.Parallel()

	greet := func(ctx handler.Context, req greetRequest) handler.Response {
		if req.Name == "" {
			return handler.Error(validator.Apply(validator.Required("name", req.Name)))
		}
		return handler.JSON(map[string]string{"hello": req.Name})
	}
	h := handler.Wrap(greet,
		handler.WithBinder[greetRequest](binder.Auto()),
		handler.WithErrorHandler[greetRequest](handler.NewErrorHandler(logger.Discard())),
	)

	t.Run("binds form and renders JSON", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name=alice"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"hello":"alice"}`, rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("binds JSON", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"bob"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.JSONEq(t, `{"hello":"bob"}`, rec.Body.String())
	})

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("name="))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, "validation_error", detail.Code)
		assert.Contains(t, detail.Details, "name")
	})

	t.Run("unsupported media type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<xml/>"))
		req.Header.Set("Content-Type", "application/xml")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decodeError(t, rec).Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		nilHandler := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil },
			handler.WithErrorHandler[struct{}](handler.NewErrorHandler(logger.Discard())))
		rec := httptest.NewRecorder()

		nilHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	t.Run("http error with message", func(t *testing.T) {
		info := handler.ClassifyError(errors.Join(
			handler.ErrUnauthorized.WithMessage("Invalid username or password"),
			errors.New("detail that must not leak"),
		))
		assert.Equal(t, http.StatusUnauthorized, info.StatusCode)
		assert.Equal(t, "unauthorized", info.Key)
		assert.Equal(t, "Invalid username or password", info.Message)
	})

	t.Run("http error without message", func(t *testing.T) {
		info := handler.ClassifyError(handler.ErrTooManyRequests)
		assert.Equal(t, http.StatusTooManyRequests, info.StatusCode)
		assert.Equal(t, "Too Many Requests", info.Message)
	})

	t.Run("unknown error is generic", func(t *testing.T) {
		info := handler.ClassifyError(errors.New("pq: relation users does not exist"))
		assert.Equal(t, http.StatusInternalServerError, info.StatusCode)
		assert.NotContains(t, info.Message, "relation")
	})
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := handler.Redirect("/home", &http.Cookie{Name: "a", Value: "b"}).Render(rec, req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "a=b")
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.Empty().Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
