package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type message struct {
	Value string `json:"value"`
}

func (m message) Encode() ([]byte, string, error) {
	data, err := json.Marshal(m)
	return data, "application/json", err
}

func (m *message) Decode(data []byte) error {
	return json.Unmarshal(data, m)
}

func tag(name string, order *[]string) web.MidFunc {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			*order = append(*order, name)
			return next(ctx, r)
		}
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string

	logf := func(context.Context, string, ...any) {}
	app := web.NewApp(logf, noop.NewTracerProvider().Tracer(""), tag("app", &order))

	h := func(ctx context.Context, r *http.Request) web.Encoder {
		order = append(order, "handler")
		return message{Value: web.Param(r, "slug")}
	}
	app.HandlerFunc(http.MethodGet, "v1", "/t/{slug}", h, tag("first", &order), tag("second", &order))

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/t/wondernails", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"value":"wondernails"}`, w.Body.String())
	require.Equal(t, []string{"app", "first", "second", "handler"}, order)
}

func TestNilResponseIsNoContent(t *testing.T) {
	logf := func(context.Context, string, ...any) {}
	app := web.NewApp(logf, noop.NewTracerProvider().Tracer(""))

	app.HandlerFuncNoMid(http.MethodDelete, "v1", "/things", func(ctx context.Context, r *http.Request) web.Encoder {
		return nil
	})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/things", nil))

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())
}

func TestDecode(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":"zo-system"}`))

	var m message
	require.NoError(t, web.Decode(r, &m))
	require.Equal(t, "zo-system", m.Value)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	require.Error(t, web.Decode(r, &m))
}
