package serverutils_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/metrics"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	tokens map[string]uuid.UUID
	err    error
}

func (s *stubAuth) Register(context.Context, *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuth) Login(context.Context, *dto.LoginRequest) (*dto.LoginResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	id, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, service.ErrInvalidToken
	}
	return id, nil
}

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "note not found", err: fmt.Errorf("show: %w", service.ErrNoteNotFound), wantStatus: 404, wantBody: `{"error":"not found"}`},
		{
			name:       "validation",
			err:        service.NewValidationError(map[string][]string{"title": {"can't be blank"}}),
			wantStatus: 422,
			wantBody:   `{"title":["can't be blank"]}`,
		},
		{name: "bad credentials", err: service.ErrInvalidCredentials, wantStatus: 401},
		{name: "fiber bad request", err: fiber.NewError(fiber.StatusBadRequest, "bad json"), wantStatus: 400},
		{name: "fiber not found", err: fiber.ErrNotFound, wantStatus: 404, wantBody: `{"error":"not found"}`},
		{name: "unexpected", err: errors.New("db exploded"), wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
			app.Get("/", func(*fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, string(body))
				return
			}
			var envelope serverutils.BaseResponse[any]
			require.NoError(t, json.Unmarshal(body, &envelope))
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantStatus, envelope.Code)
			if tt.wantStatus == 500 {
				assert.NotContains(t, envelope.Message, "db exploded")
			}
		})
	}
}

func TestJwtMiddleware(t *testing.T) {
	userId := uuid.New()
	auth := &stubAuth{tokens: map[string]uuid.UUID{"good": userId}}

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Use(serverutils.JwtMiddleware(auth))
	app.Get("/me", func(ctx *fiber.Ctx) error {
		id, ok := serverutils.UserID(ctx)
		if !ok {
			return errors.New("no user")
		}
		return ctx.SendString(id.String())
	})

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
	}{
		{name: "no token", prepare: func(*http.Request) {}, wantStatus: 401},
		{name: "bearer", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, wantStatus: 200},
		{name: "lowercase scheme", prepare: func(r *http.Request) { r.Header.Set("Authorization", "bearer good") }, wantStatus: 200},
		{name: "cookie", prepare: func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: serverutils.AccessTokenCookie, Value: "good"})
		}, wantStatus: 200},
		{name: "unknown token", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad") }, wantStatus: 401},
		{name: "basic auth", prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic Zm9vOmJhcg==") }, wantStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.prepare(req)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == 200 {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, userId.String(), string(body))
			}
		})
	}
}

func TestJwtMiddleware_StoreFailureIs500(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Use(serverutils.JwtMiddleware(&stubAuth{err: errors.New("redis down")}))
	app.Get("/", func(ctx *fiber.Ctx) error { return ctx.SendStatus(200) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestJwtPageMiddleware_RedirectsToLogin(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.JwtPageMiddleware(&stubAuth{}, "/login"))
	app.Get("/notes", func(ctx *fiber.Ctx) error { return ctx.SendStatus(200) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/notes", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestRequestLogger_RecordsMetrics(t *testing.T) {
	m := metrics.NewTestManager()

	app := fiber.New()
	app.Use(serverutils.RequestLogger(logger.NewNopLogger(), m))
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	app.Get("/ok", func(ctx *fiber.Ctx) error { return ctx.SendStatus(200) })
	app.Get("/missing", func(*fiber.Ctx) error { return service.ErrNoteNotFound })

	for _, path := range []string{"/ok", "/ok", "/missing"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "404")))
}

func TestRequestLogger_RecordsErrorsThatEscapeTheChain(t *testing.T) {
	m := metrics.NewTestManager()
	log := logger.NewNopLogger()

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.FiberErrorHandler(log)})
	app.Use(serverutils.RequestLogger(log, m))
	app.Use(recover.New())
	app.Get("/boom", func(*fiber.Ctx) error { panic("boom") })
	app.Get("/broken", func(*fiber.Ctx) error { return errors.New("db down") })

	tests := []struct {
		path   string
		status int
	}{
		{path: "/boom", status: fiber.StatusInternalServerError},
		{path: "/broken", status: fiber.StatusInternalServerError},
		{path: "/nowhere", status: fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "500")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "404")))
}
