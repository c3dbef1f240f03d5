package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-manager/internal/config"
	"github.com/iliyamo/movie-manager/internal/handler"
	"github.com/iliyamo/movie-manager/internal/store"
	"github.com/iliyamo/movie-manager/internal/utils"
)

const secret = "router-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	a := handler.NewAuthHandler(config.Config{JWTSecret: secret}, nil, nil)
	m := handler.NewMovieHandler(store.NewJSONProvider(t.TempDir()), nil, nil)
	g := Guards{JWTSecret: secret}
	RegisterRoutes(e)
	RegisterAuth(e, a, g)
	RegisterAPI(e, a, m, g)
	return e
}

func serve(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newServer(t), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	e := newServer(t)
	for _, p := range []string{"/v1/movies", "/v1/stats", "/v1/me", "/v1/movies/location/default"} {
		assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, p, "", "").Code, p)
	}
}

func TestMovieRoutes(t *testing.T) {
	e := newServer(t)
	tok, err := utils.NewAccessToken(secret, 5, 5)
	require.NoError(t, err)

	rec := serve(e, http.MethodPost, "/v1/movies", `{"title":"Alien"}`, tok.Token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(e, http.MethodGet, "/v1/movies/location/default", "", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodGet, "/v1/stats", "", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	assert.Equal(t, http.StatusBadRequest, serve(e, http.MethodPost, "/v1/logout", "", "").Code)
}
