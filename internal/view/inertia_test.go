package view_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/view"
)

func TestRenderFullLoadEmbedsPage(t *testing.T) {
	engine, err := view.NewEngine("v1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/apps/categories?q=foo", nil)
	res := httptest.NewRecorder()

	err = engine.Render(res, req, http.StatusOK, "Apps/Categories/Index", map[string]any{"hello": "world"})
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Header().Get("Content-Type"), "text/html")
	require.Contains(t, res.Body.String(), "data-page=")
	require.Contains(t, res.Body.String(), "Apps/Categories/Index")
}

func TestRenderBridgeRequestReturnsJSON(t *testing.T) {
	engine, err := view.NewEngine("v1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/apps/categories", nil)
	req.Header.Set("X-Inertia", "true")
	res := httptest.NewRecorder()

	err = engine.Render(res, req, http.StatusOK, "Apps/Categories/Index", map[string]any{"total": 3})
	require.NoError(t, err)

	require.Equal(t, "true", res.Header().Get("X-Inertia"))
	require.Contains(t, res.Header().Get("Content-Type"), "application/json")

	var page view.Page
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	require.Equal(t, "Apps/Categories/Index", page.Component)
	require.Equal(t, "/apps/categories", page.URL)
	require.Equal(t, "v1", page.Version)
}

func TestRedirectUsesSeeOther(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/apps/categories", strings.NewReader(""))
	res := httptest.NewRecorder()

	view.Redirect(res, req, "/apps/categories")

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/apps/categories", res.Header().Get("Location"))
}
