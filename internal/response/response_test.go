package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, path string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), rec)
	require.NoError(t, h(c))
	return rec
}

func TestOK_Envelopes(t *testing.T) {
	rec := serve(t, "/logs/status", func(c echo.Context) error {
		return OK(c, map[string]int{"pending_count": 2}, "")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"pending_count":2},"status":200,"path":"/logs/status"}`, rec.Body.String())
}

func TestCreated_CarriesMessage(t *testing.T) {
	rec := serve(t, "/inputs", func(c echo.Context) error {
		return Created(c, map[string]string{"id": "x"}, "input created")
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusCreated, env.Status)
	assert.Equal(t, "input created", env.Message)
}

func TestFail_PlainErrorBody(t *testing.T) {
	rec := serve(t, "/inputs", func(c echo.Context) error {
		return Fail(c, http.StatusBadRequest, "unknown input type: syslog")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"unknown input type: syslog"}`, rec.Body.String())
}

func TestNotFound_Problem(t *testing.T) {
	rec := serve(t, "/uploads/content", func(c echo.Context) error {
		return NotFound(c, "upload not found", "not found")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "upload not found", p.Message)
	assert.Equal(t, "/uploads/content", p.Path)
	assert.Equal(t, http.StatusNotFound, p.Status)
}
