// Package response writes the stub backend's JSON bodies.
//
// Read endpoints wrap their payload in an Envelope; the dashboard client
// unwraps Data whenever both data and status are present. Error bodies are
// shown to the user as-is, so their text must stand on its own.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope wraps a successful payload.
type Envelope struct {
	Data    any    `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path"`
}

// Problem is the body of an enveloped error.
type Problem struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Path    string `json:"path"`
	Status  int    `json:"status"`
}

func requestPath(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().URL.Path
}

func envelope(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, Envelope{Data: data, Status: status, Message: message, Path: requestPath(c)})
}

// OK sends 200 with data enveloped.
func OK(c echo.Context, data any, message string) error {
	return envelope(c, http.StatusOK, data, message)
}

// Created sends 201 with data enveloped.
func Created(c echo.Context, data any, message string) error {
	return envelope(c, http.StatusCreated, data, message)
}

// Fail sends {"error": msg}, the shape of every /inputs error.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func problem(c echo.Context, status int, message, detail string) error {
	return c.JSON(status, Problem{Message: message, Error: detail, Path: requestPath(c), Status: status})
}

func BadRequest(c echo.Context, message, detail string) error {
	return problem(c, http.StatusBadRequest, message, detail)
}

func NotFound(c echo.Context, message, detail string) error {
	return problem(c, http.StatusNotFound, message, detail)
}

func InternalError(c echo.Context, message, detail string) error {
	return problem(c, http.StatusInternalServerError, message, detail)
}
