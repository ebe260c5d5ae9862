package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/openclaw/kokoro-tts/core/backend"
	"github.com/openclaw/kokoro-tts/core/schema"
	"github.com/openclaw/kokoro-tts/pkg/device"
)

// App builds the HTTP API around a synthesizer instance.
func App(sy *backend.Synthesizer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := statusFor(err)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		c.JSON(code, schema.ErrorResponse{
			Error: &schema.APIError{Message: err.Error(), Code: code},
		})
	}

	// Request logging via zerolog.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			err := next(c)
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Msg("HTTP request")
			return err
		}
	})

	e.Use(middleware.Recover())

	registerRoutes(e, sy)

	return e
}

// statusFor maps synthesis errors onto HTTP status codes. Validation failures
// are the caller's fault; everything else is a server-side failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, backend.ErrEmptyInput),
		errors.Is(err, backend.ErrUnsupportedLanguage),
		errors.Is(err, backend.ErrInvalidResponseFormat),
		errors.Is(err, backend.ErrMissingOutputPath),
		errors.Is(err, device.ErrInvalidDevice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
