package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/openclaw/kokoro-tts/core/backend"
	"github.com/openclaw/kokoro-tts/core/schema"
)

func registerRoutes(e *echo.Echo, sy *backend.Synthesizer) {
	e.GET("/v1/metadata", metadataEndpoint(sy))
	e.POST("/v1/tts", ttsEndpoint(sy))
}

// metadataEndpoint returns the static capability descriptor.
// @Router /v1/metadata [get]
func metadataEndpoint(sy *backend.Synthesizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, sy.Metadata())
	}
}

// ttsEndpoint generates audio from the input text.
// @Param request body schema.TTSRequest true "query params"
// @Router /v1/tts [post]
func ttsEndpoint(sy *backend.Synthesizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		input := new(schema.TTSRequest)
		if err := c.Bind(input); err != nil {
			log.Error().Err(err).Msg("error parsing TTS request body")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		result, err := sy.Synthesize(c.Request().Context(), *input)
		if err != nil {
			log.Error().Err(err).Msg("synthesis request failed")
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}
