package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-sign-bridge/internal/api/httperrors"
	"github.com/kashguard/go-sign-bridge/internal/types"
)

// HTTPErrorHandler 统一错误出口：一律转成 types.PublicHTTPError
// 内部原因只进日志，不下发
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var public *types.PublicHTTPError

	switch e := err.(type) {
	case *httperrors.HTTPError:
		if e.Internal != nil {
			log.Warn().Err(e.Internal).Int("status", e.Status).Str("type", e.Type).Msg("Request failed")
		}
		public = &e.PublicHTTPError
	case *echo.HTTPError:
		public = &types.PublicHTTPError{
			Status: e.Code,
			Type:   types.PublicHTTPErrorTypeGeneric,
			Title:  http.StatusText(e.Code),
		}
	default:
		log.Error().Err(err).Msg("Unhandled error in request")
		public = &types.PublicHTTPError{
			Status: http.StatusInternalServerError,
			Type:   types.PublicHTTPErrorTypeGeneric,
			Title:  http.StatusText(http.StatusInternalServerError),
		}
	}

	if writeErr := c.JSON(public.Status, public); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
