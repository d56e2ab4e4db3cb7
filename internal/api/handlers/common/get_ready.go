package common

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/util"
)

// GetReadyRoute 注册就绪探针路由
func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Root.GET("/-/ready", getReadyHandler(s))
}

// getReadyHandler 就绪探针：确认账本 REST 网关可达
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		height, err := s.Ledger.LatestHeight(ctx)
		if err != nil {
			util.LogFromContext(ctx).Warn().Err(err).Msg("Readiness check failed, ledger gateway unreachable")
			return c.String(http.StatusServiceUnavailable, "Not ready.")
		}

		return c.String(http.StatusOK, fmt.Sprintf("Ready. Ledger height %d.", height))
	}
}
