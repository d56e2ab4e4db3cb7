package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-sign-bridge/internal/api"
	bridgeHandlers "github.com/kashguard/go-sign-bridge/internal/api/handlers/bridge"
	commonHandlers "github.com/kashguard/go-sign-bridge/internal/api/handlers/common"
	"github.com/kashguard/go-sign-bridge/internal/util"
)

// Init 初始化 echo 实例、中间件和全部路由
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.HTTPErrorHandler = api.HTTPErrorHandler

	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestID())
	s.Echo.Use(injectRequestLogger)
	// 配对页面的请求体都很小，超限直接拒绝
	s.Echo.Use(middleware.BodyLimit("64K"))

	s.Router = &api.Router{
		Root:   s.Echo.Group(""),
		Bridge: s.Echo.Group(""),
	}

	s.Router.Routes = []*echo.Route{
		commonHandlers.GetReadyRoute(s),
		bridgeHandlers.GetIndexRoute(s),
		bridgeHandlers.PostWalletRoute(s),
		bridgeHandlers.GetPayloadRoute(s),
		bridgeHandlers.PostSubmitRoute(s),
	}
}

// injectRequestLogger 把带 request_id 的请求级 logger 注入上下文
// 处理器通过 util.LogFromContext 取用
func injectRequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := log.With().
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Logger()

		req := c.Request()
		c.SetRequest(req.WithContext(util.WithLogger(req.Context(), l)))
		return next(c)
	}
}
