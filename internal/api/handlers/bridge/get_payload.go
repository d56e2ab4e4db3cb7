package bridge

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/api/httperrors"
	"github.com/kashguard/go-sign-bridge/internal/types"
	"github.com/kashguard/go-sign-bridge/internal/util"
)

// GetPayloadRoute 注册载荷下发路由
func GetPayloadRoute(s *api.Server) *echo.Route {
	return s.Router.Bridge.GET("/payload", getPayloadHandler(s))
}

// getPayloadHandler 下发当前待签名载荷（字节字段 base64 编码）
// 尚未就绪时返回 400
func getPayloadHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload, err := s.Flow.Payload()
		if err != nil {
			return httperrors.ErrBadRequestPayloadNotReady
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.GetSignPayloadResponse{
			BodyBytes:     base64.StdEncoding.EncodeToString(payload.BodyBytes),
			AuthInfoBytes: base64.StdEncoding.EncodeToString(payload.AuthInfoBytes),
			AccountNumber: strconv.FormatUint(payload.AccountNumber, 10),
			ChainID:       payload.ChainID,
		})
	}
}
