package bridge

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/api/httperrors"
	"github.com/kashguard/go-sign-bridge/internal/bridge"
	"github.com/kashguard/go-sign-bridge/internal/types"
	"github.com/kashguard/go-sign-bridge/internal/util"
)

// PostWalletRoute 注册钱包身份上报路由
func PostWalletRoute(s *api.Server) *echo.Route {
	return s.Router.Bridge.POST("/wallet", postWalletHandler(s))
}

// postWalletHandler 接收钱包身份，触发载荷构建并通知外围应用
func postWalletHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostWalletPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		pubKey, err := base64.StdEncoding.DecodeString(body.PubkeyBase64)
		if err != nil {
			return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "pubkey_base64 is not valid base64")
		}

		if err := s.Flow.HandleWallet(ctx, body.Address, pubKey); err != nil {
			if errors.Is(err, bridge.ErrFlowTerminated) {
				return httperrors.ErrConflictFlowTerminated
			}
			log.Error().Err(err).Msg("Failed to build sign payload")
			return httperrors.NewHTTPErrorWithInternal(http.StatusBadGateway, types.PublicHTTPErrorTypeLedger, "Failed to prepare the signing payload", err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.PostWalletResponse{OK: true})
	}
}
