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

// PostSubmitRoute 注册签名提交路由
func PostSubmitRoute(s *api.Server) *echo.Route {
	return s.Router.Bridge.POST("/submit", postSubmitHandler(s))
}

// postSubmitHandler 接收签名、广播注册交易、等待确认并持久化会话
// 成功或广播/确认失败都会终结流程，服务随后停机
func postSubmitHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostSubmitPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		signature, err := base64.StdEncoding.DecodeString(body.SignatureBase64)
		if err != nil {
			return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "signature_base64 is not valid base64")
		}
		bodyBytes, err := base64.StdEncoding.DecodeString(body.BodyBytes)
		if err != nil {
			return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "body_bytes is not valid base64")
		}
		authInfoBytes, err := base64.StdEncoding.DecodeString(body.AuthInfoBytes)
		if err != nil {
			return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "auth_info_bytes is not valid base64")
		}

		txHash, err := s.Flow.HandleSubmit(ctx, signature, bodyBytes, authInfoBytes)
		if err != nil {
			switch {
			case errors.Is(err, bridge.ErrFlowTerminated):
				return httperrors.ErrConflictFlowTerminated
			case errors.Is(err, bridge.ErrPayloadNotReady):
				return httperrors.ErrBadRequestPayloadNotReady
			case errors.Is(err, bridge.ErrPayloadMismatch):
				return httperrors.ErrBadRequestPayloadMismatch
			default:
				log.Error().Err(err).Msg("Session provisioning failed")
				return httperrors.NewHTTPErrorWithInternal(http.StatusBadGateway, types.PublicHTTPErrorTypeLedger, "Session provisioning failed", err)
			}
		}

		return util.ValidateAndReturn(c, http.StatusOK, &types.PostSubmitResponse{OK: true, TxHash: txHash})
	}
}
