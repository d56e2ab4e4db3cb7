package util

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"

	"github.com/kashguard/go-sign-bridge/internal/api/httperrors"
	"github.com/kashguard/go-sign-bridge/internal/types"
)

// BindAndValidateBody 绑定并校验请求体
// 严格模式解码：未知字段直接拒绝，不做静默忽略
func BindAndValidateBody(c echo.Context, v runtime.Validatable) error {
	req := c.Request()
	if req.Body == nil {
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "Request body is required")
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Failed to decode request body")
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "Malformed request body: "+err.Error())
	}

	// 拒绝 body 中出现多个 JSON 文档
	if dec.More() {
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "Unexpected trailing data in request body")
	}
	if err := dec.Decode(&struct{}{}); err != nil && err != io.EOF {
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeInvalidPayload, "Unexpected trailing data in request body")
	}

	if err := v.Validate(strfmt.Default); err != nil {
		LogFromEchoContext(c).Debug().Err(err).Msg("Request body validation failed")
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeValidation, err.Error())
	}

	return nil
}

// ValidateAndReturn 校验响应体后返回 JSON
func ValidateAndReturn(c echo.Context, code int, v runtime.Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		return err
	}
	return c.JSON(code, v)
}
