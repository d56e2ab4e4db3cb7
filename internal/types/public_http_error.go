package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
)

// 公共错误类型常量，客户端根据 type 做对应处理
const (
	PublicHTTPErrorTypeGeneric         = "GENERIC"
	PublicHTTPErrorTypeInvalidPayload  = "INVALID_PAYLOAD"
	PublicHTTPErrorTypeValidation      = "VALIDATION_ERROR"
	PublicHTTPErrorTypePayloadNotReady = "PAYLOAD_NOT_READY"
	PublicHTTPErrorTypePayloadMismatch = "PAYLOAD_MISMATCH"
	PublicHTTPErrorTypeLedger          = "LEDGER_ERROR"
)

// PublicHTTPError 对外暴露的统一错误结构
type PublicHTTPError struct {
	Status int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
}

// Validate validates PublicHTTPError
func (m *PublicHTTPError) Validate(formats strfmt.Registry) error {
	return nil
}

// MarshalBinary interface implementation
func (m *PublicHTTPError) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *PublicHTTPError) UnmarshalBinary(b []byte) error {
	var res PublicHTTPError
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
