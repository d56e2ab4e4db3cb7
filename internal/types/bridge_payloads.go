package types

import (
	"context"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/go-openapi/validate"
)

// PostWalletPayload 浏览器扩展上报的钱包身份
type PostWalletPayload struct {
	Address      string `json:"address"`
	PubkeyBase64 string `json:"pubkey_base64"`
}

// Validate validates PostWalletPayload
func (m *PostWalletPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("address", "body", m.Address); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("pubkey_base64", "body", m.PubkeyBase64); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// ContextValidate validates this payload based on context it is used
func (m *PostWalletPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// PostWalletResponse 定义
type PostWalletResponse struct {
	OK bool `json:"ok"`
}

// Validate validates PostWalletResponse
func (m *PostWalletResponse) Validate(formats strfmt.Registry) error {
	return nil
}

// GetSignPayloadResponse 待签名交易的规范字节串（base64 编码）
type GetSignPayloadResponse struct {
	BodyBytes     string `json:"body_bytes"`
	AuthInfoBytes string `json:"auth_info_bytes"`
	AccountNumber string `json:"account_number"`
	ChainID       string `json:"chain_id"`
}

// Validate validates GetSignPayloadResponse
func (m *GetSignPayloadResponse) Validate(formats strfmt.Registry) error {
	return nil
}

// PostSubmitPayload 浏览器回传的签名提交
// body_bytes / auth_info_bytes 必须与之前下发的 SignPayload 完全一致
type PostSubmitPayload struct {
	SignatureBase64 string `json:"signature_base64"`
	BodyBytes       string `json:"body_bytes"`
	AuthInfoBytes   string `json:"auth_info_bytes"`
}

// Validate validates PostSubmitPayload
func (m *PostSubmitPayload) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("signature_base64", "body", m.SignatureBase64); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("body_bytes", "body", m.BodyBytes); err != nil {
		res = append(res, err)
	}

	if err := validate.RequiredString("auth_info_bytes", "body", m.AuthInfoBytes); err != nil {
		res = append(res, err)
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}
	return nil
}

// ContextValidate validates this payload based on context it is used
func (m *PostSubmitPayload) ContextValidate(ctx context.Context, formats strfmt.Registry) error {
	return nil
}

// PostSubmitResponse 定义
type PostSubmitResponse struct {
	OK     bool   `json:"ok"`
	TxHash string `json:"tx_hash"`
}

// Validate validates PostSubmitResponse
func (m *PostSubmitResponse) Validate(formats strfmt.Registry) error {
	return nil
}

// MarshalBinary interface implementation
func (m *PostSubmitResponse) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return swag.WriteJSON(m)
}

// UnmarshalBinary interface implementation
func (m *PostSubmitResponse) UnmarshalBinary(b []byte) error {
	var res PostSubmitResponse
	if err := swag.ReadJSON(b, &res); err != nil {
		return err
	}
	*m = res
	return nil
}
