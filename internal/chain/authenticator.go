package chain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// 链上 authenticator 类型
const (
	AuthenticatorTypeAllOf                 = "AllOf"
	AuthenticatorTypeSignatureVerification = "SignatureVerification"
	AuthenticatorTypeMessageFilter         = "MessageFilter"
	AuthenticatorTypeSubaccountFilter      = "SubaccountFilter"
)

// SubAuthenticator 组合 authenticator 的子项
// Config 序列化为 base64（encoding/json 对 []byte 的默认行为，与链上格式一致）
type SubAuthenticator struct {
	Type   string `json:"type"`
	Config []byte `json:"config"`
}

// AuthenticatorSpec 会话密钥的能力描述：按序组合的子 authenticator
// 必须在请求任何签名之前构建完成，之后不得改动
type AuthenticatorSpec struct {
	Type              string
	SubAuthenticators []SubAuthenticator
}

// BuildAuthenticatorSpec 构建标准的三段组合：
// 1. 签名必须能用会话公钥验证
// 2. 消息类型限制为交易所需的下单消息
// 3. 限制到指定子账户
func BuildAuthenticatorSpec(sessionPubKey []byte, msgTypeURL, subaccount string) (AuthenticatorSpec, error) {
	if len(sessionPubKey) != CompressedPubKeyLen {
		return AuthenticatorSpec{}, errors.Errorf("session public key must be %d bytes, got %d", CompressedPubKeyLen, len(sessionPubKey))
	}
	if msgTypeURL == "" {
		return AuthenticatorSpec{}, errors.New("message type url is required")
	}
	if subaccount == "" {
		return AuthenticatorSpec{}, errors.New("subaccount is required")
	}

	pub := make([]byte, len(sessionPubKey))
	copy(pub, sessionPubKey)

	return AuthenticatorSpec{
		Type: AuthenticatorTypeAllOf,
		SubAuthenticators: []SubAuthenticator{
			{Type: AuthenticatorTypeSignatureVerification, Config: pub},
			{Type: AuthenticatorTypeMessageFilter, Config: []byte(msgTypeURL)},
			{Type: AuthenticatorTypeSubaccountFilter, Config: []byte(subaccount)},
		},
	}, nil
}

// Data 将子 authenticator 列表编码为注册消息的不透明 data 字段
func (s AuthenticatorSpec) Data() ([]byte, error) {
	if len(s.SubAuthenticators) == 0 {
		return nil, errors.New("authenticator spec has no sub-authenticators")
	}
	data, err := json.Marshal(s.SubAuthenticators)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode authenticator spec")
	}
	return data, nil
}
