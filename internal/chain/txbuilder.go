package chain

import (
	"bytes"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// SignPayload 钱包需要签名的规范字节串
// 由一次实时账户查询的 (account_number, sequence) 构建；sequence 过期即作废，
// 流程必须从账户查询重新开始，不支持续用
type SignPayload struct {
	BodyBytes     []byte
	AuthInfoBytes []byte
	AccountNumber uint64
	ChainID       string
}

// Equal 判断提交回来的字节串是否与下发的完全一致
func (p *SignPayload) Equal(bodyBytes, authInfoBytes []byte) bool {
	return p != nil &&
		bytes.Equal(p.BodyBytes, bodyBytes) &&
		bytes.Equal(p.AuthInfoBytes, authInfoBytes)
}

// BuildAddAuthenticatorPayload 构建 authenticator 注册交易的未签名载荷
// 交易体只含一条 MsgAddAuthenticator；任何一步失败都不返回部分结果
func BuildAddAuthenticatorPayload(
	net Network,
	walletAddress string,
	walletPubKey []byte,
	spec AuthenticatorSpec,
	accountNumber, sequence uint64,
) (*SignPayload, error) {
	if walletAddress == "" {
		return nil, errors.New("wallet address is required")
	}

	pub, err := ParseCompressedPubKey(walletPubKey)
	if err != nil {
		return nil, err
	}

	data, err := spec.Data()
	if err != nil {
		return nil, err
	}

	msg := encodeMsgAddAuthenticator(walletAddress, spec.Type, data)
	bodyBytes := encodeTxBody(encodeAny(MsgAddAuthenticatorTypeURL, msg))
	authInfoBytes := encodeAuthInfo(pub, sequence, net)

	return &SignPayload{
		BodyBytes:     bodyBytes,
		AuthInfoBytes: authInfoBytes,
		AccountNumber: accountNumber,
		ChainID:       net.ChainID,
	}, nil
}

// SignDocBytes 计算 SIGN_MODE_DIRECT 的签名文档字节串
func (p *SignPayload) SignDocBytes() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, p.BodyBytes)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, p.AuthInfoBytes)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, p.ChainID)
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, p.AccountNumber)
	return b
}

// EncodeTxRaw 组装已签名交易（广播用）
func EncodeTxRaw(bodyBytes, authInfoBytes, signature []byte) ([]byte, error) {
	if len(bodyBytes) == 0 || len(authInfoBytes) == 0 {
		return nil, errors.New("body and auth info bytes are required")
	}
	if len(signature) == 0 {
		return nil, errors.New("signature is required")
	}

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, bodyBytes)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, authInfoBytes)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, signature)
	return b, nil
}

// encodeAny 编码 google.protobuf.Any
func encodeAny(typeURL string, value []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, typeURL)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, value)
	return b
}

// encodeMsgAddAuthenticator 编码注册消息：sender、类型、不透明 data
func encodeMsgAddAuthenticator(sender, authenticatorType string, data []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, sender)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, authenticatorType)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	return b
}

// encodeTxBody 编码交易体（仅 messages 字段）
func encodeTxBody(msgs ...[]byte) []byte {
	var b []byte
	for _, msg := range msgs {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	return b
}

// encodeAuthInfo 编码签名者信息与固定费用
func encodeAuthInfo(pubKey []byte, sequence uint64, net Network) []byte {
	// PubKey 消息：field 1 = key bytes
	var pk []byte
	pk = protowire.AppendTag(pk, 1, protowire.BytesType)
	pk = protowire.AppendBytes(pk, pubKey)

	// ModeInfo.Single{mode: SIGN_MODE_DIRECT}
	var single []byte
	single = protowire.AppendTag(single, 1, protowire.VarintType)
	single = protowire.AppendVarint(single, 1) // SIGN_MODE_DIRECT
	var modeInfo []byte
	modeInfo = protowire.AppendTag(modeInfo, 1, protowire.BytesType)
	modeInfo = protowire.AppendBytes(modeInfo, single)

	// SignerInfo{public_key, mode_info, sequence}
	var signerInfo []byte
	signerInfo = protowire.AppendTag(signerInfo, 1, protowire.BytesType)
	signerInfo = protowire.AppendBytes(signerInfo, encodeAny(Secp256k1PubKeyTypeURL, pk))
	signerInfo = protowire.AppendTag(signerInfo, 2, protowire.BytesType)
	signerInfo = protowire.AppendBytes(signerInfo, modeInfo)
	signerInfo = protowire.AppendTag(signerInfo, 3, protowire.VarintType)
	signerInfo = protowire.AppendVarint(signerInfo, sequence)

	// Coin{denom, amount}
	var coin []byte
	coin = protowire.AppendTag(coin, 1, protowire.BytesType)
	coin = protowire.AppendString(coin, net.FeeDenom)
	coin = protowire.AppendTag(coin, 2, protowire.BytesType)
	coin = protowire.AppendString(coin, net.RegistrationFeeAmount())

	// Fee{amount, gas_limit}
	var fee []byte
	fee = protowire.AppendTag(fee, 1, protowire.BytesType)
	fee = protowire.AppendBytes(fee, coin)
	fee = protowire.AppendTag(fee, 2, protowire.VarintType)
	fee = protowire.AppendVarint(fee, net.RegistrationGas)

	// AuthInfo{signer_infos, fee}
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, signerInfo)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, fee)
	return b
}
