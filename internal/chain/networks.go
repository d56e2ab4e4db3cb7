package chain

import (
	"math/big"

	"github.com/pkg/errors"
)

// 交易消息类型常量
const (
	// MsgAddAuthenticatorTypeURL 注册 authenticator 的消息类型
	MsgAddAuthenticatorTypeURL = "/dydxprotocol.accountplus.MsgAddAuthenticator"

	// TradingMsgTypeURL 会话密钥被允许签名的交易消息类型
	TradingMsgTypeURL = "/dydxprotocol.clob.MsgPlaceOrder"

	// Secp256k1PubKeyTypeURL 签名者公钥的类型
	Secp256k1PubKeyTypeURL = "/cosmos.crypto.secp256k1.PubKey"
)

// Network 链网络参数
// RegistrationGas 是 authenticator 注册交易的固定 gas 上限（操作形状固定）
type Network struct {
	ChainID         string
	RESTEndpoint    string
	FeeDenom        string
	Bech32Prefix    string
	RegistrationGas uint64
	GasPrice        uint64 // 每单位 gas 的最小计价（FeeDenom 的最小单位）
}

// 已知网络注册表
var networks = map[string]Network{
	"dydx-mainnet-1": {
		ChainID:         "dydx-mainnet-1",
		RESTEndpoint:    "https://dydx-rest.publicnode.com",
		FeeDenom:        "adydx",
		Bech32Prefix:    "dydx",
		RegistrationGas: 1_000_000,
		GasPrice:        12_500_000_000,
	},
	"dydx-testnet-4": {
		ChainID:         "dydx-testnet-4",
		RESTEndpoint:    "https://dydx-testnet-api.polkachu.com",
		FeeDenom:        "adv4tnt",
		Bech32Prefix:    "dydx",
		RegistrationGas: 1_000_000,
		GasPrice:        25_000_000_000,
	},
}

// ResolveNetwork 将链 ID 解析为网络默认值，调用方留空的字段用默认值补齐
func ResolveNetwork(chainID, endpointOverride, feeDenomOverride string) (Network, error) {
	net, ok := networks[chainID]
	if !ok {
		return Network{}, errors.Errorf("unknown chain id %q", chainID)
	}
	if endpointOverride != "" {
		net.RESTEndpoint = endpointOverride
	}
	if feeDenomOverride != "" {
		net.FeeDenom = feeDenomOverride
	}
	return net, nil
}

// RegistrationFeeAmount 计算注册交易的固定费用（gas × gas price）
func (n Network) RegistrationFeeAmount() string {
	fee := new(big.Int).Mul(
		new(big.Int).SetUint64(n.RegistrationGas),
		new(big.Int).SetUint64(n.GasPrice),
	)
	return fee.String()
}
