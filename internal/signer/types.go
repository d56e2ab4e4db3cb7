package signer

import "time"

// 订单方向
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// SignRequest 一笔待授权的交易意图，由外围应用构造
type SignRequest struct {
	Ticker    string
	Side      string
	Size      float64
	Leverage  uint32
	Timestamp int64
}

// Signature 不透明签名（hex 编码的 DER 签名）
type Signature string

// SessionInfo 当前活动会话的展示信息（不含密钥材料）
type SessionInfo struct {
	ID              string
	SessionAddress  string
	AuthenticatorID uint64
	ExpiresAt       time.Time
}

// State 签名器状态快照，仅用于状态展示
type State struct {
	WalletConnected bool
	AutoSignEnabled bool
	Session         *SessionInfo
}
