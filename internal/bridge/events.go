package bridge

import "github.com/kashguard/go-sign-bridge/internal/session"

// EventType 桥向外围应用发布的事件类型
type EventType string

const (
	// EventBridgeReady 配对服务已监听，URL 可供展示
	EventBridgeReady EventType = "bridge-ready"
	// EventWalletConnected 浏览器扩展已上报钱包身份
	EventWalletConnected EventType = "wallet-connected"
	// EventSessionCreated 会话开通成功并已持久化
	EventSessionCreated EventType = "session-created"
	// EventSessionFailed 本次开通流程终止失败，需要重新发起
	EventSessionFailed EventType = "session-failed"
)

// Event 单向事件，fire-and-forget：通道满或接收方消失都不得影响桥本身
type Event struct {
	Type EventType

	// bridge-ready
	URL string

	// wallet-connected
	WalletAddress string

	// session-created（Record 含助记词，接收方负责妥善处理）
	Record *session.Record

	// session-failed
	Message string
}
