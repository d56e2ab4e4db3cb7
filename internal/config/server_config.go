package config

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/subosito/gotenv"

	"github.com/kashguard/go-sign-bridge/internal/util"
)

// Bridge 本地配对服务配置
// ListenAddress 默认使用回环地址 + 临时端口，对外地址在监听成功后通过事件发布
type Bridge struct {
	ListenAddress string
}

// Ledger 链上查询/广播所用的 REST 网关配置
// Endpoint 留空时由 chain.ResolveNetwork 按链 ID 填默认值
type Ledger struct {
	Endpoint       string
	RequestTimeout time.Duration
}

// Provisioning 会话开通流程配置
// 轮询参数必须显式可配，测试环境可以收紧
type Provisioning struct {
	ChainID          string
	FeeDenom         string
	SubaccountNumber string
	SessionTTL       time.Duration
	PollInterval     time.Duration
	PollMaxAttempts  int
}

// SessionStore 会话记录持久化配置
type SessionStore struct {
	Path string
}

// Logger 日志配置
type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

// Server 服务整体配置
type Server struct {
	Bridge       Bridge
	Ledger       Ledger
	Provisioning Provisioning
	SessionStore SessionStore
	Logger       Logger
}

// DefaultServiceConfigFromEnv 从环境变量组装默认配置
// 本地开发可放一个 .env.local，不存在时静默忽略
func DefaultServiceConfigFromEnv() Server {
	_ = gotenv.Load(".env.local")

	logLevel, err := zerolog.ParseLevel(util.GetEnv("SIGNBRIDGE_LOG_LEVEL", "info"))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	return Server{
		Bridge: Bridge{
			ListenAddress: util.GetEnv("SIGNBRIDGE_LISTEN_ADDRESS", "127.0.0.1:0"),
		},
		Ledger: Ledger{
			Endpoint:       util.GetEnv("SIGNBRIDGE_LEDGER_ENDPOINT", ""),
			RequestTimeout: util.GetEnvAsDuration("SIGNBRIDGE_LEDGER_TIMEOUT", 15*time.Second),
		},
		Provisioning: Provisioning{
			ChainID:          util.GetEnv("SIGNBRIDGE_CHAIN_ID", "dydx-mainnet-1"),
			FeeDenom:         util.GetEnv("SIGNBRIDGE_FEE_DENOM", ""),
			SubaccountNumber: util.GetEnv("SIGNBRIDGE_SUBACCOUNT", "0"),
			SessionTTL:       util.GetEnvAsDuration("SIGNBRIDGE_SESSION_TTL", 25*time.Minute),
			PollInterval:     util.GetEnvAsDuration("SIGNBRIDGE_POLL_INTERVAL", 2*time.Second),
			PollMaxAttempts:  util.GetEnvAsInt("SIGNBRIDGE_POLL_MAX_ATTEMPTS", 15),
		},
		SessionStore: SessionStore{
			Path: util.GetEnv("SIGNBRIDGE_SESSION_FILE", defaultSessionFilePath()),
		},
		Logger: Logger{
			Level:              logLevel,
			PrettyPrintConsole: util.GetEnvAsBool("SIGNBRIDGE_LOG_PRETTY", true),
		},
	}
}
