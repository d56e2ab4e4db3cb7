package test

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/api/router"
	"github.com/kashguard/go-sign-bridge/internal/bridge"
	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/config"
	"github.com/kashguard/go-sign-bridge/internal/session"
)

// WithTestServer 构建一个挂好路由、注入假账本的桥服务供处理器测试使用
// 会话文件落在测试临时目录，轮询参数收紧到毫秒级
func WithTestServer(t *testing.T, fakeLedger *FakeLedger, fn func(s *api.Server)) {
	t.Helper()

	net, err := chain.ResolveNetwork("dydx-testnet-4", "", "")
	require.NoError(t, err)

	cfg := config.Server{
		Bridge: config.Bridge{ListenAddress: "127.0.0.1:0"},
		Provisioning: config.Provisioning{
			ChainID:          net.ChainID,
			SubaccountNumber: "0",
			SessionTTL:       25 * time.Minute,
			PollInterval:     time.Millisecond,
			PollMaxAttempts:  3,
		},
		Logger: config.Logger{Level: zerolog.WarnLevel},
	}

	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	flow := bridge.NewFlow(bridge.Options{
		Network:          net,
		SubaccountNumber: cfg.Provisioning.SubaccountNumber,
		SessionTTL:       cfg.Provisioning.SessionTTL,
		PollInterval:     cfg.Provisioning.PollInterval,
		PollMaxAttempts:  cfg.Provisioning.PollMaxAttempts,
	}, fakeLedger, store)

	s := api.NewServer(cfg, flow, fakeLedger, store)
	router.Init(s)

	fn(s)
}

// PerformRequest 直接走 echo 的 ServeHTTP，不经过真实网络
func PerformRequest(t *testing.T, s *api.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}
