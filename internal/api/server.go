package api

import (
	"context"
	"net"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kashguard/go-sign-bridge/internal/bridge"
	"github.com/kashguard/go-sign-bridge/internal/config"
	"github.com/kashguard/go-sign-bridge/internal/ledger"
	"github.com/kashguard/go-sign-bridge/internal/session"
)

// Router 路由分组
type Router struct {
	Routes []*echo.Route

	// Root 运维端点（/-/ready）
	Root *echo.Group
	// Bridge 配对协议的根分组（/、/wallet、/payload、/submit）
	Bridge *echo.Group
}

// Server 配对服务：临时端口上的本地 HTTP 端点 + 开通流程状态机
type Server struct {
	Config config.Server
	Echo   *echo.Echo
	Router *Router

	Flow   *bridge.Flow
	Ledger ledger.Client
	Store  *session.FileStore
}

// NewServer 创建配对服务（路由由 router.Init 挂载）
func NewServer(cfg config.Server, flow *bridge.Flow, ledgerClient ledger.Client, store *session.FileStore) *Server {
	return &Server{
		Config: cfg,
		Flow:   flow,
		Ledger: ledgerClient,
		Store:  store,
	}
}

// Start 在回环地址的临时端口开始监听，返回对外公布的 URL
func (s *Server) Start() (string, error) {
	if s.Echo == nil {
		return "", errors.New("server routes are not initialized")
	}

	listener, err := net.Listen("tcp", s.Config.Bridge.ListenAddress)
	if err != nil {
		return "", errors.Wrap(err, "failed to listen on bridge address")
	}
	s.Echo.Listener = listener

	url := "http://" + listener.Addr().String()

	go func() {
		if err := s.Echo.Start(""); err != nil && !errors.Is(err, context.Canceled) {
			// http.ErrServerClosed 是正常停机路径
			log.Debug().Err(err).Msg("Bridge HTTP server stopped")
		}
	}()

	s.Flow.AnnounceReady(url)
	log.Info().Str("url", url).Msg("Bridge listening")
	return url, nil
}

// WaitForCompletion 阻塞直到流程终结或上下文取消，然后优雅停机
func (s *Server) WaitForCompletion(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-s.Flow.Done():
		// 最后一个响应写完再停机
		time.Sleep(100 * time.Millisecond)
	}
	return s.Shutdown()
}

// Shutdown 优雅停机
func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Echo.Shutdown(shutdownCtx)
}
