package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/internal/api"
	"github.com/kashguard/go-sign-bridge/internal/api/router"
	"github.com/kashguard/go-sign-bridge/internal/bridge"
	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/config"
	"github.com/kashguard/go-sign-bridge/internal/ledger"
	"github.com/kashguard/go-sign-bridge/internal/session"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the local pairing server and provision a signing session",
		Long: "Starts the loopback pairing server, prints the pairing URL, and waits\n" +
			"for the wallet extension to register a session authenticator on chain.\n" +
			"The process exits once the session is persisted or the flow fails.",
		Run: func(_ *cobra.Command, _ []string) {
			run()
		},
	}
}

func run() {
	cfg := config.DefaultServiceConfigFromEnv()
	config.InitLogger(cfg)

	net, err := chain.ResolveNetwork(cfg.Provisioning.ChainID, cfg.Ledger.Endpoint, cfg.Provisioning.FeeDenom)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve network")
	}

	ledgerClient := ledger.NewRESTClient(net.RESTEndpoint, cfg.Ledger.RequestTimeout)
	store := session.NewFileStore(cfg.SessionStore.Path)
	flow := bridge.NewFlow(bridge.Options{
		Network:          net,
		SubaccountNumber: cfg.Provisioning.SubaccountNumber,
		SessionTTL:       cfg.Provisioning.SessionTTL,
		PollInterval:     cfg.Provisioning.PollInterval,
		PollMaxAttempts:  cfg.Provisioning.PollMaxAttempts,
	}, ledgerClient, store)

	s := api.NewServer(cfg, flow, ledgerClient, store)
	router.Init(s)

	if _, err := s.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bridge server")
	}

	go reportEvents(flow)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.WaitForCompletion(ctx); err != nil {
		log.Warn().Err(err).Msg("Bridge shutdown was not clean")
	}

	if flow.State() != bridge.StateSessionPersisted {
		os.Exit(1)
	}
}

// reportEvents 把流程事件转成面向操作者的日志
// 事件里的 Record 含助记词，这里只输出地址和到期时间
func reportEvents(flow *bridge.Flow) {
	for ev := range flow.Events() {
		switch ev.Type {
		case bridge.EventBridgeReady:
			log.Info().Str("url", ev.URL).Msg("Open this URL in the browser that has the wallet extension")
		case bridge.EventWalletConnected:
			log.Info().Str("wallet", ev.WalletAddress).Msg("Wallet connected, waiting for the signed registration")
		case bridge.EventSessionCreated:
			log.Info().
				Str("session_address", ev.Record.SessionAddress).
				Uint64("authenticator_id", ev.Record.AuthenticatorID).
				Time("expires_at", ev.Record.ExpiresAt).
				Msg("Session created and persisted")
		case bridge.EventSessionFailed:
			log.Error().Str("reason", ev.Message).Msg("Session provisioning failed, restart to try again")
		}
	}
}
