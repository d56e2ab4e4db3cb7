package probe

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/internal/chain"
	"github.com/kashguard/go-sign-bridge/internal/config"
	"github.com/kashguard/go-sign-bridge/internal/ledger"
)

// newReadiness 开通前的就绪检查：REST 网关可达 + 会话文件目录可写
// 两项都通过才返回 0，适合在发起开通前由外围应用调用
func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Check ledger connectivity and session store writability",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)
			runReadiness(verbose)
		},
	}
	cmd.Flags().BoolP(verboseFlag, "v", false, "print checked endpoint and height")
	return cmd
}

func runReadiness(verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()
	config.InitLogger(cfg)

	net, err := chain.ResolveNetwork(cfg.Provisioning.ChainID, cfg.Ledger.Endpoint, cfg.Provisioning.FeeDenom)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve network")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Ledger.RequestTimeout)
	defer cancel()

	client := ledger.NewRESTClient(net.RESTEndpoint, cfg.Ledger.RequestTimeout)
	height, err := client.LatestHeight(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("endpoint", net.RESTEndpoint).Msg("Ledger endpoint is not reachable")
	}

	dir := filepath.Dir(cfg.SessionStore.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("Session directory is not writable")
	}
	probeFile, err := os.CreateTemp(dir, ".readiness-*")
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("Session directory is not writable")
	}
	_ = probeFile.Close()
	_ = os.Remove(probeFile.Name())

	if verbose {
		log.Info().
			Str("endpoint", net.RESTEndpoint).
			Int64("height", height).
			Str("session_dir", dir).
			Msg("Ready")
	}
}
