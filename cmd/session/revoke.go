package session

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/internal/config"
	sessionstore "github.com/kashguard/go-sign-bridge/internal/session"
)

// newRevoke 删除本地会话记录
// 链上 authenticator 不在此处移除：移除交易必须由主钱包签名，
// 属于钱包扩展的职责，这里只负责让本地会话立即不可用
func newRevoke() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Delete the persisted signing session",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			config.InitLogger(cfg)

			store := sessionstore.NewFileStore(cfg.SessionStore.Path)
			rec, err := store.Load()
			if err != nil {
				// 记录损坏或版本未知也照样删除，fail closed
				log.Warn().Err(err).Msg("Session record could not be parsed, deleting anyway")
			}

			if err := store.Delete(); err != nil {
				log.Fatal().Err(err).Str("path", store.Path()).Msg("Failed to delete session file")
			}

			if rec != nil {
				fmt.Printf("Session for %s revoked locally.\n", rec.MasterAddress)
				fmt.Printf("Authenticator %d is still registered on chain; remove it from the wallet extension.\n", rec.AuthenticatorID)
				return
			}
			fmt.Println("No session was persisted.")
		},
	}
}
