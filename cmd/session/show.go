package session

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/internal/config"
	sessionstore "github.com/kashguard/go-sign-bridge/internal/session"
	"github.com/kashguard/go-sign-bridge/internal/signer"
)

// newShow 查看当前持久化的会话
// 只输出地址、网络和到期时间，助记词永不打印
func newShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted signing session (never prints the mnemonic)",
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			config.InitLogger(cfg)

			store := sessionstore.NewFileStore(cfg.SessionStore.Path)
			showSession(cmd.OutOrStdout(), store, time.Now())
		},
	}
}

// showSession 打印会话摘要
// 读不出来的记录（损坏或版本不识别）按无会话处理，fail closed
func showSession(w io.Writer, store *sessionstore.FileStore, now time.Time) {
	rec, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Str("path", store.Path()).Msg("Session file is unreadable, treating as no session")
		fmt.Fprintln(w, "No session is persisted.")
		return
	}
	if rec == nil {
		fmt.Fprintln(w, "No session is persisted.")
		return
	}

	status := "active"
	if rec.Expired(now) {
		status = "expired"
	} else {
		// 走一遍 rehydration 验证助记词确实派生出记录的会话地址
		m := signer.NewManager()
		if _, err := m.AdoptSession(rec, now); err != nil {
			log.Warn().Err(err).Msg("Session record failed verification")
			status = "corrupt"
		}
		m.RevokeSession()
	}

	fmt.Fprintf(w, "Status:           %s\n", status)
	fmt.Fprintf(w, "Network:          %s\n", rec.Network)
	fmt.Fprintf(w, "RPC endpoint:     %s\n", rec.RPCEndpoint)
	fmt.Fprintf(w, "Master address:   %s\n", rec.MasterAddress)
	fmt.Fprintf(w, "Session address:  %s\n", rec.SessionAddress)
	fmt.Fprintf(w, "Authenticator ID: %d\n", rec.AuthenticatorID)
	fmt.Fprintf(w, "Created at:       %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Expires at:       %s\n", rec.ExpiresAt.Format(time.RFC3339))
}
