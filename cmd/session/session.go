package session

import (
	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("session",
		newShow(),
		newRevoke(),
	)
}
