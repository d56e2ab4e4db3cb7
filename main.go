package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kashguard/go-sign-bridge/cmd/probe"
	"github.com/kashguard/go-sign-bridge/cmd/server"
	"github.com/kashguard/go-sign-bridge/cmd/session"
	"github.com/kashguard/go-sign-bridge/cmd/walletsim"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-bridge",
		Short: "Local bridge that provisions delegated signing sessions",
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(
		server.New(),
		session.New(),
		probe.New(),
		walletsim.New(),
	)

	return cmd
}
