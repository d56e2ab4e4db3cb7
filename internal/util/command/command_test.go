package command_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/util/command"
)

func TestNewSubcommandGroup(t *testing.T) {
	ran := false
	sub := &cobra.Command{
		Use: "inner",
		Run: func(_ *cobra.Command, _ []string) {
			ran = true
		},
	}

	group := command.NewSubcommandGroup("outer", sub)
	assert.Equal(t, "outer", group.Use)
	require.Len(t, group.Commands(), 1)

	group.SetArgs([]string{"inner"})
	err := group.Execute()
	require.NoError(t, err)
	assert.True(t, ran)
}
