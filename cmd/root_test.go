package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCommand(t *testing.T, name string) *cobra.Command {
	t.Helper()

	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	t.Fatalf("command %q not registered", name)
	return nil
}

func TestCommandRegistration(t *testing.T) {
	for _, name := range []string{"run", "ingest", "scan", "backtest", "report", "migrate"} {
		t.Run(name, func(t *testing.T) {
			c := findCommand(t, name)
			assert.NotEmpty(t, c.Short, "command %q has no short description", name)
			assert.NotNil(t, c.RunE, "command %q has no RunE", name)
		})
	}
}

func TestSportFlagOnRunAndIngest(t *testing.T) {
	for _, name := range []string{"run", "ingest"} {
		c := findCommand(t, name)
		flag := c.Flags().Lookup("sport")
		require.NotNil(t, flag, "command %q missing --sport flag", name)
		assert.Equal(t, "s", flag.Shorthand)
	}
}

func TestBacktestRequiredFlags(t *testing.T) {
	c := findCommand(t, "backtest")

	for _, name := range []string{"from", "to"} {
		flag := c.Flags().Lookup(name)
		require.NotNil(t, flag, "backtest missing --%s flag", name)

		required := flag.Annotations[cobra.BashCompOneRequiredFlag]
		assert.NotEmpty(t, required, "--%s should be required", name)
	}

	league := c.Flags().Lookup("league")
	require.NotNil(t, league)
	assert.Equal(t, "basketball_nba", league.DefValue)
}
