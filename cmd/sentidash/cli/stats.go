package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/econsult/sentidash/internal/dashboard"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard counters",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s := newSession(cmd, false, nil)
	if out := s.ctrl.Refresh(cmd.Context()); out != dashboard.OutcomeSuccess {
		return fmt.Errorf("could not load stats from %s", cfg.Server)
	}
	s.page.print(cmd.OutOrStdout())
	return nil
}
