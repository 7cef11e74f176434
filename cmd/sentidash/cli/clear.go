package cli

import (
	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every comment from the server",
	Long: `Delete every stored comment. This cannot be undone, so the command asks
for confirmation unless --yes is given.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
}

func runClear(cmd *cobra.Command, args []string) error {
	s := newSession(cmd, clearYes, nil)
	out := s.ctrl.ClearAll(cmd.Context())
	return s.finish(cmd, "clear", out)
}
