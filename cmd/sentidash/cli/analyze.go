package cli

import (
	"github.com/spf13/cobra"
)

var analyzeYes bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify every comment of the server's preprocessed data file",
	Long: `Ask the server to classify all comments of its preprocessed data file
and add them to the comment store. Prompts for confirmation first.

Examples:
  sentidash analyze
  sentidash analyze --yes`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s := newSession(cmd, analyzeYes, nil)
	out := s.ctrl.AnalyzeAll(cmd.Context())
	return s.finish(cmd, "analyze", out)
}
