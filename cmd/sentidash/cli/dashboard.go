package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/econsult/sentidash/internal/api"
	"github.com/econsult/sentidash/internal/tui"
)

var (
	dashboardAuthor string
	dashboardOut    string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive terminal dashboard",
	Long: `Open the live dashboard: counters, a comment box and the analyze, clear
and download actions.

Keys:
  enter   submit the comment        tab   switch between input and actions
  a       analyze all               c     clear all
  d       download export           r     refresh counters
  q       quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAuthor, "author", "", "author sent with submitted comments")
	dashboardCmd.Flags().StringVarP(&dashboardOut, "out", "o", "", "directory for downloads (default from config)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("dashboard needs an interactive terminal; use 'sentidash stats' in scripts")
	}

	dir := dashboardOut
	if dir == "" {
		dir = cfg.DownloadDir
	}

	client := newClient()
	var page *tui.Page
	dl := &api.Downloader{
		Client: client,
		Dir:    dir,
		OnSaved: func(path string, size int64) {
			page.Notify(fmt.Sprintf("Saved %s (%d bytes)", path, size))
		},
	}
	page = tui.New(client, dl, logger, tui.Options{Author: dashboardAuthor})

	return page.Run(cmd.Context(),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
}
