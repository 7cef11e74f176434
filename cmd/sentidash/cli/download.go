package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/econsult/sentidash/internal/api"
	"github.com/econsult/sentidash/internal/dashboard"
)

var (
	downloadClear bool
	downloadOut   string
	downloadYes   bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the comment store as a spreadsheet",
	Long: `Download every stored comment as an Excel workbook. The server can wipe
its store once the export is produced; the command asks whether it should.

--clear answers that question with yes. --yes never implies clearing: it
answers the question with no.

Examples:
  sentidash download
  sentidash download --out ./exports
  sentidash download --clear`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadClear, "clear", false, "clear the server's comments after the export")
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "directory to save into (default from config)")
	downloadCmd.Flags().BoolVarP(&downloadYes, "yes", "y", false, "do not prompt; keep the comments unless --clear")
}

func runDownload(cmd *cobra.Command, args []string) error {
	dir := downloadOut
	if dir == "" {
		dir = cfg.DownloadDir
	}
	dl := &api.Downloader{
		Dir: dir,
		OnSaved: func(path string, size int64) {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, size)
		},
	}

	s := newSession(cmd, false, dl)
	switch {
	case downloadClear:
		s.prompt.answers[dashboard.ConfirmExportWipe] = true
	case downloadYes:
		s.prompt.answers[dashboard.ConfirmExportWipe] = false
	}

	out := s.ctrl.DownloadExport(cmd.Context())
	return s.finish(cmd, "download", out)
}
