package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/econsult/sentidash/internal/config"
)

var (
	configInitPath  string
	configInitForce bool
	configShowFmt   string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sentidash configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to a config file",
	Long: `Write the resolved configuration (defaults, .env, environment and
flags) as HCL to ~/.sentidash/config.hcl, or to --path.

Examples:
  sentidash config init --server http://10.0.0.5:5000
  sentidash config init --path ./sentidash.hcl --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "file to write (default ~/.sentidash/config.hcl)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configShowCmd.Flags().StringVar(&configShowFmt, "format", "yaml", "output format: yaml or hcl")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configInitPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteFile(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := cfg.Redacted()
	out := cmd.OutOrStdout()

	switch configShowFmt {
	case "yaml":
		b, err := yaml.Marshal(shown.File())
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if cfg.Source != "" {
			fmt.Fprintf(out, "# source: %s\n", cfg.Source)
		}
		out.Write(b)
	case "hcl":
		if cfg.Source != "" {
			fmt.Fprintf(out, "# source: %s\n", cfg.Source)
		}
		out.Write(config.EncodeHCL(shown))
	default:
		return fmt.Errorf("unknown format %q (want yaml or hcl)", configShowFmt)
	}
	return nil
}
