package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/econsult/sentidash/internal/api"
)

const doctorTimeout = 10 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks against the dashboard server",
	Long: `Run a series of diagnostic checks:

  1. Reachability: can we connect to the server at all?
  2. Analytics: does /api/analytics_data answer with valid JSON?
  3. Configuration: which file was read, is the download directory usable?
  4. Token expiry: is the configured token close to expiration?

Examples:
  sentidash doctor
  sentidash doctor --server http://10.0.0.5:5000`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

type checkResult struct {
	name   string
	ok     bool
	detail string
	warn   bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Running health checks against %s\n\n", cfg.Server)

	client := newClient()
	checks := make([]checkResult, 4)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		checks[0] = checkServerReachable(ctx, client)
		return nil
	})
	g.Go(func() error {
		checks[1] = checkAnalytics(ctx, client)
		return nil
	})
	g.Go(func() error {
		checks[2] = checkConfig()
		return nil
	})
	g.Go(func() error {
		checks[3] = checkTokenExpiry(cfg.Token, time.Now())
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	allOK := true
	hasWarnings := false
	for _, c := range checks {
		icon := "✓"
		if !c.ok && !c.warn {
			icon = "✗"
			allOK = false
		} else if c.warn {
			icon = "⚠"
			hasWarnings = true
		}
		fmt.Fprintf(out, "  %s  %-16s %s\n", icon, c.name, c.detail)
	}

	fmt.Fprintln(stderr)
	switch {
	case allOK && !hasWarnings:
		fmt.Fprintf(stderr, "All checks passed ✓\n")
	case allOK:
		fmt.Fprintf(stderr, "Checks passed with warnings ⚠\n")
	default:
		fmt.Fprintf(stderr, "Some checks failed ✗\n")
		return fmt.Errorf("health check failed")
	}
	return nil
}

func checkServerReachable(ctx context.Context, client *api.Client) checkResult {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BaseURL+"/", nil)
	if err != nil {
		return checkResult{name: "Reachability", detail: err.Error()}
	}

	start := time.Now()
	resp, err := client.HTTPClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return checkResult{
			name:   "Reachability",
			detail: fmt.Sprintf("cannot connect: %v", err),
		}
	}
	resp.Body.Close()

	return checkResult{
		name:   "Reachability",
		ok:     true,
		detail: fmt.Sprintf("connected, HTTP %d (%dms)", resp.StatusCode, elapsed.Milliseconds()),
	}
}

func checkAnalytics(ctx context.Context, client *api.Client) checkResult {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	a, err := client.Analytics(ctx)
	if err != nil {
		return checkResult{
			name:   "Analytics",
			detail: fmt.Sprintf("endpoint error: %v", err),
		}
	}

	s := a.Stats()
	return checkResult{
		name: "Analytics",
		ok:   true,
		detail: fmt.Sprintf("%d comments (%d positive, %d negative, %d neutral), %d intent labels",
			s.Total, s.Positive, s.Negative, s.Neutral, len(a.Intent)),
	}
}

func checkConfig() checkResult {
	source := cfg.Source
	if source == "" {
		source = "defaults and environment"
	}

	info, err := os.Stat(cfg.DownloadDir)
	switch {
	case os.IsNotExist(err):
		return checkResult{
			name:   "Configuration",
			ok:     true,
			warn:   true,
			detail: fmt.Sprintf("from %s; download dir %s will be created", source, cfg.DownloadDir),
		}
	case err != nil:
		return checkResult{name: "Configuration", detail: fmt.Sprintf("download dir: %v", err)}
	case !info.IsDir():
		return checkResult{name: "Configuration", detail: fmt.Sprintf("download dir %s is not a directory", cfg.DownloadDir)}
	}

	return checkResult{
		name:   "Configuration",
		ok:     true,
		detail: fmt.Sprintf("from %s; downloads to %s", source, cfg.DownloadDir),
	}
}

func checkTokenExpiry(token string, now time.Time) checkResult {
	if token == "" {
		return checkResult{
			name:   "Token Expiry",
			ok:     true,
			detail: "no token configured (anonymous access)",
		}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return checkResult{
			name:   "Token Expiry",
			ok:     true,
			warn:   true,
			detail: "token is not JWT format (cannot check expiry)",
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return checkResult{
			name:   "Token Expiry",
			ok:     true,
			warn:   true,
			detail: "could not parse token expiry",
		}
	}
	if exp == nil {
		return checkResult{
			name:   "Token Expiry",
			ok:     true,
			detail: "token has no expiry (non-expiring token)",
		}
	}

	expTime := exp.Time
	if now.After(expTime) {
		return checkResult{
			name:   "Token Expiry",
			detail: fmt.Sprintf("token expired at %s", expTime.Format(time.RFC3339)),
		}
	}

	remaining := expTime.Sub(now)
	detail := fmt.Sprintf("expires %s (in %s)", expTime.Format(time.RFC3339), formatDuration(remaining))
	if remaining < 24*time.Hour {
		return checkResult{
			name:   "Token Expiry",
			ok:     true,
			warn:   true,
			detail: detail + ", consider refreshing",
		}
	}

	return checkResult{
		name:   "Token Expiry",
		ok:     true,
		detail: detail,
	}
}

// formatDuration renders a time.Duration in human-friendly form.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) - hours*60
		if mins > 0 {
			return fmt.Sprintf("%dh%dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) - days*24
	if hours > 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
