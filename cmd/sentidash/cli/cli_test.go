package cli

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/econsult/sentidash/internal/api"
	"github.com/econsult/sentidash/internal/config"
	"github.com/econsult/sentidash/internal/dashboard"
	"github.com/econsult/sentidash/internal/dashboardtest"
)

func setupTest(t *testing.T) *dashboardtest.Server {
	t.Helper()
	srv := dashboardtest.NewServer(t)

	prevCfg, prevLogger := cfg, logger
	c := config.Default()
	c.Server = srv.URL
	c.DownloadDir = t.TempDir()
	cfg = c
	logger = zap.NewNop()
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })
	return srv
}

func newTestCmd(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	return cmd, out, errOut
}

// setFlag assigns a flag variable for the duration of the test.
func setFlag[T any](t *testing.T, p *T, v T) {
	t.Helper()
	prev := *p
	*p = v
	t.Cleanup(func() { *p = prev })
}

func TestRunComment(t *testing.T) {
	srv := setupTest(t)
	cmd, out, errOut := newTestCmd("")

	require.NoError(t, runComment(cmd, []string{"great product"}))

	assert.Contains(t, errOut.String(), "Comment added! Sentiment: Positive, Intent: Other")
	want := "Total comments  1\nPositive        1\nNegative        0\nNeutral         0\n"
	assert.Equal(t, want, out.String())
	assert.Len(t, srv.Comments(), 1)
}

func TestRunComment_FieldsAndAttachments(t *testing.T) {
	srv := setupTest(t)
	photo := filepath.Join(t.TempDir(), "box.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0600))

	setFlag(t, &commentAuthor, "u-17")
	setFlag(t, &commentFields, []string{"product=p-9,channel=app"})
	setFlag(t, &commentAttachs, []string{"photo=" + photo})

	cmd, _, _ := newTestCmd("")
	require.NoError(t, runComment(cmd, []string{"damaged box, want a refund"}))

	stored := srv.Comments()
	require.Len(t, stored, 1)
	assert.Equal(t, "u-17", stored[0].Author)
	assert.Equal(t, "Return/Refund", stored[0].Intent)
	assert.Equal(t, map[string]string{"product": "p-9", "channel": "app"}, stored[0].Fields)
	assert.Equal(t, map[string]string{"photo": "box.jpg"}, stored[0].Files)
}

func TestRunComment_Empty(t *testing.T) {
	srv := setupTest(t)
	cmd, out, errOut := newTestCmd("")

	err := runComment(cmd, []string{"   "})
	require.EqualError(t, err, "comment invalid")
	assert.Equal(t, "Please enter a comment.\n", errOut.String())
	assert.Empty(t, out.String())
	assert.Zero(t, srv.Hits(api.PathAddComment))
}

func TestRunComment_BadMapping(t *testing.T) {
	setupTest(t)
	setFlag(t, &commentFields, []string{"product"})
	cmd, _, _ := newTestCmd("")

	err := runComment(cmd, []string{"hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAME=VALUE")
}

func TestRunAnalyze_Declined(t *testing.T) {
	srv := setupTest(t)
	cmd, out, errOut := newTestCmd("n\n")

	require.NoError(t, runAnalyze(cmd, nil))
	assert.Contains(t, errOut.String(), dashboard.ConfirmAnalyzeAll)
	assert.Contains(t, errOut.String(), "Cancelled.")
	assert.Empty(t, out.String())
	assert.Zero(t, srv.Hits(api.PathAnalyzeAll))
}

func TestRunAnalyze_Confirmed(t *testing.T) {
	srv := setupTest(t)
	srv.SetRows(
		dashboardtest.Row{ReviewText: "love it", UserID: "a"},
		dashboardtest.Row{ReviewText: "terrible packaging", UserID: "b"},
	)
	cmd, out, errOut := newTestCmd("y\n")

	require.NoError(t, runAnalyze(cmd, nil))
	assert.Contains(t, errOut.String(), dashboard.LabelAnalyzeRunning)
	assert.Contains(t, errOut.String(), "All comments analyzed and saved.")
	assert.Contains(t, out.String(), "Total comments  2")
}

func TestRunAnalyze_Yes(t *testing.T) {
	srv := setupTest(t)
	setFlag(t, &analyzeYes, true)
	cmd, _, _ := newTestCmd("")

	require.NoError(t, runAnalyze(cmd, nil))
	assert.Equal(t, 1, srv.Hits(api.PathAnalyzeAll))
}

func TestRunClear_TransportFailure(t *testing.T) {
	srv := setupTest(t)
	srv.Fail(api.PathClearComments, dashboardtest.Failure{Status: http.StatusBadGateway, Body: "<html>proxy error</html>"})
	setFlag(t, &clearYes, true)
	cmd, out, errOut := newTestCmd("")

	err := runClear(cmd, nil)
	require.EqualError(t, err, "clear failed")
	assert.Contains(t, errOut.String(), "An error occurred while clearing comments.")
	assert.NotContains(t, errOut.String(), "proxy error")
	assert.Empty(t, out.String())
}

func TestRunClear_Rejected(t *testing.T) {
	srv := setupTest(t)
	srv.Fail(api.PathClearComments, dashboardtest.Failure{
		Status:      http.StatusInternalServerError,
		Body:        `{"status":"error","message":"database is locked"}`,
		ContentType: "application/json",
	})
	setFlag(t, &clearYes, true)
	cmd, _, errOut := newTestCmd("")

	err := runClear(cmd, nil)
	require.EqualError(t, err, "clear rejected")
	assert.Contains(t, errOut.String(), "Error: database is locked")
}

func TestRunDownload(t *testing.T) {
	tests := []struct {
		name      string
		clear     bool
		yes       bool
		stdin     string
		wantKept  int
		wantQuery string
	}{
		{name: "clear flag", clear: true, wantKept: 0},
		{name: "yes keeps data", yes: true, wantKept: 2},
		{name: "prompt answered yes", stdin: "y\n", wantKept: 0},
		{name: "prompt declined still downloads", stdin: "n\n", wantKept: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupTest(t)
			srv.Seed("good", "bad")
			setFlag(t, &downloadClear, tt.clear)
			setFlag(t, &downloadYes, tt.yes)
			cmd, out, _ := newTestCmd(tt.stdin)

			require.NoError(t, runDownload(cmd, nil))

			path := filepath.Join(cfg.DownloadDir, api.DefaultExportName)
			assert.FileExists(t, path)
			assert.Contains(t, out.String(), "Saved "+path)
			assert.Len(t, srv.Comments(), tt.wantKept)
		})
	}
}

func TestRunDownload_OutFlag(t *testing.T) {
	setupTest(t)
	dir := filepath.Join(t.TempDir(), "exports")
	setFlag(t, &downloadOut, dir)
	setFlag(t, &downloadYes, true)
	cmd, _, _ := newTestCmd("")

	require.NoError(t, runDownload(cmd, nil))
	assert.FileExists(t, filepath.Join(dir, api.DefaultExportName))
}

func TestRunDownload_ServerError(t *testing.T) {
	srv := setupTest(t)
	srv.Fail(api.PathExport, dashboardtest.Failure{Status: http.StatusInternalServerError, Body: "boom"})
	setFlag(t, &downloadYes, true)
	cmd, _, errOut := newTestCmd("")

	require.EqualError(t, runDownload(cmd, nil), "download failed")
	assert.Contains(t, errOut.String(), "An error occurred while downloading.")
}

func TestRunStats(t *testing.T) {
	srv := setupTest(t)
	srv.Seed("excellent", "good", "awful", "it arrived", "meh")
	cmd, out, _ := newTestCmd("")

	require.NoError(t, runStats(cmd, nil))
	want := "Total comments  5\nPositive        2\nNegative        1\nNeutral         2\n"
	assert.Equal(t, want, out.String())
}

func TestRunStats_Unreachable(t *testing.T) {
	srv := setupTest(t)
	srv.Fail(api.PathAnalytics, dashboardtest.Failure{Status: http.StatusServiceUnavailable, Body: "down"})
	cmd, _, _ := newTestCmd("")

	err := runStats(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not load stats")
}

func TestRunAnalytics(t *testing.T) {
	srv := setupTest(t)
	srv.Seed("good", "good service", "where is my order")
	cmd, out, _ := newTestCmd("")

	require.NoError(t, runAnalytics(cmd, nil))
	text := out.String()
	assert.Contains(t, text, "SENTIMENT")
	assert.Contains(t, text, "INTENT")
	assert.Regexp(t, `Positive\s+2\s+66\.7%`, text)
	assert.Regexp(t, `Query/Tracking\s+1\s+33\.3%`, text)
	assert.Less(t, strings.Index(text, "Positive"), strings.Index(text, "Neutral"), "most frequent first")
}

func TestRunDoctor(t *testing.T) {
	setupTest(t)
	cmd, out, errOut := newTestCmd("")

	require.NoError(t, runDoctor(cmd, nil))
	assert.Contains(t, out.String(), "Reachability")
	assert.Contains(t, out.String(), "Analytics")
	assert.Contains(t, errOut.String(), "All checks passed")
}

func TestRunDoctor_AnalyticsDown(t *testing.T) {
	srv := setupTest(t)
	srv.Fail(api.PathAnalytics, dashboardtest.Failure{Status: http.StatusInternalServerError, Body: "oops"})
	cmd, out, _ := newTestCmd("")

	require.EqualError(t, runDoctor(cmd, nil), "health check failed")
	assert.Contains(t, out.String(), "✗  Analytics")
}

func TestRunConfigInit(t *testing.T) {
	setupTest(t)
	path := filepath.Join(t.TempDir(), "conf", "sentidash.hcl")
	setFlag(t, &configInitPath, path)
	cmd, out, _ := newTestCmd("")

	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, out.String(), path)

	got, err := config.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, got.Server)

	err = runConfigInit(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	setFlag(t, &configInitForce, true)
	assert.NoError(t, runConfigInit(cmd, nil))
}

func TestRunConfigShow(t *testing.T) {
	setupTest(t)
	cfg.Token = "super-secret"

	for _, format := range []string{"yaml", "hcl"} {
		t.Run(format, func(t *testing.T) {
			setFlag(t, &configShowFmt, format)
			cmd, out, _ := newTestCmd("")
			require.NoError(t, runConfigShow(cmd, nil))
			assert.Contains(t, out.String(), cfg.Server)
			assert.NotContains(t, out.String(), "super-secret")
		})
	}

	setFlag(t, &configShowFmt, "toml")
	cmd, _, _ := newTestCmd("")
	assert.Error(t, runConfigShow(cmd, nil))
}

func TestParseMappings(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    map[string]string
		wantErr bool
	}{
		{name: "none", in: nil, want: nil},
		{name: "repeated and comma", in: []string{"a=1,b=2", "c=x=y"}, want: map[string]string{"a": "1", "b": "2", "c": "x=y"}},
		{name: "blank entries", in: []string{" a=1 , ,"}, want: map[string]string{"a": "1"}},
		{name: "missing value", in: []string{"a="}, wantErr: true},
		{name: "missing equals", in: []string{"a"}, wantErr: true},
		{name: "space in name", in: []string{"my field=1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMappings(tt.in, "K=V")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name     string
		token    string
		wantOK   bool
		wantWarn bool
		contains string
	}{
		{"no token", "", true, false, "anonymous"},
		{"opaque", "not-a-jwt", true, true, "not JWT"},
		{"no exp", sign(jwt.MapClaims{"sub": "u"}), true, false, "no expiry"},
		{"expired", sign(jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), false, false, "expired"},
		{"soon", sign(jwt.MapClaims{"exp": now.Add(2 * time.Hour).Unix()}), true, true, "in 2h"},
		{"later", sign(jwt.MapClaims{"exp": now.Add(72 * time.Hour).Unix()}), true, false, "in 3d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkTokenExpiry(tt.token, now)
			assert.Equal(t, tt.wantOK, got.ok)
			assert.Equal(t, tt.wantWarn, got.warn)
			assert.Contains(t, got.detail, tt.contains)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "5m", formatDuration(5*time.Minute))
	assert.Equal(t, "2h", formatDuration(2*time.Hour))
	assert.Equal(t, "2h30m", formatDuration(150*time.Minute))
	assert.Equal(t, "1d6h", formatDuration(30*time.Hour))
}

func TestOutcomeError(t *testing.T) {
	assert.NoError(t, outcomeError("analyze", dashboard.OutcomeSuccess))
	assert.NoError(t, outcomeError("analyze", dashboard.OutcomeDeclined))
	assert.EqualError(t, outcomeError("analyze", dashboard.OutcomeBusy), "analyze busy")
}

func TestVersion(t *testing.T) {
	setFlag(t, &Version, "1.2.3")
	cmd, out, _ := newTestCmd("")
	versionCmd.Run(cmd, nil)
	assert.Equal(t, "sentidash version 1.2.3\n", out.String())
}
