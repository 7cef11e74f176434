package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/econsult/sentidash/internal/api"
	"github.com/econsult/sentidash/internal/dashboard"
)

var counterLabels = map[string]string{
	dashboard.TargetTotal:    "Total comments",
	dashboard.TargetPositive: "Positive",
	dashboard.TargetNegative: "Negative",
	dashboard.TargetNeutral:  "Neutral",
}

// statsPage is the Display of one-shot commands: it remembers the counters
// so they can be printed once the operation is over.
type statsPage struct {
	mu      sync.Mutex
	status  io.Writer
	values  map[string]string
	changed bool
}

func newStatsPage(status io.Writer) *statsPage {
	return &statsPage{status: status, values: make(map[string]string)}
}

func (p *statsPage) Has(id string) bool { return true }

func (p *statsPage) SetText(id, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[id] = text
	p.changed = true
}

// SetTrigger echoes busy labels such as "Analyzing..." to the status stream.
func (p *statsPage) SetTrigger(id string, enabled bool, label string) {
	if !enabled {
		fmt.Fprintln(p.status, label)
	}
}

func (p *statsPage) print(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.changed {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, id := range []string{dashboard.TargetTotal, dashboard.TargetPositive, dashboard.TargetNegative, dashboard.TargetNeutral} {
		fmt.Fprintf(tw, "%s\t%s\n", counterLabels[id], p.values[id])
	}
	tw.Flush()
}

// terminalPrompter prints notices to stderr and reads y/N answers from
// stdin, whether it is a terminal or a pipe.
type terminalPrompter struct {
	in      *bufio.Reader
	out     io.Writer
	yes     bool
	answers map[string]bool // preset answers by question
}

func newPrompter(cmd *cobra.Command, yes bool) *terminalPrompter {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		logger.Debug("stdin is not a terminal, reading answers from input stream")
	}
	return &terminalPrompter{
		in:      bufio.NewReader(in),
		out:     cmd.ErrOrStderr(),
		yes:     yes,
		answers: make(map[string]bool),
	}
}

func (p *terminalPrompter) Alert(ctx context.Context, message string) {
	fmt.Fprintln(p.out, message)
}

func (p *terminalPrompter) Confirm(ctx context.Context, question string) bool {
	if ctx.Err() != nil {
		return false
	}
	if ans, ok := p.answers[question]; ok {
		fmt.Fprintf(p.out, "%s [y/N]: %s\n", question, yesNo(ans))
		return ans
	}
	if p.yes {
		fmt.Fprintf(p.out, "%s [y/N]: y\n", question)
		return true
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

// session is the controller of a one-shot command and everything it
// talks to.
type session struct {
	client *api.Client
	page   *statsPage
	prompt *terminalPrompter
	ctrl   *dashboard.Controller
}

func newClient() *api.Client {
	return api.NewClient(api.Options{
		BaseURL:   cfg.Server,
		Token:     cfg.Token,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Logger:    logger,
	})
}

// newSession wires a controller for cmd. When dl is non-nil it becomes the
// navigator and is bound to the session's client.
func newSession(cmd *cobra.Command, yes bool, dl *api.Downloader) *session {
	s := &session{
		client: newClient(),
		page:   newStatsPage(cmd.ErrOrStderr()),
		prompt: newPrompter(cmd, yes),
	}

	var nav dashboard.Navigator
	if dl != nil {
		dl.Client = s.client
		nav = dl
	}
	s.ctrl = dashboard.New(s.client, s.page, s.prompt, nav, logger)
	wired := s.ctrl.Initialize()
	logger.Debug("controller ready", zap.Strings("triggers", wired))
	return s
}

// finish prints the counters when the operation changed them and turns
// the outcome into the command's error.
func (s *session) finish(cmd *cobra.Command, op string, out dashboard.Outcome) error {
	if out == dashboard.OutcomeDeclined {
		fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
	}
	s.page.print(cmd.OutOrStdout())
	return outcomeError(op, out)
}

func outcomeError(op string, out dashboard.Outcome) error {
	if out.OK() {
		return nil
	}
	return fmt.Errorf("%s %s", op, out)
}
