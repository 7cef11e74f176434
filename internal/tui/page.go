package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/econsult/sentidash/internal/dashboard"
)

// Options configures the page.
type Options struct {
	// Author is sent with every submitted comment.
	Author string
}

// Page owns the controller and the bridge the program talks through.
type Page struct {
	bridge *Bridge
	ctrl   *dashboard.Controller
	opts   Options
	log    *zap.Logger
}

// New creates a page and wires its controller. nav may be nil to run
// without the download trigger.
func New(backend dashboard.Backend, nav dashboard.Navigator, logger *zap.Logger, opts Options) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	bridge := &Bridge{}
	ctrl := dashboard.New(backend, bridge, bridge, nav, logger)
	wired := ctrl.Initialize()
	logger.Debug("dashboard page ready", zap.Strings("triggers", wired))

	return &Page{bridge: bridge, ctrl: ctrl, opts: opts, log: logger}
}

// Controller returns the page's controller.
func (p *Page) Controller() *dashboard.Controller {
	return p.ctrl
}

// Notify shows a notice on the running page. It is a no-op when the page
// is not running.
func (p *Page) Notify(message string) {
	p.bridge.Alert(context.Background(), message)
}

// Run shows the page until the user quits or ctx is cancelled. Pending
// confirmations are declined and in-flight requests cancelled on exit.
func (p *Page) Run(ctx context.Context, options ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, p.ctrl, p.bridge, p.opts)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, options...)
	prog := tea.NewProgram(m, opts...)

	p.bridge.Attach(prog.Send)
	defer p.bridge.Attach(nil)

	_, err := prog.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		p.log.Debug("dashboard page closed by context", zap.Error(ctx.Err()))
		return nil
	}
	return err
}
