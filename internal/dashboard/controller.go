package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Notices and labels shown by the controller.
const (
	msgEmptyComment   = "Please enter a comment."
	msgCommentAdded   = "Comment added! Sentiment: %s, Intent: %s"
	msgErrorPrefix    = "Error: "
	msgSubmitFailed   = "An error occurred. Please try again."
	msgAnalyzeFailed  = "An error occurred."
	msgClearFailed    = "An error occurred while clearing comments."
	msgDownloadFailed = "An error occurred while downloading."

	ConfirmAnalyzeAll = "This will analyze all comments from the preprocessed data file and add them to the database. Are you sure?"
	ConfirmClearAll   = "Are you sure you want to clear all comments from the database? This action cannot be undone."
	ConfirmExportWipe = "Do you want to clear the database after downloading?"

	LabelAnalyzeIdle    = "Analyze All Comments"
	LabelAnalyzeRunning = "Analyzing..."
)

// Controller mediates every user-triggered interaction with the backend and
// keeps the page counters in step with the last server-reported snapshot.
// It is safe for concurrent use.
type Controller struct {
	backend  Backend
	display  Display
	prompter Prompter
	nav      Navigator
	log      *zap.Logger

	mu      sync.Mutex
	wired   map[string]bool
	states  map[string]TriggerState
	stats   Stats
	gen     uint64 // last generation handed out
	applied uint64 // generation of the snapshot on display
}

// New creates a controller. nav may be nil, in which case the download
// trigger is never wired.
func New(backend Backend, display Display, prompter Prompter, nav Navigator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		backend:  backend,
		display:  display,
		prompter: prompter,
		nav:      nav,
		log:      logger,
		wired:    make(map[string]bool),
		states:   make(map[string]TriggerState),
	}
}

// Initialize binds the controller to whichever triggers the page carries
// and returns the ids that were wired. Missing triggers are not an error.
func (c *Controller) Initialize() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var wired []string
	for _, id := range Triggers {
		ok := c.display.Has(id)
		if id == TriggerDownload && c.nav == nil {
			ok = false
		}
		c.wired[id] = ok
		c.states[id] = StateIdle
		if ok {
			wired = append(wired, id)
		} else {
			c.log.Debug("trigger not wired", zap.String("trigger", id))
		}
	}
	return wired
}

// Stats returns the snapshot currently on display.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// State returns the state machine position of a trigger.
func (c *Controller) State(id string) TriggerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[id]
}

// SubmitComment validates and posts the comment form. On success the form
// is reset and the returned counters are applied.
func (c *Controller) SubmitComment(ctx context.Context, form *Form) Outcome {
	if out, ok := c.begin(TriggerCommentForm, StateInFlight); !ok {
		return out
	}
	defer c.finish(TriggerCommentForm)

	if form == nil || strings.TrimSpace(form.Text) == "" {
		c.prompter.Alert(ctx, msgEmptyComment)
		return OutcomeInvalid
	}

	gen := c.dispatch()
	res, err := c.backend.AddComment(ctx, form.Comment)
	if err != nil {
		c.log.Error("add comment request failed", zap.Error(err))
		c.prompter.Alert(ctx, msgSubmitFailed)
		return OutcomeFailed
	}
	if !res.Succeeded() {
		c.prompter.Alert(ctx, msgErrorPrefix+res.Message)
		return OutcomeRejected
	}

	c.prompter.Alert(ctx, fmt.Sprintf(msgCommentAdded, res.Sentiment, res.Intent))
	c.apply(gen, res.Stats)
	form.Reset()
	return OutcomeSuccess
}

// AnalyzeAll asks the server to ingest its preprocessed data source. The
// trigger is disabled while the request runs and always restored after.
func (c *Controller) AnalyzeAll(ctx context.Context) Outcome {
	if out, ok := c.begin(TriggerAnalyzeAll, StateConfirming); !ok {
		return out
	}
	if !c.prompter.Confirm(ctx, ConfirmAnalyzeAll) {
		c.finish(TriggerAnalyzeAll)
		return OutcomeDeclined
	}

	c.enterFlight(TriggerAnalyzeAll, LabelAnalyzeRunning)
	defer c.restore(TriggerAnalyzeAll, LabelAnalyzeIdle)

	gen := c.dispatch()
	res, err := c.backend.AnalyzeAll(ctx)
	if err != nil {
		c.log.Error("analyze all request failed", zap.Error(err))
		c.prompter.Alert(ctx, msgAnalyzeFailed)
		return OutcomeFailed
	}
	if !res.Succeeded() {
		c.prompter.Alert(ctx, msgErrorPrefix+res.Message)
		return OutcomeRejected
	}

	c.prompter.Alert(ctx, res.Message)
	c.apply(gen, res.Stats)
	return OutcomeSuccess
}

// ClearAll wipes the server's comment store. On success the counters are
// zeroed locally without waiting for the server to report them.
func (c *Controller) ClearAll(ctx context.Context) Outcome {
	if out, ok := c.begin(TriggerClearAll, StateConfirming); !ok {
		return out
	}
	defer c.finish(TriggerClearAll)

	if !c.prompter.Confirm(ctx, ConfirmClearAll) {
		return OutcomeDeclined
	}
	c.setState(TriggerClearAll, StateInFlight)

	gen := c.dispatch()
	res, err := c.backend.ClearComments(ctx)
	if err != nil {
		c.log.Error("clear comments request failed", zap.Error(err))
		c.prompter.Alert(ctx, msgClearFailed)
		return OutcomeFailed
	}
	if !res.Succeeded() {
		c.prompter.Alert(ctx, msgErrorPrefix+res.Message)
		return OutcomeRejected
	}

	c.prompter.Alert(ctx, res.Message)
	c.apply(gen, Stats{})
	return OutcomeSuccess
}

// DownloadExport asks whether the server should wipe its store after the
// export, then navigates to the export URL. Declining only changes the
// clear flag; the download happens either way.
func (c *Controller) DownloadExport(ctx context.Context) Outcome {
	if out, ok := c.begin(TriggerDownload, StateConfirming); !ok {
		return out
	}
	defer c.finish(TriggerDownload)

	wipe := c.prompter.Confirm(ctx, ConfirmExportWipe)
	c.setState(TriggerDownload, StateInFlight)

	target := c.backend.ExportURL(wipe)
	if err := c.nav.Navigate(ctx, target); err != nil {
		c.log.Error("export download failed", zap.String("url", target), zap.Error(err))
		c.prompter.Alert(ctx, msgDownloadFailed)
		return OutcomeFailed
	}
	return OutcomeSuccess
}

// Refresh loads the current counters from the analytics endpoint. It runs
// on page-ready and stays silent on failure.
func (c *Controller) Refresh(ctx context.Context) Outcome {
	gen := c.dispatch()
	a, err := c.backend.Analytics(ctx)
	if err != nil {
		c.log.Warn("initial stats unavailable", zap.Error(err))
		return OutcomeFailed
	}
	c.apply(gen, a.Stats())
	return OutcomeSuccess
}

// begin moves an idle, wired trigger into next.
func (c *Controller) begin(id string, next TriggerState) (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.wired[id] {
		return OutcomeUnwired, false
	}
	if c.states[id] != StateIdle {
		c.log.Debug("trigger busy", zap.String("trigger", id), zap.Stringer("state", c.states[id]))
		return OutcomeBusy, false
	}
	c.states[id] = next
	return OutcomeSuccess, true
}

func (c *Controller) setState(id string, s TriggerState) {
	c.mu.Lock()
	c.states[id] = s
	c.mu.Unlock()
}

func (c *Controller) finish(id string) {
	c.setState(id, StateIdle)
}

func (c *Controller) enterFlight(id, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[id] = StateInFlight
	c.display.SetTrigger(id, false, label)
}

func (c *Controller) restore(id, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.display.SetTrigger(id, true, label)
	c.states[id] = StateIdle
}

func (c *Controller) dispatch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// apply renders s unless a newer snapshot is already on display.
func (c *Controller) apply(gen uint64, s Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.applied {
		c.log.Debug("dropping stale stats", zap.Uint64("generation", gen), zap.Uint64("applied", c.applied))
		return
	}
	if !s.Consistent() {
		c.log.Warn("server stats do not add up",
			zap.Int("total", s.Total),
			zap.Int("positive", s.Positive),
			zap.Int("negative", s.Negative),
			zap.Int("neutral", s.Neutral))
	}
	c.applied = gen
	c.stats = s
	for _, m := range Render(s) {
		if c.display.Has(m.Target) {
			c.display.SetText(m.Target, m.Text)
		}
	}
}
