package dashboard

import "context"

// Trigger identifiers the controller binds to.
const (
	TriggerCommentForm = "add-comment-form"
	TriggerAnalyzeAll  = "analyze-all-btn"
	TriggerClearAll    = "clear-all-btn"
	TriggerDownload    = "download-excel-btn"
)

// Triggers lists every trigger in binding order.
var Triggers = []string{TriggerCommentForm, TriggerAnalyzeAll, TriggerClearAll, TriggerDownload}

// Display is the page the controller writes into. Implementations must not
// call back into the Controller: writes happen while it holds its lock.
type Display interface {
	// Has reports whether the page carries an element with this id.
	Has(id string) bool
	SetText(id, text string)
	SetTrigger(id string, enabled bool, label string)
}

// Prompter shows notices and asks for confirmation.
type Prompter interface {
	Alert(ctx context.Context, message string)
	Confirm(ctx context.Context, question string) bool
}

// Navigator follows a URL on behalf of the page, e.g. to fetch a download.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// Backend is the sentiment dashboard server. Errors returned by its methods
// are transport or decoding failures; application failures come back as an
// envelope whose status is not "success".
type Backend interface {
	AddComment(ctx context.Context, c Comment) (*CommentResult, error)
	AnalyzeAll(ctx context.Context) (*AnalyzeResult, error)
	ClearComments(ctx context.Context) (*Envelope, error)
	Analytics(ctx context.Context) (*Analytics, error)
	ExportURL(clear bool) string
}

// TriggerState is the per-trigger state machine position.
type TriggerState int

const (
	StateIdle TriggerState = iota
	StateConfirming
	StateInFlight
)

func (s TriggerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateInFlight:
		return "in-flight"
	default:
		return "unknown"
	}
}

// Outcome is how a single operation ended. Operations never return errors;
// every failure has already been turned into a notice.
type Outcome int

const (
	OutcomeSuccess  Outcome = iota
	OutcomeDeclined         // confirmation refused, nothing sent
	OutcomeInvalid          // validation failed, nothing sent
	OutcomeRejected         // server answered with a non-success status
	OutcomeFailed           // transport or decoding failure
	OutcomeBusy             // same operation already running
	OutcomeUnwired          // trigger absent from the page
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDeclined:
		return "declined"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	case OutcomeUnwired:
		return "unwired"
	default:
		return "unknown"
	}
}

// OK reports whether the outcome leaves nothing for the user to fix.
func (o Outcome) OK() bool {
	return o == OutcomeSuccess || o == OutcomeDeclined
}
