package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/econsult/sentidash/internal/dashboard"
)

// Messages sent from controller goroutines to the program.
type (
	textMsg struct {
		id   string
		text string
	}
	triggerMsg struct {
		id      string
		enabled bool
		label   string
	}
	noticeMsg struct {
		text string
	}
	confirmMsg struct {
		question string
		reply    chan bool
	}
	dismissMsg struct {
		reply chan bool
	}
	resetMsg   struct{}
	outcomeMsg struct {
		id      string
		outcome dashboard.Outcome
	}
)

// pageElements lists every element id the terminal page carries.
var pageElements = map[string]bool{
	dashboard.TargetTotal:        true,
	dashboard.TargetPositive:     true,
	dashboard.TargetNegative:     true,
	dashboard.TargetNeutral:      true,
	dashboard.TriggerCommentForm: true,
	dashboard.TriggerAnalyzeAll:  true,
	dashboard.TriggerClearAll:    true,
	dashboard.TriggerDownload:    true,
}

// Bridge is the Display and Prompter handed to the controller. Every call
// becomes a message to the running program; calls made while no program
// is attached are dropped, and confirmations are declined.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

var (
	_ dashboard.Display  = (*Bridge)(nil)
	_ dashboard.Prompter = (*Bridge)(nil)
)

// Attach routes messages to send, typically a tea.Program's Send. A nil
// send detaches.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) deliver(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

func (b *Bridge) Has(id string) bool {
	return pageElements[id]
}

func (b *Bridge) SetText(id, text string) {
	b.deliver(textMsg{id: id, text: text})
}

func (b *Bridge) SetTrigger(id string, enabled bool, label string) {
	b.deliver(triggerMsg{id: id, enabled: enabled, label: label})
}

// Alert shows a notice without waiting for the user to dismiss it.
func (b *Bridge) Alert(ctx context.Context, message string) {
	b.deliver(noticeMsg{text: message})
}

// Confirm opens the dialog and waits for the answer or ctx.
func (b *Bridge) Confirm(ctx context.Context, question string) bool {
	reply := make(chan bool, 1)
	if !b.deliver(confirmMsg{question: question, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		b.deliver(dismissMsg{reply: reply})
		return false
	}
}
