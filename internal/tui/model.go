package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/econsult/sentidash/internal/dashboard"
)

const refreshID = "refresh"

type focus int

const (
	focusInput focus = iota
	focusBar
)

type noticeTier int

const (
	tierSuccess noticeTier = iota
	tierWarning
	tierError
)

type triggerView struct {
	key     string
	enabled bool
	label   string
}

// Model is the dashboard page.
type Model struct {
	ctx    context.Context
	ctrl   *dashboard.Controller
	bridge *Bridge
	author string
	styles Styles

	input    textinput.Model
	spinner  spinner.Model
	focus    focus
	counters map[string]string
	triggers map[string]triggerView
	running  map[string]int
	notice   string
	tier     noticeTier
	confirms []confirmMsg
	width    int
}

func newModel(ctx context.Context, ctrl *dashboard.Controller, bridge *Bridge, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a comment and press enter"
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		bridge:  bridge,
		author:  opts.Author,
		styles:  NewStyles(),
		input:   ti,
		spinner: sp,
		counters: map[string]string{
			dashboard.TargetTotal:    "0",
			dashboard.TargetPositive: "0",
			dashboard.TargetNegative: "0",
			dashboard.TargetNeutral:  "0",
		},
		triggers: map[string]triggerView{
			dashboard.TriggerCommentForm: {key: "enter", enabled: true, label: "Submit Comment"},
			dashboard.TriggerAnalyzeAll:  {key: "a", enabled: true, label: dashboard.LabelAnalyzeIdle},
			dashboard.TriggerClearAll:    {key: "c", enabled: true, label: "Clear All Comments"},
			dashboard.TriggerDownload:    {key: "d", enabled: true, label: "Download Excel"},
		},
		running: make(map[string]int),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start(refreshID, m.ctrl.Refresh))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 10 {
			m.input.Width = msg.Width - 10
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case textMsg:
		m.counters[msg.id] = msg.text
		return m, nil

	case triggerMsg:
		tv := m.triggers[msg.id]
		tv.enabled = msg.enabled
		tv.label = msg.label
		m.triggers[msg.id] = tv
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		m.tier = classifyNotice(msg.text)
		return m, nil

	case confirmMsg:
		m.confirms = append(m.confirms, msg)
		return m, nil

	case dismissMsg:
		m.dropConfirm(msg.reply)
		return m, nil

	case resetMsg:
		m.input.Reset()
		return m, nil

	case outcomeMsg:
		if m.running[msg.id]--; m.running[msg.id] <= 0 {
			delete(m.running, msg.id)
		}
		if msg.outcome == dashboard.OutcomeBusy {
			m.notice = "Still working on the previous request."
			m.tier = tierWarning
		}
		return m, nil

	case spinner.TickMsg:
		if len(m.running) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.confirms) > 0 {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusInput {
		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "a":
		return m, m.start(dashboard.TriggerAnalyzeAll, m.ctrl.AnalyzeAll)
	case "c":
		return m, m.start(dashboard.TriggerClearAll, m.ctrl.ClearAll)
	case "d":
		return m, m.start(dashboard.TriggerDownload, m.ctrl.DownloadExport)
	case "r":
		return m, m.start(refreshID, m.ctrl.Refresh)
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	head := m.confirms[0]
	switch msg.String() {
	case "y", "Y", "enter":
		head.reply <- true
	case "n", "N", "esc":
		head.reply <- false
	case "ctrl+c":
		head.reply <- false
		return m, tea.Quit
	default:
		return m, nil
	}
	m.confirms = m.confirms[1:]
	return m, nil
}

func (m *Model) dropConfirm(reply chan bool) {
	for i, c := range m.confirms {
		if c.reply == reply {
			m.confirms = append(m.confirms[:i:i], m.confirms[i+1:]...)
			return
		}
	}
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusBar
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

// submit sends the current input as a fresh form so an in-flight
// submission never shares state with further typing.
func (m *Model) submit() tea.Cmd {
	bridge, ctrl := m.bridge, m.ctrl
	form := &dashboard.Form{
		Comment: dashboard.Comment{Text: m.input.Value(), Author: m.author},
		OnReset: func() { bridge.deliver(resetMsg{}) },
	}
	return m.start(dashboard.TriggerCommentForm, func(ctx context.Context) dashboard.Outcome {
		return ctrl.SubmitComment(ctx, form)
	})
}

// start runs op in a command goroutine and reports its outcome.
func (m *Model) start(id string, op func(context.Context) dashboard.Outcome) tea.Cmd {
	ctx := m.ctx
	run := func() tea.Msg {
		return outcomeMsg{id: id, outcome: op(ctx)}
	}
	wasIdle := len(m.running) == 0
	m.running[id]++
	if wasIdle {
		return tea.Batch(run, m.spinner.Tick)
	}
	return run
}

func classifyNotice(text string) noticeTier {
	switch {
	case strings.HasPrefix(text, "Error: "), strings.HasPrefix(text, "An error occurred"):
		return tierError
	case strings.HasPrefix(text, "Please "):
		return tierWarning
	default:
		return tierSuccess
	}
}

func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	header := s.Header
	if m.width > 0 {
		header = header.Width(m.width)
	}
	b.WriteString(header.Render("E-Consultation Feedback Dashboard"))
	b.WriteString("\n\n")

	cards := []struct {
		id, label string
		style     lipgloss.Style
	}{
		{dashboard.TargetTotal, "Total Comments", s.Total},
		{dashboard.TargetPositive, "Positive", s.Positive},
		{dashboard.TargetNegative, "Negative", s.Negative},
		{dashboard.TargetNeutral, "Neutral", s.Neutral},
	}
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, s.Card.Render(
			s.CardLabel.Render(c.label)+"\n"+c.style.Render(m.counters[c.id])))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n\n")

	inputStyle := s.Input
	if m.focus == focusInput {
		inputStyle = s.InputFocused
	}
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n\n")

	if len(m.confirms) > 0 {
		b.WriteString(s.Dialog.Render(m.confirms[0].question + "\n\n[y]es / [n]o"))
	} else {
		b.WriteString(m.triggerBar())
	}
	b.WriteString("\n\n")

	if m.notice != "" {
		style := s.Success
		switch m.tier {
		case tierWarning:
			style = s.Warning
		case tierError:
			style = s.Error
		}
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	}
	if len(m.running) > 0 {
		b.WriteString(m.spinner.View() + " working...\n")
	}

	b.WriteString(s.Help.Render("tab switch focus • enter submit • a analyze • c clear • d download • r refresh • q quit"))
	return b.String()
}

func (m Model) triggerBar() string {
	s := m.styles
	parts := make([]string, 0, len(dashboard.Triggers))
	for _, id := range dashboard.Triggers {
		tv := m.triggers[id]
		style := s.Trigger
		if !tv.enabled {
			style = s.TriggerDisabled
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s %s", s.TriggerKey.Render("["+tv.key+"]"), tv.label)))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.focus == focusBar {
		return s.BarFocused.Render(bar)
	}
	return bar
}
