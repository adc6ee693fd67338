// ABOUTME: Bubbletea model for the store browser
// ABOUTME: Lists events, shows the selected entry's tree, player status and the event log
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hxtool/hxplay/pkg/eventlog"
	"github.com/hxtool/hxplay/pkg/hx"
	"github.com/hxtool/hxplay/pkg/playback"
	"github.com/hxtool/hxplay/pkg/resolve"
)

// Library is the browsable side of a session
type Library interface {
	Events() []*hx.Entry
	Tree(id hx.ID) *resolve.Node
}

// Controller is the playback side of a session
type Controller interface {
	Toggle(ctx context.Context, id hx.ID) error
	Replay(ctx context.Context) error
	Stop() error
	TogglePause() error
	SetRepeat(on bool)
	SetVolume(v float64)
	Snapshot() playback.Snapshot
}

const (
	tickInterval = 100 * time.Millisecond
	volumeStep   = 0.05
	logLines     = 6
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	playingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle    = lipgloss.NewStyle().Faint(true)

	levelStyles = map[eventlog.Level]lipgloss.Style{
		eventlog.Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		eventlog.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		eventlog.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		eventlog.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// Model represents the TUI state
type Model struct {
	title string
	lib   Library
	ctrl  Controller
	log   *eventlog.Log
	logCh <-chan eventlog.Entry
	ctx   context.Context

	events   []*hx.Entry
	selected int
	showTree bool

	snapshot playback.Snapshot
	entries  []eventlog.Entry
	err      error

	width  int
	height int
}

type tickMsg time.Time

type logMsg eventlog.Entry

type errMsg struct{ err error }

// NewModel creates a browser over lib. logCh may be nil.
func NewModel(ctx context.Context, title string, lib Library, ctrl Controller, log *eventlog.Log, logCh <-chan eventlog.Entry) Model {
	m := Model{
		title:    title,
		lib:      lib,
		ctrl:     ctrl,
		log:      log,
		logCh:    logCh,
		ctx:      ctx,
		events:   lib.Events(),
		showTree: true,
		snapshot: ctrl.Snapshot(),
	}
	if log != nil {
		m.entries = tail(log.Entries(), logLines)
	}
	return m
}

// Init starts the status ticker and the log feed
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickEvery(), waitForLog(m.logCh))
}

func tickEvery() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForLog(ch <-chan eventlog.Entry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return logMsg(e)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.snapshot = m.ctrl.Snapshot()
		return m, tickEvery()
	case logMsg:
		m.entries = tail(append(m.entries, eventlog.Entry(msg)), logLines)
		// a reload announces itself with a Status entry
		if msg.Level == eventlog.Status {
			m.refreshEvents()
		}
		return m, waitForLog(m.logCh)
	case errMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m *Model) refreshEvents() {
	m.events = m.lib.Events()
	if m.selected >= len(m.events) {
		m.selected = max(len(m.events)-1, 0)
	}
}

// Selected returns the highlighted event
func (m Model) Selected() (*hx.Entry, bool) {
	if m.selected < 0 || m.selected >= len(m.events) {
		return nil, false
	}
	return m.events[m.selected], true
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.events)-1 {
			m.selected++
		}
	case "home", "g":
		m.selected = 0
	case "end", "G":
		m.selected = max(len(m.events)-1, 0)
	case "enter":
		if e, ok := m.Selected(); ok {
			return m, m.run(func() error { return m.ctrl.Toggle(m.ctx, e.ID) })
		}
	case "p":
		return m, m.run(func() error { return m.ctrl.Replay(m.ctx) })
	case " ":
		return m, m.run(m.ctrl.TogglePause)
	case "s":
		return m, m.run(m.ctrl.Stop)
	case "r":
		m.ctrl.SetRepeat(!m.snapshot.Repeat)
		m.snapshot = m.ctrl.Snapshot()
	case "+", "=", "right":
		m.ctrl.SetVolume(m.snapshot.Volume + volumeStep)
		m.snapshot = m.ctrl.Snapshot()
	case "-", "left":
		m.ctrl.SetVolume(m.snapshot.Volume - volumeStep)
		m.snapshot = m.ctrl.Snapshot()
	case "t":
		m.showTree = !m.showTree
	case "c":
		if m.log != nil {
			m.log.Clear()
		}
		m.entries = nil
	}
	return m, nil
}

// run executes a playback action off the update loop
func (m Model) run(fn func() error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: fn()}
	}
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hxplay - " + m.title))
	b.WriteString("\n\n")
	b.WriteString(m.renderEvents())
	if m.showTree {
		b.WriteString("\n")
		b.WriteString(m.renderTree())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderLog())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// listHeight is the number of event rows that fit the window
func (m Model) listHeight() int {
	if m.height == 0 {
		return 10
	}
	// title, tree, status, log and help take roughly half
	return max(m.height/2-4, 3)
}

func (m Model) renderEvents() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Events (%d)", len(m.events))))
	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(valueStyle.Render("  No events"))
		b.WriteString("\n")
		return b.String()
	}

	rows := m.listHeight()
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	end := min(start+rows, len(m.events))

	playing := m.snapshot.Event
	for i := start; i < end; i++ {
		e := m.events[i]
		line := fmt.Sprintf("%4d  %s  %s", i, e.ID, truncate(e.Name(), 48))
		switch {
		case i == m.selected:
			b.WriteString(selectedStyle.Render("> " + line))
		case e.ID.String() == playing:
			b.WriteString(playingStyle.Render("♪ " + line))
		default:
			b.WriteString(valueStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTree() string {
	e, ok := m.Selected()
	if !ok {
		return ""
	}
	var tree strings.Builder
	if err := m.lib.Tree(e.ID).Print(&tree); err != nil {
		return faintStyle.Render(err.Error()) + "\n"
	}
	return headerStyle.Render("Tree") + "\n" + valueStyle.Render(tree.String())
}

func (m Model) renderStatus() string {
	s := m.snapshot
	var b strings.Builder

	b.WriteString(headerStyle.Render("Player: "))
	state := s.State
	if s.EventName != "" {
		state += " " + s.EventName
	}
	b.WriteString(valueStyle.Render(state))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  [%s] %s %s  %s left",
		renderBar(int(s.Progress*100), 100, 20), s.Bytes(), s.Position(), s.Remaining.Round(10*time.Millisecond)))
	b.WriteString("\n")

	repeat := "off"
	if s.Repeat {
		repeat = "on"
	}
	b.WriteString(fmt.Sprintf("  Volume: [%s] %3.0f%%  Repeat: %s  Cycles: %d",
		renderBar(int(s.Volume*100), 100, 10), s.Volume*100, repeat, s.Cycles))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(levelStyles[eventlog.Error].Render("  " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLog() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Log"))
	b.WriteString("\n")
	for _, e := range m.entries {
		style := levelStyles[e.Level]
		b.WriteString(style.Render(fmt.Sprintf("  %s %-7s %s", e.Time.Format("15:04:05"), e.Level, e.Message)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return faintStyle.Render("↑/↓:Select  enter:Play/Stop  p:Replay  space:Pause  s:Stop  r:Repeat  ←/→:Volume  t:Tree  c:Clear log  q:Quit")
}

func tail(entries []eventlog.Entry, n int) []eventlog.Entry {
	if len(entries) <= n {
		return entries
	}
	return append([]eventlog.Entry(nil), entries[len(entries)-n:]...)
}

func renderBar(value, max, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
