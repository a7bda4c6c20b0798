// Package tui renders the scan/repair pass live: one line per drive with a
// spinner on the drive currently being processed, then a summary once the
// pass completes.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"diskward/internal/orchestrator"
)

// KeyMap defines keybindings.
type KeyMap struct {
	Quit key.Binding
}

var keys = KeyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k KeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k KeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

type eventMsg orchestrator.Event

type doneMsg struct {
	results []orchestrator.DriveResult
	err     error
}

// Model is the scan-view model.
type Model struct {
	drives  []string
	phase   map[string]orchestrator.Phase
	active  map[string]bool
	results map[string]*orchestrator.DriveResult

	spinner spinner.Model
	help    help.Model

	done    bool
	err     error
	all     []orchestrator.DriveResult
	summary orchestrator.Summary

	events <-chan orchestrator.Event
	donec  <-chan doneMsg
}

func newModel(drives []string, events <-chan orchestrator.Event, donec <-chan doneMsg) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(statusWorking),
	)
	return Model{
		drives:  drives,
		phase:   make(map[string]orchestrator.Phase),
		active:  make(map[string]bool),
		results: make(map[string]*orchestrator.DriveResult),
		spinner: sp,
		help:    help.New(),
		events:  events,
		donec:   donec,
	}
}

// Run executes start (the scan pass) in the background and displays its
// progress events until completion. It returns the pass results.
func Run(drives []string, start func(observer func(orchestrator.Event)) ([]orchestrator.DriveResult, error)) ([]orchestrator.DriveResult, error) {
	events, donec, stop := startPass(start)
	defer stop()

	final, err := tea.NewProgram(newModel(drives, events, donec)).Run()
	if err != nil {
		return nil, fmt.Errorf("running scan view: %w", err)
	}

	m := final.(Model)
	return m.all, m.err
}

// startPass runs the scan pass in the background, bridging its observer
// callbacks into an event channel. stop unblocks the producer once the view
// has gone away, so quitting mid-pass never wedges the pass goroutine on a
// full event buffer.
func startPass(start func(observer func(orchestrator.Event)) ([]orchestrator.DriveResult, error)) (<-chan orchestrator.Event, <-chan doneMsg, func()) {
	events := make(chan orchestrator.Event, 16)
	donec := make(chan doneMsg, 1)
	quit := make(chan struct{})

	var once sync.Once
	stop := func() { once.Do(func() { close(quit) }) }

	go func() {
		results, err := start(func(e orchestrator.Event) {
			select {
			case events <- e:
			case <-quit:
			}
		})
		close(events)
		donec <- doneMsg{results: results, err: err}
	}()

	return events, donec, stop
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// waitForEvent blocks on the next progress event, switching to the
// completion message once the event channel is drained.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		if e, ok := <-m.events; ok {
			return eventMsg(e)
		}
		return <-m.donec
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			// Quitting mid-pass does not roll anything back; whatever was
			// already scheduled stays scheduled.
			return m, tea.Quit
		}

	case eventMsg:
		e := orchestrator.Event(msg)
		m.phase[e.Drive] = e.Phase
		if e.Phase == orchestrator.PhaseDone {
			delete(m.active, e.Drive)
			m.results[e.Drive] = e.Result
		} else {
			m.active[e.Drive] = true
		}
		return m, m.waitForEvent()

	case doneMsg:
		m.done = true
		m.all = msg.results
		m.err = msg.err
		m.summary = orchestrator.Summarize(msg.results)
		if m.err != nil {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("diskward"))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("  checking %d fixed drives", len(m.drives))))
	b.WriteString("\n\n")

	for _, drive := range m.drives {
		b.WriteString(m.driveLine(drive))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%d healthy, %d pending, %d restart, %d idle, %d failed to schedule\n",
			len(m.summary.Healthy), len(m.summary.AlreadyDirty), len(m.summary.RebootScheduled),
			len(m.summary.IdleScheduled), len(m.summary.SchedulingFailed)))
		if m.summary.RebootPending() {
			b.WriteString(warnNoteStyle.Render(
				"Restart required to repair: " + strings.Join(m.summary.RebootScheduled, ", ")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return appStyle.Render(b.String())
}

func (m Model) driveLine(drive string) string {
	label := driveStyle.Render(drive)

	if r, ok := m.results[drive]; ok {
		marker := statusOK.Render("✓")
		status := statusOK.Render(r.Outcome.String())
		switch {
		case r.SchedulingFailed:
			marker = statusFail.Render("✗")
			status = statusFail.Render(r.Outcome.String())
		case r.Outcome != orchestrator.OutcomeHealthy:
			marker = statusWorking.Render("!")
			status = statusWorking.Render(r.Outcome.String())
		}
		line := fmt.Sprintf("%s %s  %s", marker, label, status)
		if r.Warning != "" {
			line += subtitleStyle.Render("  (" + r.Warning + ")")
		}
		return line
	}

	if m.active[drive] {
		return fmt.Sprintf("%s %s  %s", m.spinner.View(), label, statusWorking.Render(phaseLabel(m.phase[drive])))
	}
	return fmt.Sprintf("%s %s  %s", statusPending.Render("·"), label, statusPending.Render("waiting"))
}

func phaseLabel(p orchestrator.Phase) string {
	switch p {
	case orchestrator.PhaseDirtyCheck:
		return "checking dirty bit"
	case orchestrator.PhaseScan:
		return "scanning"
	case orchestrator.PhaseSchedule:
		return "scheduling repair"
	}
	return "working"
}
