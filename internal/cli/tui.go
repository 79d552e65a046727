package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqsmith/reqsmith/pkg/manifest"
	"github.com/reqsmith/reqsmith/pkg/registry"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type resultMsg registry.Result

type verifyDoneMsg struct {
	results []registry.Result
	err     error
}

type tickMsg time.Time

// verifyModel is the bubbletea model for live pin verification progress.
// Results stream in as workers complete lookups.
type verifyModel struct {
	total   int
	lines   []string
	done    bool
	frame   int
	results []registry.Result
	err     error
}

func newVerifyModel(total int) verifyModel {
	return verifyModel{total: total}
}

func (m verifyModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m verifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			return m, tea.Quit
		}
	case resultMsg:
		m.lines = append(m.lines, renderResultLine(registry.Result(msg)))
	case verifyDoneMsg:
		m.done = true
		m.results = msg.results
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		if !m.done {
			return m, tick()
		}
	}
	return m, nil
}

func (m verifyModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Verifying pins"))
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if !m.done {
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleIconSpinner.Render(frame))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" %d/%d checked", len(m.lines), m.total)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderResultLine formats one streamed result for the live view.
func renderResultLine(r registry.Result) string {
	name := manifest.NormalizeName(r.Name)
	switch r.Status {
	case registry.StatusOK:
		return styleIconSuccess.Render(iconSuccess) + " " + StyleValue.Render(name)
	case registry.StatusUnknownPackage:
		return styleIconError.Render(iconError) + " " + name + StyleDim.Render(" package not on index")
	case registry.StatusUnknownVersion:
		return styleIconError.Render(iconError) + " " + name + StyleDim.Render(fmt.Sprintf(" %s never published", r.Pin))
	default:
		return styleIconWarning.Render(iconWarning) + " " + name + StyleDim.Render(" lookup failed")
	}
}

// runVerifyTUI runs pin verification behind a live progress view. It returns
// the collected results once verification finishes or the user quits.
func runVerifyTUI(ctx context.Context, idx registry.Index, decls []*manifest.Declaration, opts registry.Options) ([]registry.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newVerifyModel(len(decls)), tea.WithContext(ctx))

	opts.OnResult = func(r registry.Result) {
		p.Send(resultMsg(r))
	}
	go func() {
		results, err := registry.VerifyPins(ctx, idx, decls, opts)
		p.Send(verifyDoneMsg{results: results, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(verifyModel)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}
