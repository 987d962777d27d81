package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"go.oastate.dev/oastate/genlog"
	"go.oastate.dev/oastate/pipeline"
)

const maxWatchLines = 20

func newWatchCommand(cfg *pipeline.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <spec.json>",
		Short: "Run the pipeline with a live progress view",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runWatch(cfg, args[0])
		},
	}
}

func runWatch(cfg *pipeline.Config, specPath string) error {
	if err := cfg.LoadFile(); err != nil {
		return err
	}

	pub := genlog.NewPublisher()
	defer pub.Close()

	handler, err := cfg.Log.NewHandler(pub)
	if err != nil {
		return err
	}
	logger := slog.New(handler)

	p, err := cfg.NewPipeline()
	if err != nil {
		return err
	}

	f, err := os.Open(specPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", specPath, err)
	}

	m := newWatchModel(pub, specPath)

	done := make(chan watchDoneMsg, 1)
	go func() {
		result, runErr := p.Run(logger, f)
		f.Close()
		done <- watchDoneMsg{result: result, err: runErr}
	}()
	m.done = done

	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}

	final, _ := finalModel.(*watchModel)
	if final != nil && final.err != nil {
		return final.err
	}

	return nil
}

type logLineMsg string

type watchDoneMsg struct {
	result *pipeline.Result
	err    error
}

type watchModel struct {
	sub      *genlog.Subscription
	done     chan watchDoneMsg
	specPath string
	lines    []string
	result   *pipeline.Result
	err      error
	finished bool
}

func newWatchModel(pub *genlog.Publisher, specPath string) *watchModel {
	return &watchModel{sub: pub.Subscribe(), specPath: specPath}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.waitForLog(), m.waitForDone())
}

func (m *watchModel) waitForLog() tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-m.sub.C()
		if !ok {
			return nil
		}
		return logLineMsg(strings.TrimRight(string(entry), "\n"))
	}
}

func (m *watchModel) waitForDone() tea.Cmd {
	return func() tea.Msg {
		return <-m.done
	}
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.sub.Close()
			return m, tea.Quit
		}

	case logLineMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxWatchLines {
			m.lines = m.lines[len(m.lines)-maxWatchLines:]
		}
		return m, m.waitForLog()

	case watchDoneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		m.sub.Close()
		return m, tea.Quit
	}

	return m, nil
}

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true)
	watchErrorStyle = lipgloss.NewStyle().Bold(true)
	watchLogStyle   = lipgloss.NewStyle().Faint(true)
)

func (m *watchModel) View() tea.View {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", watchTitleStyle.Render("oastate watch: "+m.specPath))

	for _, line := range m.lines {
		fmt.Fprintf(&b, "%s\n", watchLogStyle.Render(line))
	}

	switch {
	case m.err != nil:
		fmt.Fprintf(&b, "\n%s\n", watchErrorStyle.Render("error: "+m.err.Error()))
	case m.finished && m.result != nil:
		fmt.Fprintf(&b, "\nwrote %d type(s), %d builder(s), %d warning(s)\n",
			m.result.Definitions, m.result.Builders, len(m.result.Warnings))
	default:
		b.WriteString("\nrunning...\n")
	}

	return tea.NewView(b.String())
}
