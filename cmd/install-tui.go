package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/utils"
)

// installProgress is shared between the installer goroutines and the ui
type installProgress struct {
	tasks      atomic.Int64
	totalBytes atomic.Int64
	done       atomic.Int64
	bytes      atomic.Int64
}

func (p *installProgress) planned(tasks []downloadmgr.Task) {
	var total int64
	for _, t := range tasks {
		total += t.Size
	}
	p.tasks.Store(int64(len(tasks)))
	p.totalBytes.Store(total)
}

func (p *installProgress) sink() downloadmgr.Sink {
	return downloadmgr.SinkFuncs{
		OnBytes:    func(n int64) { p.bytes.Add(n) },
		OnTaskDone: func(downloadmgr.Result) { p.done.Add(1) },
	}
}

func (p *installProgress) percent() float64 {
	tasks := p.tasks.Load()
	if tasks == 0 {
		return 0
	}
	return float64(p.done.Load()) / float64(tasks)
}

type stateMsg instances.State

type installDoneMsg struct {
	installation *instances.Installation
	err          error
}

type installModel struct {
	id       string
	progress *installProgress
	cancel   context.CancelFunc
	state    instances.State
	width    int
	spinner  spinner.Model
	bar      progress.Model
	result   installDoneMsg
	done     bool
}

var (
	styleState = lipgloss.NewStyle().Foreground(lipgloss.Color("211"))
	checkMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("✓")
)

func newInstallModel(id string, p *installProgress, cancel context.CancelFunc) installModel {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	return installModel{
		id:       id,
		progress: p,
		cancel:   cancel,
		spinner:  s,
		bar:      bar,
	}
}

func (m installModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m installModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			// the installer stops and reports back with installDoneMsg
			m.cancel()
		}
	case stateMsg:
		m.state = instances.State(msg)
	case installDoneMsg:
		m.result = msg
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m installModel) View() string {
	if m.done {
		if m.result.err != nil {
			return ""
		}
		return fmt.Sprintf("%s Minecraft %s is ready\n", checkMark, m.id)
	}

	spin := m.spinner.View() + " "
	state := styleState.Render(m.state.String())
	if m.state != instances.StateDownloading {
		return spin + state + "\n"
	}

	prog := m.bar.ViewAs(m.progress.percent())
	count := fmt.Sprintf(
		" %d/%d %s",
		m.progress.done.Load(),
		m.progress.tasks.Load(),
		utils.HumanBytes(m.progress.bytes.Load()),
	)
	gap := strings.Repeat(" ", max(1, m.width-lipgloss.Width(spin+state+prog+count)))
	return spin + state + gap + prog + count + "\n"
}

// installFancy runs the installer while rendering a progress bar to out
func installFancy(ctx context.Context, installer *instances.Installer, id string, out io.Writer) (*instances.Installation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := &installProgress{}
	program := tea.NewProgram(newInstallModel(id, p, cancel), tea.WithOutput(out))
	installer.Sink = p.sink()
	installer.OnPlanned = p.planned
	installer.OnState = func(s instances.State, err error) { program.Send(stateMsg(s)) }

	go func() {
		installation, err := installer.Install(ctx, id)
		program.Send(installDoneMsg{installation, err})
	}()

	final, err := program.Run()
	if m, ok := final.(installModel); ok && m.done {
		return m.result.installation, m.result.err
	}
	if err != nil {
		return nil, err
	}
	return nil, context.Canceled
}
