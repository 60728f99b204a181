package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	progressdto "progresscard/internal/modules/progress/dto"
	"progresscard/internal/ui/theme"
)

type ProgressPort interface {
	Progress(ctx context.Context, userID string) (progressdto.ProgressOutput, error)
}

type FetchedMsg struct {
	UserID string
	Result progressdto.ProgressOutput
	Err    error
}

const historySize = 20

// Model shows the most recent progress lookups, latest on top.
type Model struct {
	port    ProgressPort
	results []FetchedMsg
	body    viewport.Model
	width   int
	height  int
}

func New(port ProgressPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Foreground(theme.Text).Padding(1)
	m := Model{port: port, body: vp}
	m.body.SetContent(m.render())
	return m
}

// Fetch looks up userID and reports the outcome as a FetchedMsg.
func (m Model) Fetch(userID string) tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return FetchedMsg{UserID: userID, Err: fmt.Errorf("progress lookups unavailable")}
		}
		out, err := m.port.Progress(context.Background(), userID)
		return FetchedMsg{UserID: userID, Result: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.body.Width = msg.Width
		m.body.Height = msg.Height
		m.body.SetContent(m.render())
	case FetchedMsg:
		m.results = append([]FetchedMsg{msg}, m.results...)
		if len(m.results) > historySize {
			m.results = m.results[:historySize]
		}
		m.body.SetContent(m.render())
		m.body.GotoTop()
	}
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.body.View()
}

func (m Model) render() string {
	if len(m.results) == 0 {
		return theme.Muted.Render("Run :progress <uid> to look a user up")
	}
	gaugeW := max(10, min(40, m.width/3))
	var sb strings.Builder
	for _, r := range m.results {
		sb.WriteString(theme.Title.Render(r.UserID))
		if r.Err != nil {
			sb.WriteString("  " + theme.Stale.Render(r.Err.Error()) + "\n\n")
			continue
		}
		name := r.Result.DisplayName
		if name == "" {
			name = theme.Muted.Render("(no name)")
		}
		sb.WriteString("  " + name + "\n")
		sb.WriteString(fmt.Sprintf("%s %s %3d %%  %s\n\n",
			theme.Muted.Render("  "),
			theme.Gauge(r.Result.Percent, gaugeW),
			r.Result.Percent,
			theme.Muted.Render(fmt.Sprintf("%d answered, ratio %.3f", r.Result.Answered, r.Result.Ratio)),
		))
	}
	return sb.String()
}
