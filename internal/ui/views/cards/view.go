package cards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	carddto "progresscard/internal/modules/card/dto"
	"progresscard/internal/ui/theme"
)

type CachePort interface {
	List(ctx context.Context) ([]carddto.ArtifactOutput, error)
}

type ArtifactsLoadedMsg struct {
	Artifacts []carddto.ArtifactOutput
	Err       error
}

type artifactItem struct {
	artifact carddto.ArtifactOutput
}

func (i artifactItem) Title() string { return i.artifact.UserID }
func (i artifactItem) Description() string {
	state := "fresh"
	if i.artifact.Stale {
		state = "stale"
	}
	return fmt.Sprintf("%s  %s", state, i.artifact.GeneratedAt.Format(time.DateTime))
}
func (i artifactItem) FilterValue() string { return i.artifact.UserID }

// Model lists every cached artifact, newest first within each user.
type Model struct {
	port    CachePort
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port CachePort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Brand).BorderForeground(theme.Brand)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Brand)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Cards"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Brand)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload rescans the cache directory.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return ArtifactsLoadedMsg{}
		}
		artifacts, err := m.port.List(context.Background())
		return ArtifactsLoadedMsg{Artifacts: artifacts, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ArtifactsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "Cards: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = fmt.Sprintf("Cards (%d)", len(msg.Artifacts))
		items := make([]list.Item, len(msg.Artifacts))
		for i, a := range msg.Artifacts {
			items[i] = artifactItem{artifact: a}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Scanning cache…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Pane.
		Padding(0).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedUserID returns the user owning the highlighted artifact.
func (m Model) SelectedUserID() (string, bool) {
	if item, ok := m.list.SelectedItem().(artifactItem); ok {
		return item.artifact.UserID, true
	}
	return "", false
}

// Filtering reports whether the list's search filter is open.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(artifactItem)
	if !ok {
		return theme.Muted.Render("No cached cards")
	}
	a := item.artifact
	state := theme.Fresh.Render("fresh")
	if a.Stale {
		state = theme.Stale.Render("stale")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(a.UserID) + "\n\n")
	sb.WriteString(theme.Muted.Render("file:      ") + a.Filename + "\n")
	sb.WriteString(theme.Muted.Render("path:      ") + a.Path + "\n")
	sb.WriteString(theme.Muted.Render("generated: ") + a.GeneratedAt.Format(time.RFC3339) + "\n")
	sb.WriteString(theme.Muted.Render("modified:  ") + a.ModTime.Format(time.RFC3339) + "\n")
	sb.WriteString(theme.Muted.Render("state:     ") + state + "\n")
	sb.WriteString("\n" + theme.Muted.Render("r: refresh  e: evict superseded"))
	return sb.String()
}
