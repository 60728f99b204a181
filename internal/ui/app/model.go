package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	carddto "progresscard/internal/modules/card/dto"
	progressdto "progresscard/internal/modules/progress/dto"
	apperrors "progresscard/internal/platform/errors"
	"progresscard/internal/ui/components"
	"progresscard/internal/ui/theme"
	cardsview "progresscard/internal/ui/views/cards"
	progressview "progresscard/internal/ui/views/progress"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type cardPort interface {
	Card(ctx context.Context, userID string, refresh bool) (carddto.CardOutput, error)
	List(ctx context.Context) ([]carddto.ArtifactOutput, error)
	Evict(ctx context.Context, userID string) ([]carddto.EvictOutput, error)
}

type progressPort interface {
	Progress(ctx context.Context, userID string) (progressdto.ProgressOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabCards tabID = iota
	tabProgress
	tabCount
)

var tabLabels = [tabCount]string{"Cards", "Progress"}

// ─── async messages ───────────────────────────────────────────────────────────

type cardDoneMsg struct {
	userID string
	out    carddto.CardOutput
	err    error
}

type evictDoneMsg struct {
	out []carddto.EvictOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Evict   key.Binding
	Reload  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-render card")),
		Evict:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "evict superseded")),
		Reload:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "rescan cache")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Evict, k.Reload},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes keys and palette commands to
// the card and progress ports and leaves drawing to the sub-views.
type Model struct {
	cacheDir string
	cards    cardPort

	cardsView    cardsview.Model
	progressView progressview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

func NewModel(cacheDir string, cards cardPort, progress progressPort) Model {
	var cacheP cardsview.CachePort
	if cards != nil {
		cacheP = cachePortBridge{p: cards}
	}
	var progressP progressview.ProgressPort
	if progress != nil {
		progressP = progress
	}
	return Model{
		cacheDir:     cacheDir,
		cards:        cards,
		cardsView:    cardsview.New(cacheP),
		progressView: progressview.New(progressP),
		activeTab:    tabCards,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return m.cardsView.Init()
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case cardDoneMsg:
		switch {
		case msg.err != nil:
			m.status = "card " + msg.userID + ": " + msg.err.Error()
		case msg.out.Default:
			m.status = "card " + msg.userID + ": no progress, default card"
		default:
			m.status = "card " + msg.userID + ": " + msg.out.Filename
		}
		return m, m.cardsView.Reload()

	case evictDoneMsg:
		if msg.err != nil {
			m.status = "evict: " + msg.err.Error()
			return m, m.cardsView.Reload()
		}
		removed := 0
		for _, e := range msg.out {
			removed += len(e.Removed)
		}
		m.status = fmt.Sprintf("evicted %d superseded card(s) across %d user(s)", removed, len(msg.out))
		return m, m.cardsView.Reload()

	case progressview.FetchedMsg:
		if msg.Err != nil {
			m.status = "progress " + msg.UserID + ": " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("progress %s: %d %%", msg.UserID, msg.Result.Percent)
		}
		m.activeTab = tabProgress
		var cmd tea.Cmd
		m.progressView, cmd = m.progressView.Update(msg)
		return m, cmd

	case cardsview.ArtifactsLoadedMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.cardsView, cmd = m.cardsView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the list filter while it is open.
		if m.activeTab == tabCards && m.cardsView.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Reload):
			m.status = "rescanning " + m.cacheDir
			return m, m.cardsView.Reload()
		case key.Matches(msg, m.keys.Refresh) && m.activeTab == tabCards:
			if uid, ok := m.cardsView.SelectedUserID(); ok {
				m.status = "rendering " + uid + "…"
				return m, m.cardCmd(uid, true)
			}
			return m, nil
		case key.Matches(msg, m.keys.Evict) && m.activeTab == tabCards:
			if uid, ok := m.cardsView.SelectedUserID(); ok {
				return m, m.evictCmd(uid)
			}
			return m, nil
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabCards:
		m.cardsView, tabCmd = m.cardsView.Update(msg)
	case tabProgress:
		m.progressView, tabCmd = m.progressView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()

	contentH := max(1, m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar))

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabProgress:
		content = m.progressView.View()
	default:
		content = m.cardsView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := " " + tabLabels[i] + " "
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(label)
		} else {
			parts[i] = theme.Muted.Render(label)
		}
	}
	bar := theme.Fresh.Render("progresscard") + "  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "card:refresh", "card:get":
		if len(parts) < 2 {
			m.status = "usage: " + parts[0] + " <uid>"
			return m, nil
		}
		m.status = "rendering " + parts[1] + "…"
		return m, m.cardCmd(parts[1], parts[0] == "card:refresh")

	case "cache:evict":
		uid := ""
		if len(parts) >= 2 {
			uid = parts[1]
		}
		return m, m.evictCmd(uid)

	case "cache:reload":
		m.activeTab = tabCards
		return m, m.cardsView.Reload()

	case "progress":
		if len(parts) < 2 {
			m.status = "usage: progress <uid>"
			return m, nil
		}
		return m, m.progressView.Fetch(parts[1])

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.cardsView, _ = m.cardsView.Update(sz)
	m.progressView, _ = m.progressView.Update(sz)
}

func (m Model) cardCmd(userID string, refresh bool) tea.Cmd {
	return func() tea.Msg {
		if m.cards == nil {
			return cardDoneMsg{userID: userID, err: errors.New("card adapter not configured")}
		}
		out, err := m.cards.Card(context.Background(), userID, refresh)
		return cardDoneMsg{userID: userID, out: out, err: err}
	}
}

func (m Model) evictCmd(userID string) tea.Cmd {
	return func() tea.Msg {
		if m.cards == nil {
			return evictDoneMsg{err: errors.New("card adapter not configured")}
		}
		out, err := m.cards.Evict(context.Background(), userID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return evictDoneMsg{}
		}
		return evictDoneMsg{out: out, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────

type cachePortBridge struct{ p cardPort }

func (b cachePortBridge) List(ctx context.Context) ([]carddto.ArtifactOutput, error) {
	return b.p.List(ctx)
}
