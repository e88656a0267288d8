package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/nlq/internal/controller"
	"github.com/diogo/nlq/internal/form"
	"github.com/diogo/nlq/internal/render"
)

// Message types for the console
type (
	// settledMsg carries the outcome of an issued request back to Update
	settledMsg struct {
		outcome controller.Outcome
	}
	// copiedMsg reports the result of copying the generated SQL
	copiedMsg struct {
		err error
	}
)

// Options configures the console
type Options struct {
	// Endpoint is shown in the header
	Endpoint string
	// Defaults are the request parameters not exposed as fields
	Defaults form.Defaults
	// Locator prefills the database field
	Locator string
	// Render configures summary rendering
	Render render.Options
	// Clipboard copies text; clipboard.WriteAll when nil
	Clipboard func(string) error
}

// Model is the console state. The controller is only mutated from Update.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller
	opts Options

	// UI components
	inputs   []textinput.Model
	focus    form.Field
	viewport viewport.Model
	spinner  spinner.Model

	// State
	fields   form.State
	ready    bool
	feedback string

	// Dimensions
	width  int
	height int
}

// NewModel creates a console model driving ctrl
func NewModel(ctx context.Context, ctrl *controller.Controller, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	locator := newInput("path or URL of the database", 1024)
	locator.SetValue(opts.Locator)
	question := newInput("ask a question about your data", 4000)

	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		opts:   opts,
		inputs: []textinput.Model{locator, question},
		fields: form.State{Locator: opts.Locator},
	}

	// Start on the question when the database is already known
	if strings.TrimSpace(opts.Locator) != "" {
		m.focus = form.FieldQuestion
	}
	m.inputs[m.focus].Focus()

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle
	m.spinner = s

	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextMute)
	return ti
}

// resultsKeyMap scrolls the results without stealing keys from the inputs
func resultsKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Down:         key.NewBinding(key.WithKeys("down")),
		Up:           key.NewBinding(key.WithKeys("up")),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 5  // Two fields with border
		statusHeight := 2 // Status bar
		padding := 3

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.contentWidth()

		if !m.ready {
			m.viewport = viewport.New(contentWidth-4, vpHeight)
			m.viewport.KeyMap = resultsKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = contentWidth - 4
			m.viewport.Height = vpHeight
		}
		for i := range m.inputs {
			m.inputs[i].Width = contentWidth - 16
		}
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "shift+tab":
			m.switchFocus()
			return m, textinput.Blink

		case "enter":
			return m.submit()

		case "ctrl+r":
			if m.ctrl.State() == controller.StateIdle {
				return m, nil
			}
			m.ctrl.Reset()
			m.feedback = ""
			m.refresh()
			return m, nil

		case "ctrl+y":
			return m, m.copySQL()
		}

	case settledMsg:
		if m.ctrl.Settle(msg.outcome) {
			m.refresh()
			m.viewport.GotoTop()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.feedback = "copy failed: " + msg.err.Error()
		} else {
			m.feedback = "SQL copied to clipboard"
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
		m.fields.Set(m.focus, m.inputs[m.focus].Value())
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit hands the fields to the controller and issues the accepted ticket.
// Submitting while a request is pending is ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.pending() {
		return m, nil
	}

	m.feedback = ""
	ticket, err := m.ctrl.Submit(m.fields.Request(m.opts.Defaults))
	m.refresh()
	if err != nil {
		if missing := m.fields.Missing(); len(missing) > 0 && missing[0] != m.focus {
			m.setFocus(missing[0])
		}
		return m, nil
	}

	return m, tea.Batch(m.issue(ticket), m.spinner.Tick)
}

// issue runs the request off the update loop and reports back as settledMsg
func (m Model) issue(t controller.Ticket) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return settledMsg{outcome: ctrl.Issue(ctx, t)}
	}
}

func (m Model) copySQL() tea.Cmd {
	snap := m.ctrl.Snapshot()
	if snap.State != controller.StateSuccess || snap.Response == nil {
		return nil
	}
	sql := snap.Response.GeneratedQuery
	write := m.opts.Clipboard
	return func() tea.Msg {
		return copiedMsg{err: write(sql)}
	}
}

func (m *Model) switchFocus() {
	if m.focus == form.FieldLocator {
		m.setFocus(form.FieldQuestion)
	} else {
		m.setFocus(form.FieldLocator)
	}
}

func (m *Model) setFocus(f form.Field) {
	m.inputs[m.focus].Blur()
	m.focus = f
	m.inputs[m.focus].Focus()
}

func (m Model) pending() bool {
	return m.ctrl.State() == controller.StatePending
}

func (m Model) contentWidth() int {
	if m.width < 24 {
		return 20
	}
	return m.width - 4
}

// refresh re-renders the results area from the controller snapshot
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderResults(m.ctrl.Snapshot()))
}

func (m Model) renderResults(snap controller.Snapshot) string {
	width := m.viewport.Width

	switch snap.State {
	case controller.StatePending:
		return hintStyle.Render("Running query...")

	case controller.StateError:
		return lipgloss.NewStyle().Width(width).Render(FormatError(snap.Err))

	case controller.StateSuccess:
		resp := snap.Response
		var sections []string

		sections = append(sections,
			sectionLabelStyle.Render("SQL"),
			sqlStyle.Width(width-2).Render(render.StripControl(resp.GeneratedQuery)),
			"",
			sectionLabelStyle.Render("Results"),
			render.Table(render.ProjectResponse(resp), render.GetTUITheme().TableOptions(width)),
		)

		if resp.HasSummary() {
			opts := render.GetTUITheme().RenderOptions(m.opts.Render).WithWidth(width)
			summary := render.SummaryText(resp.Summary, opts)
			if summary != "" {
				sections = append(sections, "", sectionLabelStyle.Render("Summary"), summary)
			}
		}

		sections = append(sections, "", metaStyle.Render(formatMeta(resp.RowCount(), snap.Elapsed)))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)

	default:
		return m.renderWelcome()
	}
}

func formatMeta(rows int, elapsed time.Duration) string {
	noun := "rows"
	if rows == 1 {
		noun = "row"
	}
	return fmt.Sprintf("%d %s in %s", rows, noun, elapsed.Round(time.Millisecond))
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width
	title := welcomeTitleStyle.Width(width).Align(lipgloss.Center).Render("Ask your database a question")
	body := welcomeStyle.Width(width).Align(lipgloss.Center).Render(
		"Fill in the database and the question below, then press Enter.",
	)

	content := lipgloss.JoinVertical(lipgloss.Center, title, body)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// View renders the console
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.contentWidth()

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("nlq"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.opts.Endpoint),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(string(m.opts.Defaults.Dialect)),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	sections = append(sections, resultsAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(m.renderInputs()))
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderInputs() string {
	lines := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		f := form.Field(i)
		label := inputLabelStyle.Render(f.String())
		if f == m.focus {
			label = inputLabelFocusedStyle.Render(f.String())
		}
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, label, in.View())
	}

	if m.pending() {
		lines = append(lines, m.spinner.View()+loadingStyle.Render(" waiting for the service"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Run"},
		{"Tab", "Switch field"},
		{"Ctrl+Y", "Copy SQL"},
		{"Ctrl+R", "Reset"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	if m.feedback != "" {
		bar = feedbackStyle.Render(m.feedback) + "  │  " + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// Run starts the console and blocks until the user quits
func Run(ctx context.Context, ctrl *controller.Controller, opts Options) error {
	m := NewModel(ctx, ctrl, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
