package tui

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nao1215/catchphish/internal/model"
	"github.com/nao1215/catchphish/internal/view"
)

// Placeholder is shown in the empty search box.
const Placeholder = "Enter the suspicious URL"

// inputChrome is the width taken by the input border, padding and prompt.
const inputChrome = 8

// stateChangedMsg tells the program that the view state moved on.
type stateChangedMsg struct{}

// Model is the bubbletea model of the search screen.
// It hosts a view.View, which owns the query, the in-flight lookups and the
// stale policy. The model only translates key presses into view calls and
// redraws when the view reports a transition.
type Model struct {
	ctx    context.Context
	policy view.StalePolicy
	logger *slog.Logger

	v *view.View

	// changed is signalled by the view after every transition. It holds at
	// most one pending signal; the model always reads the latest state.
	changed chan struct{}

	input    textinput.Model
	spinner  spinner.Model
	spinning bool
	width    int
}

// Option configures a Model.
type Option func(*Model)

// WithStalePolicy sets how superseded responses are treated.
func WithStalePolicy(policy view.StalePolicy) Option {
	return func(m *Model) {
		m.policy = policy
	}
}

// WithLogger sets the logger that receives lookup failures.
// The terminal is owned by the program, so it should not write to stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates the search screen. Lookups derive their context from ctx.
func New(ctx context.Context, searcher view.Searcher, opts ...Option) *Model {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.Prompt = "› "
	ti.Focus()

	m := &Model{
		ctx:     ctx,
		policy:  view.LastWriteWins,
		logger:  slog.Default(),
		changed: make(chan struct{}, 1),
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.v = view.New(searcher,
		view.WithStalePolicy(m.policy),
		view.WithLogger(m.logger),
		view.WithOnChange(m.notify),
	)
	return m
}

// notify records a state change without blocking the view.
func (m *Model) notify(view.State) {
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// waitForChange waits for the next state change signalled by the view.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changed:
			return stateChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// State returns the current view state.
func (m *Model) State() view.State {
	return m.v.State()
}

// Close cancels outstanding lookups and waits for them to return.
func (m *Model) Close() {
	m.v.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - inputChrome; w > 0 {
			m.input.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if text := m.input.Value(); text != m.v.State().Query {
			m.v.OnQueryTextChange(text)
		}
		return m, cmd

	case stateChangedMsg:
		return m, tea.Batch(m.startSpinner(), m.waitForChange())

	case spinner.TickMsg:
		if !m.v.State().Loading {
			m.spinning = false
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

// submit asks the view to search for the current query.
// A blank query is ignored by the view and issues nothing.
func (m *Model) submit() tea.Cmd {
	if !m.v.SubmitSearch(m.ctx) {
		return nil
	}
	return m.startSpinner()
}

// startSpinner starts the loading spinner if a search is outstanding and the
// spinner is not already ticking.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning || !m.v.State().Loading {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// View implements tea.Model.
func (m *Model) View() string {
	state := m.v.State()
	sections := []string{
		titleStyle.Render("CatchPhish"),
		inputStyle.Render(m.input.View()),
	}

	if state.Loading {
		sections = append(sections, m.spinner.View()+" "+view.LoadingText)
	}
	if state.Result != nil {
		sections = append(sections, renderResult(state.Result))
	}

	sections = append(sections, helpStyle.Render("enter: search • esc: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// renderResult renders the classification and the details panel.
func renderResult(r *model.LookupResult) string {
	label := lipgloss.NewStyle().
		Bold(true).
		Foreground(labelColor(r.Prediction())).
		Render(r.Label())

	header := urlStyle.Render(r.URL) + "  " + label
	if host, err := model.ParseHost(r.URL); err == nil && host.IsInternationalized() {
		header += "\n" + fieldStyle.Render("punycode") + host.ASCII
	}

	status := statusBoxStyle.
		BorderForeground(statusColor(r.Status())).
		Foreground(statusColor(r.Status())).
		Render(r.Status())

	about := []string{
		sectionStyle.Render("About"),
		lipgloss.JoinHorizontal(lipgloss.Center, fieldStyle.Render("IP Score"), status),
		field("IP Address", r.IPAddress),
		field("Country", r.Country),
		field("Region", r.Region),
		field("Phishing Prediction", strconv.Itoa(r.PredictionResult)),
		field("Phishing Probability", strconv.FormatFloat(r.PredictionProb, 'f', -1, 64)),
		field("ISP Name", r.ISPName),
		field("VPN Usage", r.VPNUsage()),
	}

	lines := r.FeatureLines()
	reasons := []string{
		sectionStyle.Render("Reason & Summary"),
		field("URL based", lines[0]),
		field("Content based", lines[1]),
		field("Domain based", lines[2]),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, about...),
		lipgloss.JoinVertical(lipgloss.Left, reasons...),
	)
}

// field renders one name/value row.
func field(name, value string) string {
	return fieldStyle.Render(name) + value
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, searcher view.Searcher, opts ...Option) error {
	m := New(ctx, searcher, opts...)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}
