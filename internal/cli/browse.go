package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/contentaudit/pkg/errors"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// Browse styles
var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorMuted)
	listDimStyle     = lipgloss.NewStyle().Foreground(colorFaint)
	errorTextStyle   = lipgloss.NewStyle().Foreground(colorErr)
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Review and delete unused content interactively",
		Long: `Open a terminal UI over the three reports. Switch report with tab,
search with /, page with ←/→, select with space (a selects the page) and
delete the selection with d.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.newSession(cmd)
			if err != nil {
				return err
			}
			title := s.cfg.Target()
			if sp, err := s.client.GetSpace(cmd.Context()); err == nil && sp.Name != "" {
				title = sp.Name + " (" + s.cfg.Target() + ")"
			} else if err != nil {
				loggerFromContext(cmd.Context()).Debug("could not fetch space name", "err", err)
			}

			m := newBrowseModel(cmd.Context(), s.orch, title, s.cfg.PageSize)
			m.contentType = contentType
			p := tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&contentType, "content-type", "t", "", "restrict the entries report to this content type")
	_ = cmd.RegisterFlagCompletionFunc("content-type", c.completeContentTypes)
	return cmd
}

// =============================================================================
// browseModel - Interactive report review
// =============================================================================

// reportDoneMsg carries the state after a report run.
type reportDoneMsg struct {
	state report.State
	err   error
}

// deleteDoneMsg carries a finished deletion.
type deleteDoneMsg struct {
	res *report.DeleteResult
	err error
}

// browseModel is the bubbletea model for the browse command.
type browseModel struct {
	ctx         context.Context
	orch        *report.Orchestrator
	title       string
	contentType string

	kind   report.Kind
	view   report.View
	cursor int

	loading    bool
	deleting   bool
	searching  bool
	confirming bool
	input      string

	message string
	err     error
	now     func() time.Time
}

func newBrowseModel(ctx context.Context, orch *report.Orchestrator, title string, pageSize int) browseModel {
	if !report.ValidPageSize(pageSize) {
		pageSize = report.DefaultPageSize
	}
	return browseModel{
		ctx:     ctx,
		orch:    orch,
		title:   title,
		kind:    report.KindEntries,
		view:    report.View{PageSize: pageSize},
		loading: true,
		now:     time.Now,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.generate()
}

// ct is the content type filter, which only applies to entries.
func (m browseModel) ct() string {
	if m.kind == report.KindEntries {
		return m.contentType
	}
	return ""
}

func (m browseModel) generate() tea.Cmd {
	ctx, orch, kind, ct := m.ctx, m.orch, m.kind, m.ct()
	return func() tea.Msg {
		st, err := orch.Generate(ctx, kind, ct)
		return reportDoneMsg{state: st, err: err}
	}
}

func (m browseModel) deleteSelected() tea.Cmd {
	ctx, orch := m.ctx, m.orch
	return func() tea.Msg {
		res, err := orch.DeleteSelected(ctx, false)
		return deleteDoneMsg{res: res, err: err}
	}
}

func (m browseModel) page() report.Page {
	return m.orch.Page(m.view)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportDoneMsg:
		if msg.state.Kind != m.kind {
			return m, nil
		}
		m.loading = msg.state.Status == report.StatusLoading
		m.err = msg.err
		m.clampView()
		return m, nil

	case deleteDoneMsg:
		m.deleting = false
		m.err = msg.err
		if msg.res != nil {
			m.message = fmt.Sprintf("deleted %d of %d %s", msg.res.Succeeded(), len(msg.res.Outcomes), kindNoun(msg.res.Kind))
			if failed := msg.res.Failed(); len(failed) > 0 {
				m.message += fmt.Sprintf(", %d failed (first: %s %s)", len(failed), failed[0].ID, failed[0].Reason)
			}
		}
		m.clampView()
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m.updateSearch(msg)
		case m.confirming:
			return m.updateConfirm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m browseModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		i := slices.Index(report.Kinds, m.kind)
		if msg.String() == "tab" {
			i = (i + 1) % len(report.Kinds)
		} else {
			i = (i + len(report.Kinds) - 1) % len(report.Kinds)
		}
		m.kind = report.Kinds[i]
		m.view = report.View{PageSize: m.view.PageSize}
		m.cursor = 0
		m.loading, m.err = true, nil
		return m, m.generate()
	case "r":
		if m.loading || m.deleting {
			return m, nil
		}
		m.loading, m.err = true, nil
		return m, m.generate()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.page().Items)-1 {
			m.cursor++
		}
	case "left", "h":
		if m.view.Page > 0 {
			m.view.Page--
			m.cursor = 0
		}
	case "right", "l":
		if p := m.page(); p.Page < p.PageCount-1 {
			m.view.Page = p.Page + 1
			m.cursor = 0
		}
	case " ":
		if !m.kind.Deletable() {
			return m, nil
		}
		if items := m.page().Items; m.cursor < len(items) {
			if _, err := m.orch.Toggle(items[m.cursor].ID); err != nil {
				m.err = err
			}
		}
	case "a":
		if m.kind.Deletable() {
			m.orch.TogglePage(m.view)
		}
	case "s":
		i := slices.Index(report.PageSizes, m.view.PageSize)
		next := report.PageSizes[(i+1)%len(report.PageSizes)]
		if v, err := m.view.WithPageSize(next); err == nil {
			m.view = v
			m.clampView()
		}
	case "/":
		m.searching = true
		m.input = m.view.Query
	case "esc":
		if m.view.Query != "" {
			m.view = m.view.WithQuery("")
			m.cursor = 0
		}
	case "d":
		switch {
		case !m.kind.Deletable():
			m.message = kindNoun(m.kind) + " cannot be deleted"
		case len(m.orch.Selected()) == 0:
			m.message = "nothing selected"
		case m.loading || m.deleting:
		default:
			m.confirming = true
		}
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.view = m.view.WithQuery(m.input)
		m.cursor = 0
	case tea.KeyEsc:
		m.searching = false
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, nil
}

func (m browseModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirming = false
	switch msg.String() {
	case "y", "Y":
		m.deleting = true
		m.err = nil
		return m, m.deleteSelected()
	case "ctrl+c":
		return m, tea.Quit
	}
	m.message = "delete cancelled"
	return m, nil
}

// clampView pulls the page and cursor back inside the report, which may
// have shrunk after a deletion or regeneration.
func (m *browseModel) clampView() {
	p := m.page()
	m.view.Page = p.Page
	m.cursor = max(0, min(m.cursor, len(p.Items)-1))
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName) + listDimStyle.Render(" · ") + StyleValue.Render(m.title))
	b.WriteString("\n")
	tabs := make([]string, 0, len(report.Kinds))
	for _, k := range report.Kinds {
		label := "Unused " + kindNoun(k)
		if k == m.kind {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "   "))
	b.WriteString("\n\n")

	st := m.orch.State()
	switch {
	case m.loading:
		b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render("Generating "+string(m.kind)+" report..."))
		b.WriteString("\n")
	case m.deleting:
		b.WriteString(styleIconSpinner.Render("⠿") + " " + StyleDim.Render(fmt.Sprintf("Deleting %d %s...", len(m.orch.Selected()), kindNoun(m.kind))))
		b.WriteString("\n")
	case st.Status == report.StatusReady && st.Kind == m.kind:
		b.WriteString(m.renderPage(st))
	}

	if m.err != nil {
		b.WriteString(errorTextStyle.Render(iconError+" "+apperrors.UserMessage(m.err)) + "\n")
	}
	if m.message != "" {
		b.WriteString(StyleDim.Render(iconInfo+" "+m.message) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(StyleHighlight.Render("/") + m.input + StyleHighlight.Render("▏"))
		b.WriteString("\n" + listDimStyle.Render("⏎ apply  esc cancel"))
	case m.confirming:
		b.WriteString(StyleWarning.Render(fmt.Sprintf("Delete %d %s? This cannot be undone. [y/N]", len(m.orch.Selected()), kindNoun(m.kind))))
	default:
		help := "tab report  ↑/↓ move  ←/→ page  / search  s page size  r refresh  q quit"
		if m.kind.Deletable() {
			help = "tab report  ↑/↓ move  ←/→ page  space select  a select page  d delete  / search  s page size  r refresh  q quit"
		}
		b.WriteString(listDimStyle.Render(help))
	}
	return b.String()
}

func (m browseModel) renderPage(st report.State) string {
	var b strings.Builder
	p := m.page()
	if p.Total == 0 {
		if len(st.Items()) == 0 {
			b.WriteString(StyleSuccess.Render(iconSuccess+" Nothing unused found") + "\n")
		} else {
			b.WriteString(StyleDim.Render("No items match "+fmt.Sprintf("%q", m.view.Query)) + "\n")
		}
	} else {
		var isSelected func(string) bool
		if m.kind.Deletable() {
			isSelected = m.orch.IsSelected
		}
		b.WriteString(itemsTable(m.kind, p.Items, isSelected, m.cursor, m.now()))
		b.WriteString("\n")
	}

	parts := []string{
		fmt.Sprintf("page %d/%d", p.Page+1, p.PageCount),
		fmt.Sprintf("%d of %d shown", p.Total, len(st.Items())),
		fmt.Sprintf("%d per page", p.PageSize),
	}
	if m.kind.Deletable() {
		parts = append(parts, fmt.Sprintf("%d selected", len(m.orch.Selected())))
	}
	if m.view.Query != "" {
		parts = append(parts, fmt.Sprintf("query %q", m.view.Query))
	}
	b.WriteString(listDimStyle.Render("  " + strings.Join(parts, " · ")))
	b.WriteString("\n")
	if st.Truncated {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%s only %d of %d entries scanned", iconWarning, st.Scanned, st.Total)) + "\n")
	}
	if n := len(st.Failures); n > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("%s %d items could not be checked", iconWarning, n)) + "\n")
	}
	return b.String()
}
