package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskdash/internal/integration"
	"github.com/valter-silva-au/taskdash/pkg/models"
)

type dashboardMode int

const (
	modeBrowse dashboardMode = iota
	modeSearch
	modeForm
	modeConfirmDelete
)

// inputCursorMode is the cursor style of every text input on the dashboard.
var inputCursorMode = cursor.CursorBlink

type dashboardKeyMap struct {
	NextFilter key.Binding
	PrevFilter key.Binding
	Search     key.Binding
	Up         key.Binding
	Down       key.Binding
	Complete   key.Binding
	Delete     key.Binding
	Add        key.Binding
	Edit       key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		NextFilter: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next filter")),
		PrevFilter: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev filter")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Complete:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextFilter, k.Search, k.Up, k.Down, k.Complete, k.Delete, k.Add, k.Edit, k.Refresh, k.Quit}
}

func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PrevFilter}}
}

// Form fields.
const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldCount
)

// taskForm is the add/edit modal. editID is empty when adding; orig holds
// the task as it was when editing started.
type taskForm struct {
	editID string
	orig   models.Task
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 200
	_ = ti.Cursor.SetMode(inputCursorMode)
	return ti
}

func newTaskForm(task *models.Task) taskForm {
	f := taskForm{}
	f.inputs[fieldTitle] = newInput("Task title")
	f.inputs[fieldDescription] = newInput("Description (optional)")
	f.inputs[fieldDue] = newInput("Due date, YYYY-MM-DD")

	if task != nil {
		f.editID = task.ID
		f.orig = *task
		f.inputs[fieldTitle].SetValue(task.Title)
		f.inputs[fieldDescription].SetValue(task.Description)
		f.inputs[fieldDue].SetValue(task.DueDate.UTC().Format(time.DateOnly))
		for i := range f.inputs {
			f.inputs[i].CursorEnd()
		}
	}
	return f
}

func (f *taskForm) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f taskForm) values() (title, description string, due time.Time, err error) {
	title = strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		return "", "", time.Time{}, errors.New("Title is required") //nolint:staticcheck // shown verbatim in the form
	}
	due, err = models.ParseDueDate(f.inputs[fieldDue].Value())
	if err != nil {
		return "", "", time.Time{}, errors.New("Due date must be YYYY-MM-DD or RFC3339") //nolint:staticcheck // shown verbatim in the form
	}
	return title, strings.TrimSpace(f.inputs[fieldDescription].Value()), due, nil
}

// changes returns a patch holding only the fields that differ from the task
// being edited. An untouched due field keeps the stored time of day.
func (f taskForm) changes(title, description string, due time.Time) models.TaskPatch {
	var patch models.TaskPatch
	if title != f.orig.Title {
		patch.Title = &title
	}
	if description != f.orig.Description {
		patch.Description = &description
	}
	if strings.TrimSpace(f.inputs[fieldDue].Value()) != f.orig.DueDate.UTC().Format(time.DateOnly) {
		patch.DueDate = &due
	}
	return patch
}

// Messages.
type tasksLoadedMsg struct {
	seq   int
	tasks []models.Task
	err   error
}

type statsLoadedMsg struct {
	seq   int
	stats models.TaskStats
	err   error
}

type mutationDoneMsg struct {
	action string
	err    error
}

type dashboardModel struct {
	ctx     context.Context
	backend integration.TaskBackend
	log     zerolog.Logger
	now     func() time.Time

	keys    dashboardKeyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model
	search  textinput.Model
	form    taskForm

	width  int
	height int

	mode      dashboardMode
	filterIdx int
	cursor    int
	// querySeq tags each task query so responses for a superseded filter
	// or search are dropped. statsSeq does the same for stats.
	querySeq int
	statsSeq int
	// deleteTarget is the task chosen when the delete prompt opened.
	deleteTarget models.Task

	tasks        []models.Task
	stats        models.TaskStats
	loading      bool
	statsLoading bool
	busy         bool
	banner       string
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("146"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Padding(0, 2).
			MarginRight(1).
			Width(16)

	cardColors = [4]lipgloss.Color{"205", "39", "214", "196"}

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	taskStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			PaddingLeft(1).
			MarginBottom(1)

	completedTitleStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("245"))
	taskTitleStyle      = lipgloss.NewStyle().Bold(true)
	mutedStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)

	formStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(ctx context.Context, backend integration.TaskBackend, logger zerolog.Logger) dashboardModel {
	search := newInput("Search tasks by title or description...")
	search.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return dashboardModel{
		ctx:          ctx,
		backend:      backend,
		log:          logger.With().Str("component", "dashboard").Logger(),
		now:          time.Now,
		keys:         newDashboardKeyMap(),
		help:         help.New(),
		spinner:      sp,
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		search:       search,
		loading:      true,
		statsLoading: true,
	}
}

func (m dashboardModel) category() models.Category {
	return models.Categories[m.filterIdx]
}

func (m dashboardModel) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return models.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		fetchTasks(m.ctx, m.backend, m.category(), m.search.Value(), m.querySeq),
		fetchStats(m.ctx, m.backend, m.statsSeq),
		m.spinner.Tick,
	)
}

func fetchTasks(ctx context.Context, backend integration.TaskBackend, category models.Category, search string, seq int) tea.Cmd {
	return func() tea.Msg {
		tasks, err := backend.QueryTasks(ctx, category, search)
		return tasksLoadedMsg{seq: seq, tasks: tasks, err: err}
	}
}

func fetchStats(ctx context.Context, backend integration.TaskBackend, seq int) tea.Cmd {
	return func() tea.Msg {
		stats, err := backend.Stats(ctx)
		return statsLoadedMsg{seq: seq, stats: stats, err: err}
	}
}

func (m *dashboardModel) reloadTasks() tea.Cmd {
	m.querySeq++
	m.loading = true
	m.banner = ""
	return fetchTasks(m.ctx, m.backend, m.category(), m.search.Value(), m.querySeq)
}

func (m *dashboardModel) reloadStats() tea.Cmd {
	m.statsSeq++
	m.statsLoading = true
	return fetchStats(m.ctx, m.backend, m.statsSeq)
}

func (m *dashboardModel) mutate(action string, op func(ctx context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return mutationDoneMsg{action: action, err: op(ctx)}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		if msg.seq != m.querySeq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("loading tasks")
			m.banner = "Failed to load tasks. Please try again."
			return m, nil
		}
		m.tasks = msg.tasks
		m.cursor = min(m.cursor, max(len(m.tasks)-1, 0))
		return m, nil

	case statsLoadedMsg:
		if msg.seq != m.statsSeq {
			return m, nil
		}
		m.statsLoading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("loading stats")
			return m, nil
		}
		m.stats = msg.stats
		return m, nil

	case mutationDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("action", msg.action).Msg("dashboard action failed")
			m.banner = "Failed to " + msg.action + ". Please try again."
			return m, m.reloadStats()
		}
		return m, tea.Batch(m.reloadTasks(), m.reloadStats())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	// Forward everything else (cursor blinks) to the focused input.
	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeForm:
		m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	}
	return m, cmd
}

func (m dashboardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextFilter):
		m.filterIdx = (m.filterIdx + 1) % len(models.Categories)
		m.cursor = 0
		return m, m.reloadTasks()

	case key.Matches(msg, m.keys.PrevFilter):
		m.filterIdx = (m.filterIdx - 1 + len(models.Categories)) % len(models.Categories)
		m.cursor = 0
		return m, m.reloadTasks()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		task, ok := m.selected()
		if !ok || task.Status == models.StatusCompleted || m.busy {
			return m, nil
		}
		backend := m.backend
		return m, m.mutate("complete task", func(ctx context.Context) error {
			_, err := backend.CompleteTask(ctx, task.ID)
			return err
		})

	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok && !m.busy {
			m.deleteTarget = task
			m.mode = modeConfirmDelete
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.form = newTaskForm(nil)
		m.mode = modeForm
		return m, m.form.focusField(fieldTitle)

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.form = newTaskForm(&task)
		m.mode = modeForm
		return m, m.form.focusField(fieldTitle)

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.reloadTasks(), m.reloadStats())

	case msg.Type == tea.KeyEsc:
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.cursor = 0
			return m, m.reloadTasks()
		}
	}
	return m, nil
}

func (m dashboardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeBrowse
		m.cursor = 0
		return m, m.reloadTasks()
	case tea.KeyEnter:
		m.search.Blur()
		m.mode = modeBrowse
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	m.cursor = 0
	return m, tea.Batch(cmd, m.reloadTasks())
}

func (m dashboardModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	id := m.deleteTarget.ID
	m.deleteTarget = models.Task{}
	switch msg.String() {
	case "y", "Y", "enter":
		backend := m.backend
		return m, m.mutate("delete task", func(ctx context.Context) error {
			return backend.DeleteTask(ctx, id)
		})
	}
	return m, nil
}

func (m dashboardModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil
	case "tab", "down":
		return m, m.form.focusField(m.form.focus + 1)
	case "shift+tab", "up":
		return m, m.form.focusField(m.form.focus - 1)
	case "enter":
		if m.form.focus < fieldCount-1 {
			return m, m.form.focusField(m.form.focus + 1)
		}
		return m.submitForm()
	case "ctrl+s":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m dashboardModel) submitForm() (tea.Model, tea.Cmd) {
	title, description, due, err := m.form.values()
	if err != nil {
		m.form.err = err.Error()
		return m, nil
	}

	m.mode = modeBrowse
	backend := m.backend

	if m.form.editID == "" {
		draft := models.TaskDraft{Title: title, Description: description, DueDate: due}
		return m, m.mutate("add task", func(ctx context.Context) error {
			_, err := backend.AddTask(ctx, draft)
			return err
		})
	}

	id := m.form.editID
	patch := m.form.changes(title, description, due)
	if patch.IsEmpty() {
		return m, nil
	}
	return m, m.mutate("update task", func(ctx context.Context) error {
		_, err := backend.UpdateTask(ctx, id, patch)
		return err
	})
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{
		titleStyle.Render(" Task Management Dashboard "),
		subtitleStyle.Render("Stay organized and boost your productivity"),
		"",
		m.renderStatCards(),
		"",
		m.renderProgress(),
		"",
		m.renderFilters(),
		m.search.View(),
		"",
	}

	if m.banner != "" {
		sections = append(sections, bannerStyle.Render(m.banner), "")
	}

	if m.mode == modeForm {
		sections = append(sections, m.renderForm())
	} else {
		sections = append(sections, m.renderTasks())
	}

	if m.mode == modeConfirmDelete {
		sections = append(sections, badgeOverdue.Render(fmt.Sprintf("Delete %q? (y/n)", m.deleteTarget.Title)))
	}

	if m.busy {
		sections = append(sections, m.spinner.View()+" Saving...")
	}

	sections = append(sections, m.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m dashboardModel) renderStatCards() string {
	stats := m.stats
	if m.statsLoading {
		stats = models.TaskStats{}
	}
	cards := []struct {
		label string
		value int
	}{
		{"Total Tasks", stats.Total},
		{"Completed", stats.Completed},
		{"Pending", stats.Pending},
		{"Overdue", stats.Overdue},
	}

	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = cardStyle.Background(cardColors[i]).Render(fmt.Sprintf("%s\n%d", c.label, c.value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m dashboardModel) renderProgress() string {
	pct := m.stats.Progress
	if m.statsLoading {
		pct = 0
	}
	return fmt.Sprintf("Overall Progress (%d%%)\n%s", pct, m.bar.ViewAs(float64(pct)/100))
}

func (m dashboardModel) renderFilters() string {
	tabs := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		style := tabStyle
		if i == m.filterIdx {
			style = activeTabStyle
		}
		tabs[i] = style.Render(c.Label())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m dashboardModel) renderTasks() string {
	if m.loading {
		return m.spinner.View() + " Loading tasks..."
	}
	if len(m.tasks) == 0 {
		return mutedStyle.Render("No tasks found. Create a new task to get started!")
	}

	// Each task takes four lines; keep the cursor in view.
	visible := len(m.tasks)
	if m.height > 0 {
		visible = max((m.height-22)/4, 1)
	}
	start := max(m.cursor-visible+1, 0)
	end := min(start+visible, len(m.tasks))

	now := m.now()
	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderTask(m.tasks[i], i == m.cursor, now))
		b.WriteString("\n")
	}
	if end-start < len(m.tasks) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(m.tasks))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderTask(t models.Task, selected bool, now time.Time) string {
	badge := t.Badge(now)
	style := styleForBadge(badge)

	title := taskTitleStyle.Render(t.Title)
	if t.Status == models.StatusCompleted {
		title = completedTitleStyle.Render(t.Title)
	}
	marker := "  "
	if selected {
		marker = cursorStyle.Render("› ")
	}

	body := fmt.Sprintf("%s%s  %s\n  %s\n  %s",
		marker, title, style.Render(badge),
		mutedStyle.Render(t.Description),
		mutedStyle.Render(t.DueLabel()),
	)
	return taskStyle.BorderForeground(style.GetForeground()).Render(body)
}

func (m dashboardModel) renderForm() string {
	heading := "Add New Task"
	if m.form.editID != "" {
		heading = "Edit Task"
	}
	labels := [fieldCount]string{"Title", "Description", "Due Date"}

	var b strings.Builder
	b.WriteString(taskTitleStyle.Render(heading))
	b.WriteString("\n\n")
	for i := range m.form.inputs {
		b.WriteString(labels[i])
		b.WriteString("\n")
		b.WriteString(m.form.inputs[i].View())
		b.WriteString("\n\n")
	}
	if m.form.err != "" {
		b.WriteString(badgeOverdue.Render(m.form.err))
		b.WriteString("\n")
	}
	return formStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m dashboardModel) renderHelp() string {
	switch m.mode {
	case modeForm:
		return helpStyle.Render("tab: next field • enter: next/save • ctrl+s: save • esc: cancel")
	case modeSearch:
		return helpStyle.Render("type to filter • enter: done • esc: clear")
	case modeConfirmDelete:
		return helpStyle.Render("y: delete • n: cancel")
	}
	return m.help.View(m.keys)
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI task dashboard",
	Long: `Launch an interactive terminal dashboard with statistics, overall
progress, filter tabs, search and the task list.

Keys: tab/shift+tab switch filter, / search, j/k move, c complete, d delete,
a add, e edit, r refresh, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBackend(); err != nil {
			return err
		}

		logger := Logger
		if LogToStderr {
			logger = zerolog.Nop()
		}
		p := tea.NewProgram(newDashboardModel(commandContext(cmd), Backend, logger), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
