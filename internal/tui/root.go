package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"habitui/internal/habitica"
	"habitui/internal/importer"
	"habitui/internal/model"
	"habitui/internal/parse"
)

// API is the remote surface the interactive session uses.
// *habitica.Client satisfies it; tests substitute fakes.
type API interface {
	UserTasks(ctx context.Context, taskType string) ([]habitica.Task, error)
	CreateTask(ctx context.Context, create habitica.TaskCreate) (habitica.Task, error)
	UpdateTask(ctx context.Context, taskID string, update habitica.TaskUpdate) (habitica.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	ScoreTask(ctx context.Context, taskID string, dir habitica.Direction) error
}

// sessionState tracks what input the session is waiting for.
// stateBrowsing is initial and terminal; every other state returns to
// it.
type sessionState int

const (
	stateBrowsing sessionState = iota
	stateAwaitingEdit
	stateAwaitingConfirmDelete
	stateAwaitingImportPath
)

// pane is the focused column
type pane int

const (
	paneCategories pane = iota
	paneTasks
)

// category is one entry in the left column. Rewards are browse and
// score only; the importer never creates them.
type category struct {
	label   string
	apiType string
}

var categories = []category{
	{"Habits", "habits"},
	{"Dailies", "dailys"},
	{"Todos", "todos"},
	{"Rewards", "rewards"},
}

// Fields of the edit form, in tab order
const (
	editFieldText = iota
	editFieldNotes
	editFieldPriority
	editFieldCount
)

// Messages
type tasksLoadedMsg struct {
	tasks []habitica.Task
	err   error
}

type taskScoredMsg struct {
	text string
	dir  habitica.Direction
	err  error
}

type taskUpdatedMsg struct {
	text string
	err  error
}

type taskDeletedMsg struct {
	text string
	err  error
}

type importDoneMsg struct {
	report importer.Report
	err    error
}

// Model is the root Bubble Tea model for the interactive session
type Model struct {
	api    API
	policy importer.BackoffPolicy
	sleep  importer.SleepFunc

	width  int
	height int
	ready  bool

	state sessionState
	focus pane

	catIdx  int
	tasks   []habitica.Task
	taskIdx int

	// At most one remote call in flight; action keys are disabled
	// while busy so a slow call cannot be double-submitted.
	busy      bool
	loading   bool
	status    string
	statusErr bool

	editInputs [editFieldCount]textinput.Model
	editField  int

	importInput textinput.Model

	keys KeyMap
}

// NewModel creates the session model talking to api
func NewModel(api API, policy importer.BackoffPolicy) Model {
	var inputs [editFieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 0
		ti.Width = 50
		inputs[i] = ti
	}
	inputs[editFieldText].Placeholder = "task text"
	inputs[editFieldNotes].Placeholder = "notes"
	inputs[editFieldPriority].Placeholder = "0.1 | 1 | 1.5 | 2"

	importInput := textinput.New()
	importInput.Placeholder = "tasks.csv | tasks.yaml | tasks.md"
	importInput.Prompt = "❯ "
	importInput.PromptStyle = InputPromptStyle
	importInput.Width = 50

	return Model{
		api:         api,
		policy:      policy,
		state:       stateBrowsing,
		focus:       paneCategories,
		editInputs:  inputs,
		importInput: importInput,
		keys:        DefaultKeyMap(),
	}
}

// Init loads the initial task list
func (m Model) Init() tea.Cmd {
	return m.loadTasksCmd()
}

// selectedTask returns the highlighted task, if any
func (m Model) selectedTask() (habitica.Task, bool) {
	if m.taskIdx < 0 || m.taskIdx >= len(m.tasks) {
		return habitica.Task{}, false
	}
	return m.tasks[m.taskIdx], true
}

func (m Model) loadTasksCmd() tea.Cmd {
	api, policy, sleep := m.api, m.policy, m.sleep
	apiType := categories[m.catIdx].apiType
	return func() tea.Msg {
		var tasks []habitica.Task
		err := importer.Retry(context.Background(), policy, sleep, func() error {
			var listErr error
			tasks, listErr = api.UserTasks(context.Background(), apiType)
			return listErr
		})
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m Model) scoreTaskCmd(task habitica.Task, dir habitica.Direction) tea.Cmd {
	api, policy, sleep := m.api, m.policy, m.sleep
	return func() tea.Msg {
		err := importer.Retry(context.Background(), policy, sleep, func() error {
			return api.ScoreTask(context.Background(), task.ID, dir)
		})
		return taskScoredMsg{text: task.Text, dir: dir, err: err}
	}
}

func (m Model) deleteTaskCmd(task habitica.Task) tea.Cmd {
	api, policy, sleep := m.api, m.policy, m.sleep
	return func() tea.Msg {
		err := importer.Retry(context.Background(), policy, sleep, func() error {
			return api.DeleteTask(context.Background(), task.ID)
		})
		return taskDeletedMsg{text: task.Text, err: err}
	}
}

func (m Model) updateTaskCmd(task habitica.Task, update habitica.TaskUpdate) tea.Cmd {
	api, policy, sleep := m.api, m.policy, m.sleep
	return func() tea.Msg {
		err := importer.Retry(context.Background(), policy, sleep, func() error {
			_, callErr := api.UpdateTask(context.Background(), task.ID, update)
			return callErr
		})
		return taskUpdatedMsg{text: task.Text, err: err}
	}
}

func (m Model) importFileCmd(path string) tea.Cmd {
	api, policy := m.api, m.policy
	return func() tea.Msg {
		records, err := parse.File(path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		report, err := importer.NewRunner(api, policy).Run(context.Background(), records)
		return importDoneMsg{report: report, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("refresh failed: %v", msg.err), true)
			return m, nil
		}
		m.tasks = msg.tasks
		if m.taskIdx >= len(m.tasks) {
			m.taskIdx = len(m.tasks) - 1
		}
		if m.taskIdx < 0 {
			m.taskIdx = 0
		}
		return m, nil

	case taskScoredMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("score failed: %v", msg.err), true)
			return m, nil
		}
		sign := "+"
		if msg.dir == habitica.ScoreDown {
			sign = "-"
		}
		m.setStatus(fmt.Sprintf("Scored %s: %s", sign, msg.text), false)
		return m.refresh()

	case taskDeletedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("delete failed: %v", msg.err), true)
			return m, nil
		}
		m.setStatus("Deleted: "+msg.text, false)
		return m.refresh()

	case taskUpdatedMsg:
		m.busy = false
		if msg.err != nil {
			// Remote state is untouched on failure; stay on the
			// local list as it was.
			m.setStatus(fmt.Sprintf("update failed: %v", msg.err), true)
			return m, nil
		}
		m.setStatus("Updated: "+msg.text, false)
		return m.refresh()

	case importDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("import failed: %v", msg.err), true)
			return m, nil
		}
		r := msg.report
		m.setStatus(fmt.Sprintf("Imported: %d created, %d skipped, %d invalid, %d failed",
			r.Created, r.Skipped, r.Invalid, r.Failed), !r.Ok())
		return m.refresh()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// refresh reloads the current category
func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.loadTasksCmd()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateAwaitingEdit:
		return m.handleEditKey(msg)
	case stateAwaitingConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	case stateAwaitingImportPath:
		return m.handleImportKey(msg)
	}
	return m.handleBrowsingKey(msg)
}

func (m Model) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.focus == paneCategories {
			if m.catIdx > 0 {
				m.catIdx--
				return m.refresh()
			}
		} else if m.taskIdx > 0 {
			m.taskIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.focus == paneCategories {
			if m.catIdx < len(categories)-1 {
				m.catIdx++
				return m.refresh()
			}
		} else if m.taskIdx < len(m.tasks)-1 {
			m.taskIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.focus = paneCategories
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if len(m.tasks) > 0 {
			m.focus = paneTasks
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPane):
		if m.focus == paneCategories && len(m.tasks) > 0 {
			m.focus = paneTasks
		} else {
			m.focus = paneCategories
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.busy {
			return m, nil
		}
		return m.refresh()

	case key.Matches(msg, m.keys.ScoreUp), key.Matches(msg, m.keys.ScoreDown):
		if m.busy {
			return m, nil
		}
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		dir := habitica.ScoreUp
		if key.Matches(msg, m.keys.ScoreDown) {
			dir = habitica.ScoreDown
		}
		m.busy = true
		return m, m.scoreTaskCmd(task, dir)

	case key.Matches(msg, m.keys.Edit):
		if m.busy {
			return m, nil
		}
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.state = stateAwaitingEdit
		m.editField = editFieldText
		m.editInputs[editFieldText].SetValue(task.Text)
		m.editInputs[editFieldNotes].SetValue(task.Notes)
		m.editInputs[editFieldPriority].SetValue(strconv.FormatFloat(task.Priority, 'g', -1, 64))
		m.focusEditField()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		if m.busy {
			return m, nil
		}
		if _, ok := m.selectedTask(); !ok {
			return m, nil
		}
		m.state = stateAwaitingConfirmDelete
		return m, nil

	case key.Matches(msg, m.keys.Import):
		if m.busy {
			return m, nil
		}
		m.state = stateAwaitingImportPath
		m.importInput.SetValue("")
		m.importInput.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m *Model) focusEditField() {
	for i := range m.editInputs {
		if i == m.editField {
			m.editInputs[i].Focus()
		} else {
			m.editInputs[i].Blur()
		}
	}
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = stateBrowsing
		return m, nil

	case tea.KeyTab, tea.KeyDown:
		m.editField = (m.editField + 1) % editFieldCount
		m.focusEditField()
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		m.editField = (m.editField + editFieldCount - 1) % editFieldCount
		m.focusEditField()
		return m, nil

	case tea.KeyEnter:
		task, ok := m.selectedTask()
		if !ok {
			m.state = stateBrowsing
			return m, nil
		}
		text := m.editInputs[editFieldText].Value()
		notes := m.editInputs[editFieldNotes].Value()
		priority := model.ParsePriority(m.editInputs[editFieldPriority].Value())
		m.state = stateBrowsing
		m.busy = true
		return m, m.updateTaskCmd(task, habitica.TaskUpdate{
			Text:     &text,
			Notes:    &notes,
			Priority: &priority,
		})

	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editInputs[m.editField], cmd = m.editInputs[m.editField].Update(msg)
	return m, cmd
}

func (m Model) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.state = stateBrowsing
	if msg.Type == tea.KeyEnter || msg.String() == "y" {
		task, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.deleteTaskCmd(task)
	}
	m.setStatus("Delete cancelled", false)
	return m, nil
}

func (m Model) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = stateBrowsing
		m.importInput.Blur()
		return m, nil

	case tea.KeyEnter:
		path := m.importInput.Value()
		m.state = stateBrowsing
		m.importInput.Blur()
		if path == "" {
			return m, nil
		}
		m.busy = true
		m.setStatus("Importing "+path+"…", false)
		return m, m.importFileCmd(path)

	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}
