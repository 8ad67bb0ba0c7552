package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"habitui/internal/model"
)

const (
	categoryPaneWidth = 16
	minTaskPaneWidth  = 30
)

// View renders the session
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}

	switch m.state {
	case stateAwaitingEdit:
		return m.viewEditModal()
	case stateAwaitingConfirmDelete:
		return m.viewConfirmDelete()
	case stateAwaitingImportPath:
		return m.viewImportPrompt()
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("habitui"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.viewCategories(), m.viewTasks(), m.viewDetail()))
	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m Model) viewCategories() string {
	var b strings.Builder
	b.WriteString(PaneTitleStyle.Render("Categories"))
	b.WriteString("\n")
	for i, c := range categories {
		line := " " + c.label + " "
		if i == m.catIdx {
			line = SelectedItemStyle.Render(line)
		} else {
			line = ItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	style := PaneStyle
	if m.focus == paneCategories {
		style = PaneFocusedStyle
	}
	return style.Width(categoryPaneWidth).Render(b.String())
}

func (m Model) viewTasks() string {
	var b strings.Builder
	title := categories[m.catIdx].label
	if m.loading {
		title += " " + StatusBusyStyle.Render("(loading…)")
	}
	b.WriteString(PaneTitleStyle.Render(title))
	b.WriteString("\n")
	if len(m.tasks) == 0 && !m.loading {
		b.WriteString(ItemStyle.Render(" no tasks "))
		b.WriteString("\n")
	}
	for i, t := range m.tasks {
		line := " " + t.Text + " "
		if i == m.taskIdx && m.focus == paneTasks {
			line = SelectedItemStyle.Render(line)
		} else {
			line = ItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	width := m.width - categoryPaneWidth*2 - 8
	if width < minTaskPaneWidth {
		width = minTaskPaneWidth
	}
	style := PaneStyle
	if m.focus == paneTasks {
		style = PaneFocusedStyle
	}
	return style.Width(width).Render(b.String())
}

func (m Model) viewDetail() string {
	var b strings.Builder
	b.WriteString(PaneTitleStyle.Render("Detail"))
	b.WriteString("\n")
	if task, ok := m.selectedTask(); ok {
		b.WriteString(DetailLabelStyle.Render("type     ") + task.Type + "\n")
		b.WriteString(DetailLabelStyle.Render("priority ") + model.PriorityLabel(task.Priority) + "\n")
		value := fmt.Sprintf("%.1f", task.Value)
		b.WriteString(DetailLabelStyle.Render("value    ") +
			lipgloss.NewStyle().Foreground(valueColor(task.Value)).Render(value) + "\n")
		if task.Notes != "" {
			b.WriteString(DetailLabelStyle.Render("notes    ") + task.Notes + "\n")
		}
		b.WriteString(DetailLabelStyle.Render("id       ") + task.ID + "\n")
	}
	return PaneStyle.Width(categoryPaneWidth + 14).Render(b.String())
}

func (m Model) viewStatusBar() string {
	var parts []string
	if m.busy {
		parts = append(parts, StatusBusyStyle.Render("working…"))
	}
	if m.status != "" {
		s := m.status
		if m.statusErr {
			s = ErrorStyle.Render(s)
		} else {
			s = SuccessStyle.Render(s)
		}
		parts = append(parts, s)
	}
	var help []string
	for _, b := range m.keys.ShortHelp() {
		help = append(help, b.Help().Key+": "+b.Help().Desc)
	}
	parts = append(parts, strings.Join(help, " • "))
	return StatusBarStyle.Render(strings.Join(parts, "  "))
}

func (m Model) viewEditModal() string {
	labels := [editFieldCount]string{"Text", "Notes", "Priority"}
	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render("Edit task"))
	b.WriteString("\n\n")
	for i := range m.editInputs {
		label := labels[i]
		if i == m.editField {
			label = InputPromptStyle.Render(label)
		} else {
			label = DetailLabelStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n\n", label, m.editInputs[i].View()))
	}
	b.WriteString(StatusBarStyle.Render("tab: next field • enter: save • esc: cancel"))
	return ModalStyle.Render(b.String())
}

func (m Model) viewConfirmDelete() string {
	task, _ := m.selectedTask()
	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render("Delete task"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Delete %q?\n\n", task.Text))
	b.WriteString(StatusBarStyle.Render("y/enter: delete • any other key: cancel"))
	return ModalStyle.Render(b.String())
}

func (m Model) viewImportPrompt() string {
	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render("Import tasks"))
	b.WriteString("\n\n")
	b.WriteString("Path to a CSV, YAML, or Markdown file:\n\n")
	b.WriteString(m.importInput.View())
	b.WriteString("\n\n")
	b.WriteString(StatusBarStyle.Render("enter: import • esc: cancel"))
	return ModalStyle.Render(b.String())
}
