package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/unicode/norm"

	"github.com/Nomadcxx/namesink/internal/batch"
	"github.com/Nomadcxx/namesink/internal/store"
)

// batchDoneMsg carries the result of Coordinator.Run back to Update
type batchDoneMsg struct {
	result *batch.Result
}

// EditorMode is the current screen of the editor
type EditorMode int

const (
	ModeList EditorMode = iota
	ModeEdit
	ModeConfirm
	ModeExecuting
)

type editorKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Edit     key.Binding
	Remove   key.Binding
	Rename   key.Binding
	Clear    key.Binding
	Quit     key.Binding
}

func defaultEditorKeys() editorKeyMap {
	return editorKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:   key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("J", "move down")),
		Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Rename:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear all")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// EditorModel is the rename list editor.
// The edit buffer lives here, so the store only ever sees committed names.
type EditorModel struct {
	store  *store.Store
	coord  *batch.Coordinator
	toasts *ToastLog

	keys  editorKeyMap
	help  help.Model
	input textinput.Model

	mode      EditorMode
	cursor    int
	editingID string
	status    string
	width     int
	height    int

	cancelRun context.CancelFunc
	quitting  bool
}

// NewEditorModel creates the editor. toasts should be the sink given to s and c.
func NewEditorModel(s *store.Store, c *batch.Coordinator, toasts *ToastLog) EditorModel {
	ti := textinput.New()
	ti.Placeholder = "new file name"
	ti.CharLimit = 512
	ti.Width = 60

	if toasts == nil {
		toasts = NewToastLog(3)
	}

	return EditorModel{
		store:  s,
		coord:  c,
		toasts: toasts,
		keys:   defaultEditorKeys(),
		help:   help.New(),
		input:  ti,
		mode:   ModeList,
		width:  80,
		height: 24,
	}
}

// Init initializes the editor
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// Mode returns the current screen
func (m EditorModel) Mode() EditorMode { return m.mode }

// Cursor returns the selected row
func (m EditorModel) Cursor() int { return m.cursor }

// Status returns the last refusal or error message
func (m EditorModel) Status() string { return m.status }

// Quitting reports whether the user asked to leave
func (m EditorModel) Quitting() bool { return m.quitting }

// Update handles messages
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case batchDoneMsg:
		return m.finishBatch(msg.result), nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeEdit:
			return m.updateEdit(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		case ModeExecuting:
			// In-flight renames finish, no new ones start
			if msg.String() == "ctrl+c" && m.cancelRun != nil {
				m.cancelRun()
				m.status = "Cancelling..."
			}
			return m, nil
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m EditorModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.store.Snapshot().Items

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 && m.cursor < len(items) {
			m.store.Reorder(items[m.cursor].ID, items[m.cursor-1].ID)
			m.cursor--
		}

	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < len(items)-1 {
			m.store.Reorder(items[m.cursor].ID, items[m.cursor+1].ID)
			m.cursor++
		}

	case key.Matches(msg, m.keys.Edit):
		if m.cursor < len(items) {
			it := items[m.cursor]
			m.editingID = it.ID
			m.input.SetValue(it.Candidate)
			m.input.CursorEnd()
			m.mode = ModeEdit
			m.status = ""
			cmd := m.input.Focus()
			return m, cmd
		}

	case key.Matches(msg, m.keys.Remove):
		if m.cursor < len(items) {
			m.store.Remove(items[m.cursor].ID)
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Clear):
		if len(items) > 0 {
			m.store.Clear()
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Rename):
		if err := m.coord.RequestRename(); err != nil {
			m.status = refusalReason(err)
			return m, nil
		}
		m.status = ""
		m.mode = ModeConfirm
	}

	return m, nil
}

func (m EditorModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		return m, nil

	case "enter":
		// Composed and decomposed spellings must produce the same candidate
		value := norm.NFC.String(m.input.Value())
		m.store.Rename(m.editingID, value)
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *EditorModel) stopEditing() {
	m.mode = ModeList
	m.editingID = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m EditorModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		items, err := m.coord.Begin()
		if err != nil {
			m.status = refusalReason(err)
			m.mode = ModeList
			return m, nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		m.cancelRun = cancel
		m.mode = ModeExecuting
		m.status = ""
		coord := m.coord
		return m, func() tea.Msg {
			return batchDoneMsg{result: coord.Run(ctx, items)}
		}

	case "n", "N", "esc":
		if err := m.coord.Cancel(); err != nil {
			m.status = err.Error()
		}
		m.mode = ModeList
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m EditorModel) finishBatch(result *batch.Result) EditorModel {
	if m.cancelRun != nil {
		m.cancelRun()
		m.cancelRun = nil
	}

	if err := m.coord.Finish(result); err != nil {
		m.status = err.Error()
	}

	// Failed batches return to the confirm screen so the failed subset can be retried
	if m.coord.State() == batch.Confirming {
		m.mode = ModeConfirm
	} else {
		m.mode = ModeList
	}
	m.clampCursor()
	return m
}

func (m *EditorModel) clampCursor() {
	n := m.store.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func refusalReason(err error) string {
	switch {
	case errors.Is(err, batch.ErrValidationErrors):
		return "Fix invalid file names before renaming"
	case errors.Is(err, batch.ErrNothingToRename):
		return "No changes detected: none of the files have been modified"
	default:
		return err.Error()
	}
}

// RenameLabel is the label of the rename action for n modified files
func RenameLabel(n int) string {
	if n > 0 {
		return fmt.Sprintf("Rename (%d)", n)
	}
	return "Rename All"
}

// View renders the editor
func (m EditorModel) View() string {
	if m.quitting {
		return ""
	}

	var header, body, footer string

	switch m.mode {
	case ModeConfirm:
		header = FormatHeader("CONFIRM BATCH RENAME", m.width)
		body = m.renderConfirm()
		footer = FormatFooter(m.width,
			FormatKeybinding("y", fmt.Sprintf("Rename %d Files", m.store.ModifiedCount())),
			FormatKeybinding("n/Esc", "Cancel"),
		)

	case ModeExecuting:
		header = FormatHeader("RENAMING...", m.width)
		body = m.renderList()
		footer = FormatFooter(m.width,
			FormatKeybinding("Ctrl+C", "Stop after current files"),
			MutedStyle.Render("Please wait..."),
		)

	case ModeEdit:
		header = FormatHeader("FILE RENAME LIST", m.width)
		body = m.renderList()
		footer = FormatFooter(m.width,
			FormatKeybinding("Enter", "Commit"),
			FormatKeybinding("Esc", "Discard"),
		)

	default:
		header = FormatHeader("FILE RENAME LIST", m.width)
		body = m.renderList()
		footer = FormatFooter(m.width,
			m.help.ShortHelpView([]key.Binding{
				m.keys.Up, m.keys.Down, m.keys.MoveUp, m.keys.MoveDown,
				m.keys.Edit, m.keys.Remove, m.keys.Clear, m.keys.Quit,
			}),
			FormatKeybinding("r", RenameLabel(m.store.ModifiedCount())),
		)
	}

	parts := []string{header, body}
	if m.status != "" {
		parts = append(parts, WarningStyle.Render(m.status))
	}
	if toasts := m.toasts.Render(); toasts != "" {
		parts = append(parts, strings.TrimRight(toasts, "\n"))
	}
	parts = append(parts, footer)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m EditorModel) renderStats() string {
	return fmt.Sprintf("%s files • %s modified • %s valid",
		StatStyle.Render(fmt.Sprint(m.store.Len())),
		StatStyle.Render(fmt.Sprint(m.store.ModifiedCount())),
		StatStyle.Render(fmt.Sprint(m.store.ValidCount())),
	)
}

func (m EditorModel) renderList() string {
	items := m.store.Snapshot().Items

	var sb strings.Builder
	sb.WriteString(m.renderStats() + "\n\n")

	if len(items) == 0 {
		sb.WriteString(MutedStyle.Render("No files in the list. Run namesink edit <files...> to add some.") + "\n")
		return sb.String()
	}

	// Rows visible between header, stats, toasts and footer
	visible := m.height - 10
	if visible < 3 {
		visible = 3
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(items) {
		end = len(items)
	}

	for i := start; i < end; i++ {
		sb.WriteString(m.renderRow(i, items[i]))
		sb.WriteString("\n")
	}

	if end < len(items) {
		sb.WriteString(MutedStyle.Render(fmt.Sprintf("  … %d more", len(items)-end)) + "\n")
	}

	sb.WriteString("\n" + MutedStyle.Render(`Tips: file extensions are preserved automatically. Avoid < > : " / \ | ? *. Max 255 characters.`))
	return sb.String()
}

func (m EditorModel) renderRow(i int, it store.Item) string {
	marker := "  "
	if i == m.cursor {
		marker = HighlightStyle.Render(">") + " "
	}

	if m.mode == ModeEdit && it.ID == m.editingID {
		return fmt.Sprintf("%s%3d. %s → %s", marker, i+1, it.Source.Name, m.input.View())
	}

	candidate := ContentStyle.Render(it.Candidate)
	if it.Modified() {
		candidate = ModifiedStyle.Render(it.Candidate)
	}

	row := fmt.Sprintf("%s%3d. %s → %s", marker, i+1, MutedStyle.Render(it.Source.Name), candidate)

	if v := it.Validation(); !v.Valid {
		row += "  " + FormatStatusFail(v.Error)
	}
	return row
}

func (m EditorModel) renderConfirm() string {
	var sb strings.Builder

	modified := m.store.ModifiedCount()
	sb.WriteString(TitleStyle.Render("Ready to rename") + "\n")
	sb.WriteString(fmt.Sprintf("%d out of %d files will be renamed\n\n", modified, m.store.Len()))

	for _, it := range m.coord.Plan() {
		sb.WriteString(fmt.Sprintf("  %s → %s\n", MutedStyle.Render(it.Source.Name), ModifiedStyle.Render(it.Candidate)))
	}

	if last := m.coord.LastResult(); last != nil && !last.OK() {
		sb.WriteString("\n" + ErrorStyle.Render("Previous attempt failed:") + "\n")
		for _, f := range last.Failures() {
			reason := f.Outcome.String()
			if f.Err != nil {
				reason = f.Err.Error()
			}
			sb.WriteString("  " + FormatStatusFail(fmt.Sprintf("%s: %s", f.Source.Name, reason)) + "\n")
		}
		sb.WriteString(MutedStyle.Render("Confirm to retry the failed files, or cancel to keep editing.") + "\n")
	}

	sb.WriteString("\n" + WarningStyle.Render("Please make sure the new filenames are correct.") + "\n")
	return BorderStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
