// Package tui is the interactive terminal front end of the report wizard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reportdesk/internal/common/errors"
	apihttp "reportdesk/internal/common/http"
	"reportdesk/internal/features/wizard"
	"reportdesk/internal/models"
)

type generatedMsg struct {
	outcome *wizard.Outcome
	err     error
}

type uploadedMsg struct {
	files []models.FileUpload
	err   error
}

// WizardModel drives a started wizard.Wizard from the keyboard. Choice steps
// are pickers, the data step is a column of text inputs with file attachments
// and the review step generates the report.
type WizardModel struct {
	ctx context.Context
	wiz *wizard.Wizard

	// part selects the picker on steps that ask two questions.
	part   int
	cursor int

	custom textinput.Model
	inputs []textinput.Model
	fields []models.InputField
	focus  int

	attach     textinput.Model
	attaching  bool
	fileCursor int

	spin       spinner.Model
	generating bool
	uploading  bool
	status     string

	outcome   *wizard.Outcome
	cancelled bool
	width     int
}

// NewWizardModel expects wiz to have been started for a tool.
func NewWizardModel(ctx context.Context, wiz *wizard.Wizard) WizardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	custom := textinput.New()
	custom.Placeholder = "Report type"
	custom.CharLimit = 120

	attach := textinput.New()
	attach.Prompt = "File: "
	attach.Placeholder = "path/to/data.csv, more paths separated by commas"
	attach.CharLimit = 1000

	m := WizardModel{
		ctx:    ctx,
		wiz:    wiz,
		custom: custom,
		attach: attach,
		spin:   s,
		width:  80,
	}
	m.buildInputs()
	m.enterStep()
	return m
}

// Outcome is set once the report was generated.
func (m WizardModel) Outcome() *wizard.Outcome { return m.outcome }

// Cancelled reports whether the user left before generating.
func (m WizardModel) Cancelled() bool { return m.cancelled }

func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width < 40 {
			m.width = 40
		}
		return m, nil

	case generatedMsg:
		m.generating = false
		if msg.err != nil {
			m.status = errors.UserMessage(msg.err)
			return m, nil
		}
		m.outcome = msg.outcome
		return m, tea.Quit

	case uploadedMsg:
		m.uploading = false
		if msg.err != nil {
			m.status = errors.UserMessage(msg.err)
			return m, nil
		}
		m.status = ""
		m.leaveAttach()
		m.fileCursor = len(m.wiz.Draft().Files) - 1
		return m, nil

	case spinner.TickMsg:
		if !m.generating && !m.uploading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// ==========================
// Key handling
// ==========================

func (m WizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.cancelled = true
		return m, tea.Quit
	}
	if m.generating || m.uploading {
		return m, nil
	}
	if key == "esc" {
		if m.attaching {
			m.status = ""
			m.leaveAttach()
			return m, nil
		}
		return m.back()
	}

	switch step := m.wiz.Step(); {
	case step == wizard.StepDataInputs:
		return m.handleInputsKey(msg)
	case step == wizard.StepReview:
		if key == "enter" {
			m.generating = true
			m.status = ""
			return m, tea.Batch(m.spin.Tick, m.generate())
		}
		return m, nil
	case step == wizard.StepReportType && len(m.options()) == 0:
		if key == "enter" {
			return m.choose(strings.TrimSpace(m.custom.Value()))
		}
		var cmd tea.Cmd
		m.custom, cmd = m.custom.Update(msg)
		return m, cmd
	}

	opts := m.options()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(opts)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(opts) > 0 {
			return m.choose(opts[m.cursor])
		}
	}
	return m, nil
}

func (m WizardModel) handleInputsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.attaching {
		return m.handleAttachKey(msg)
	}
	switch msg.String() {
	case "ctrl+o":
		m.attaching = true
		m.inputs[m.focus].Blur()
		m.attach.SetValue("")
		m.attach.Focus()
		return m, textinput.Blink
	case "ctrl+n":
		if n := len(m.wiz.Draft().Files); n > 0 {
			m.fileCursor = (m.fileCursor + 1) % n
		}
		return m, nil
	case "ctrl+x":
		return m.removeFile(), nil
	case "tab", "down":
		return m.focusInput(m.focus + 1), nil
	case "shift+tab", "up":
		return m.focusInput(m.focus - 1), nil
	case "enter":
		if m.focus < len(m.inputs)-1 {
			return m.focusInput(m.focus + 1), nil
		}
		return m.commitInputs()
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m WizardModel) handleAttachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.attach, cmd = m.attach.Update(msg)
		return m, cmd
	}
	paths := splitPaths(m.attach.Value())
	if len(paths) == 0 {
		m.leaveAttach()
		return m, nil
	}
	m.uploading = true
	m.status = ""
	return m, tea.Batch(m.spin.Tick, m.upload(paths))
}

func (m *WizardModel) leaveAttach() {
	m.attaching = false
	m.attach.Blur()
	m.attach.SetValue("")
	if m.focus < len(m.inputs) {
		m.inputs[m.focus].Focus()
	}
}

// removeFile detaches the selected file from the draft.
func (m WizardModel) removeFile() WizardModel {
	files := m.wiz.Draft().Files
	if len(files) == 0 {
		return m
	}
	if m.fileCursor >= len(files) {
		m.fileCursor = len(files) - 1
	}
	m.wiz.RemoveFile(files[m.fileCursor].ID)
	if m.fileCursor > 0 && m.fileCursor >= len(files)-1 {
		m.fileCursor--
	}
	m.status = ""
	return m
}

func splitPaths(value string) []string {
	var paths []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (m WizardModel) focusInput(i int) WizardModel {
	if i < 0 || i >= len(m.inputs) {
		return m
	}
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
	return m
}

// commitInputs stores every answer and the notes, then advances.
func (m WizardModel) commitInputs() (tea.Model, tea.Cmd) {
	for i, f := range m.fields {
		if err := m.wiz.SetAnswer(f.ID, strings.TrimSpace(m.inputs[i].Value())); err != nil {
			m.status = errors.UserMessage(err)
			return m, nil
		}
	}
	m.wiz.SetNotes(strings.TrimSpace(m.inputs[len(m.inputs)-1].Value()))
	return m.next()
}

// choose records value for the active picker. Re-choosing the drafted value
// only advances, which keeps a tool industry that is not in the catalog.
func (m WizardModel) choose(value string) (tea.Model, tea.Cmd) {
	var err error
	switch m.wiz.Step() {
	case wizard.StepIndustry:
		if value != m.current() {
			err = m.wiz.SetIndustry(value)
		}
	case wizard.StepReportType:
		err = m.wiz.SetReportType(value)
	case wizard.StepAudiencePurpose:
		if m.part == 0 {
			err = m.wiz.SetAudience(value)
		} else {
			err = m.wiz.SetPurpose(value)
		}
	case wizard.StepToneDepth:
		if m.part == 0 {
			err = m.wiz.SetTone(value)
		} else {
			err = m.wiz.SetDepth(value)
		}
	}
	if err != nil {
		m.status = errors.UserMessage(err)
		return m, nil
	}
	m.status = ""

	if m.part < partsOf(m.wiz.Step())-1 {
		m.part++
		m.cursor = cursorAt(m.options(), m.current())
		return m, nil
	}
	return m.next()
}

func (m WizardModel) next() (tea.Model, tea.Cmd) {
	if _, err := m.wiz.Next(); err != nil {
		m.status = errors.UserMessage(err)
		return m, nil
	}
	m.status = ""
	m.enterStep()
	return m, nil
}

func (m WizardModel) back() (tea.Model, tea.Cmd) {
	if m.outcome != nil {
		return m, tea.Quit
	}
	m.status = ""
	if m.part > 0 {
		m.part--
		m.cursor = cursorAt(m.options(), m.current())
		return m, nil
	}
	if m.wiz.Step() == wizard.StepIndustry {
		m.cancelled = true
		return m, tea.Quit
	}
	m.wiz.Back()
	m.enterStep()
	return m, nil
}

func (m WizardModel) upload(paths []string) tea.Cmd {
	ctx, wiz := m.ctx, m.wiz
	return func() tea.Msg {
		parts, closeAll, err := apihttp.OpenFiles("file", paths)
		if err != nil {
			return uploadedMsg{err: err}
		}
		defer closeAll()
		files, err := wiz.Upload(ctx, parts)
		return uploadedMsg{files: files, err: err}
	}
}

func (m WizardModel) generate() tea.Cmd {
	ctx, wiz := m.ctx, m.wiz
	return func() tea.Msg {
		outcome, err := wiz.Generate(ctx)
		return generatedMsg{outcome: outcome, err: err}
	}
}

// ==========================
// Step state
// ==========================

// enterStep positions the cursor on the current selection of the new step.
func (m *WizardModel) enterStep() {
	m.part = 0
	m.cursor = cursorAt(m.options(), m.current())

	step := m.wiz.Step()
	if step == wizard.StepReportType && len(m.options()) == 0 {
		m.custom.SetValue(m.wiz.Draft().ReportType)
		m.custom.Focus()
	} else {
		m.custom.Blur()
	}
	if step == wizard.StepDataInputs && len(m.inputs) > 0 {
		m.inputs[m.focus].Focus()
	}
}

// buildInputs creates one text input per template question plus one for notes.
func (m *WizardModel) buildInputs() {
	draft := m.wiz.Draft()
	m.fields = m.wiz.Fields()
	m.inputs = make([]textinput.Model, 0, len(m.fields)+1)
	for _, f := range m.fields {
		ti := textinput.New()
		ti.Prompt = f.Label + ": "
		ti.Placeholder = placeholder(f)
		ti.CharLimit = 500
		ti.SetValue(draft.Inputs[f.ID])
		m.inputs = append(m.inputs, ti)
	}
	notes := textinput.New()
	notes.Prompt = "Notes: "
	notes.Placeholder = "Anything else the report should consider"
	notes.CharLimit = 2000
	notes.SetValue(draft.Notes)
	m.inputs = append(m.inputs, notes)
	m.focus = 0
}

func placeholder(f models.InputField) string {
	var hint string
	switch f.Type {
	case models.FieldSelect:
		hint = strings.Join(f.Options, " / ")
	case models.FieldBoolean:
		hint = "true / false"
	case models.FieldDate:
		hint = "YYYY-MM-DD"
	case models.FieldNumber:
		hint = "number"
	}
	if f.Required {
		if hint == "" {
			return "required"
		}
		return hint + " (required)"
	}
	return hint
}

func partsOf(step wizard.Step) int {
	if step == wizard.StepAudiencePurpose || step == wizard.StepToneDepth {
		return 2
	}
	return 1
}

// options lists the choices of the active picker.
func (m WizardModel) options() []string {
	c := m.wiz.Catalog()
	switch m.wiz.Step() {
	case wizard.StepIndustry:
		names := c.IndustryNames()
		if d := m.wiz.Draft(); d.Industry != "" && indexOf(names, d.Industry) < 0 {
			names = append([]string{d.Industry}, names...)
		}
		return names
	case wizard.StepReportType:
		return m.wiz.ReportTypes()
	case wizard.StepAudiencePurpose:
		if m.part == 0 {
			return c.Audiences
		}
		return c.Purposes
	case wizard.StepToneDepth:
		if m.part == 0 {
			return c.Tones
		}
		return c.Depths
	}
	return nil
}

// current is the drafted value of the active picker.
func (m WizardModel) current() string {
	d := m.wiz.Draft()
	switch m.wiz.Step() {
	case wizard.StepIndustry:
		return d.Industry
	case wizard.StepReportType:
		return d.ReportType
	case wizard.StepAudiencePurpose:
		if m.part == 0 {
			return d.Audience
		}
		return d.Purpose
	case wizard.StepToneDepth:
		if m.part == 0 {
			return d.Tone
		}
		return d.Depth
	}
	return ""
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

// cursorAt places the cursor on v, or on the first option.
func cursorAt(list []string, v string) int {
	if i := indexOf(list, v); i >= 0 {
		return i
	}
	return 0
}

// ==========================
// Rendering
// ==========================

func (m WizardModel) View() string {
	var sections []string

	title := "New report"
	if tool := m.wiz.Tool(); tool != nil {
		title = tool.Title
	}
	sections = append(sections, titleStyle.Render(title), m.viewProgress(), "")

	step := m.wiz.Step()
	switch {
	case step == wizard.StepDataInputs:
		sections = append(sections, m.viewInputs())
	case step == wizard.StepReview:
		sections = append(sections, m.viewReview())
	case step == wizard.StepReportType && len(m.options()) == 0:
		sections = append(sections, "Report type for "+m.wiz.Draft().Industry, m.custom.View())
	default:
		sections = append(sections, m.viewPicker())
	}

	if m.status != "" {
		sections = append(sections, "", errorStyle.Render(m.status))
	}
	sections = append(sections, "", mutedStyle.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WizardModel) viewProgress() string {
	current := m.wiz.Step()
	parts := make([]string, 0, wizard.StepCount)
	for _, s := range wizard.Steps() {
		label := fmt.Sprintf("%d %s", int(s)+1, s)
		switch {
		case s < current:
			parts = append(parts, stepDoneStyle.Render(label))
		case s == current:
			parts = append(parts, stepCurrentStyle.Render(label))
		default:
			parts = append(parts, stepTodoStyle.Render(label))
		}
	}
	return lipgloss.NewStyle().Width(m.width).Render(strings.Join(parts, mutedStyle.Render(" > ")))
}

func (m WizardModel) viewPicker() string {
	headings := map[wizard.Step][2]string{
		wizard.StepIndustry:        {"Select an industry"},
		wizard.StepReportType:      {"Select a report type"},
		wizard.StepAudiencePurpose: {"Who is the audience?", "What is the purpose?"},
		wizard.StepToneDepth:       {"Choose a tone", "Choose the depth"},
	}
	var b strings.Builder
	b.WriteString(headings[m.wiz.Step()][m.part] + "\n\n")

	selected := m.current()
	for i, opt := range m.options() {
		line := "  " + opt
		if opt == selected {
			line = selectedStyle.Render("  " + opt + " ✓")
		}
		if i == m.cursor {
			line = cursorStyle.Render("> ") + strings.TrimPrefix(line, "  ")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m WizardModel) viewInputs() string {
	var b strings.Builder
	b.WriteString("Data inputs (optional unless marked)\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}

	if files := m.wiz.Draft().Files; len(files) > 0 {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%d file(s) attached", len(files))) + "\n")
		for i, f := range files {
			line := fmt.Sprintf("  %s (%d bytes)", f.Filename, f.FileSize)
			if i == m.fileCursor {
				line = cursorStyle.Render("> ") + strings.TrimPrefix(line, "  ")
			}
			b.WriteString(line + "\n")
		}
	}
	switch {
	case m.uploading:
		b.WriteString("\n" + m.spin.View() + " Uploading files...\n")
	case m.attaching:
		b.WriteString("\n" + m.attach.View() + "\n")
	}
	return b.String()
}

func (m WizardModel) viewReview() string {
	d := m.wiz.Draft()
	rows := [][2]string{
		{"Industry", d.Industry},
		{"Report type", d.ReportType},
		{"Audience", d.Audience},
		{"Purpose", d.Purpose},
		{"Tone", d.Tone},
		{"Depth", d.Depth},
	}
	for _, f := range m.fields {
		if v, ok := d.Inputs[f.ID]; ok {
			rows = append(rows, [2]string{f.Label, v})
		}
	}
	if d.Notes != "" {
		rows = append(rows, [2]string{"Notes", d.Notes})
	}
	if len(d.Files) > 0 {
		names := make([]string, 0, len(d.Files))
		for _, f := range d.Files {
			names = append(names, f.Filename)
		}
		rows = append(rows, [2]string{"Files", strings.Join(names, ", ")})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%-12s %s", r[0]+":", r[1]))
	}
	body := boxStyle.Render(strings.Join(lines, "\n"))
	if m.generating {
		return body + "\n\n" + m.spin.View() + " Generating report..."
	}
	return body
}

func (m WizardModel) help() string {
	switch m.wiz.Step() {
	case wizard.StepDataInputs:
		if m.attaching {
			return "enter upload • esc cancel"
		}
		return "tab/shift+tab move • enter next/continue • ctrl+o attach • ctrl+n/ctrl+x pick/remove file • esc back"
	case wizard.StepReview:
		return "enter generate • esc back • ctrl+c quit"
	}
	return "↑/↓ move • enter select • esc back • ctrl+c quit"
}
