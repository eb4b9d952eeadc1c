package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/provisionr/provisionr-console/internal/console"
	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// Section is one half of the console page.
type Section int

const (
	SectionConfig Section = iota
	SectionTemplates
)

type field int

const (
	fieldNone field = iota
	fieldValues
	fieldTemplateName
	fieldMAC
	fieldUUID
	fieldSerial
	fieldUploadPath
	fieldUploadName
	fieldCount
)

// Model is the Bubble Tea model for the operator console.
type Model struct {
	ctx       context.Context
	Config    *console.ConfigClient
	Templates *console.TemplateClient
	BaseURL   string

	Section Section
	editing field
	inputs  [fieldCount]textinput.Model
	values  textarea.Model

	// Result panels, closed with the close key.
	TemplateContent string
	Rendered        string

	// Notice is a local hint that is not tied to an operation.
	Notice string

	// resolved lists operations in resolution order, newest last. The
	// dismiss key closes the newest banner of the current section only.
	resolved []string

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// UI state
	Width  int
	Height int
	Err    error
}

// NewModel creates the console model. machine pre-fills the render fields.
func NewModel(ctx context.Context, config *console.ConfigClient, templates *console.TemplateClient, baseURL string, machine provisioning.RenderRequest) Model {
	m := Model{
		ctx:       ctx,
		Config:    config,
		Templates: templates,
		BaseURL:   baseURL,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      defaultKeyMap(),
	}

	for f := fieldTemplateName; f < fieldCount; f++ {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		m.inputs[f] = in
	}
	m.inputs[fieldTemplateName].Placeholder = provisioning.DefaultTemplateName
	m.inputs[fieldTemplateName].SetValue(lo.Ternary(machine.TemplateName == "", provisioning.DefaultTemplateName, machine.TemplateName))
	m.inputs[fieldMAC].SetValue(machine.MAC)
	m.inputs[fieldUUID].SetValue(machine.UUID)
	m.inputs[fieldSerial].SetValue(machine.Serial)
	m.inputs[fieldUploadPath].Placeholder = "path/to/template" + console.TemplateExtensions[0]
	m.inputs[fieldUploadName].Placeholder = "my-template"

	m.values = textarea.New()
	m.values.ShowLineNumbers = false
	m.values.SetHeight(8)
	m.values.SetValue(config.Form().ValuesText)

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing != fieldNone {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.values.SetWidth(max(msg.Width-4, 20))
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case OperationDoneMsg:
		m.applyOutcome(msg.Operation)

	case UploadResetMsg:
		m.syncUploadInputs()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Switch):
		m.Section = lo.Ternary(m.Section == SectionConfig, SectionTemplates, SectionConfig)
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.dismiss()
		return m, nil
	case key.Matches(msg, m.keys.ClosePanel):
		m.closePanels()
		return m, nil
	}

	if m.Section == SectionConfig {
		return m.updateConfigKeys(msg)
	}
	return m.updateTemplateKeys(msg)
}

func (m Model) updateConfigKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.GetConfig):
		if m.Config.Fetch.Snapshot().Loading() {
			return m, nil
		}
		return m, m.run(console.OpGetConfig, func(ctx context.Context) { m.Config.GetConfig(ctx) })

	case key.Matches(msg, m.keys.CycleTargetOS):
		form := m.Config.Form()
		form.TargetOS = nextTargetOS(form.TargetOS)
		m.Config.SetForm(form)

	case key.Matches(msg, m.keys.TogglePassword):
		form := m.Config.Form()
		form.GeneratePasswords = !form.GeneratePasswords
		m.Config.SetForm(form)

	case key.Matches(msg, m.keys.EditValues):
		m.editing = fieldValues
		return m, m.values.Focus()

	case key.Matches(msg, m.keys.UpdateConfig):
		if m.Config.Update.Snapshot().Loading() {
			return m, nil
		}
		return m, m.run(console.OpUpdateConfig, func(ctx context.Context) { m.Config.SubmitForm(ctx) })
	}
	return m, nil
}

func (m Model) updateTemplateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.EditName):
		return m.focus(fieldTemplateName)
	case key.Matches(msg, m.keys.EditMAC):
		return m.focus(fieldMAC)
	case key.Matches(msg, m.keys.EditUUID):
		return m.focus(fieldUUID)
	case key.Matches(msg, m.keys.EditSerial):
		return m.focus(fieldSerial)
	case key.Matches(msg, m.keys.EditFile):
		return m.focus(fieldUploadPath)
	case key.Matches(msg, m.keys.EditUpload):
		return m.focus(fieldUploadName)

	case key.Matches(msg, m.keys.ToggleDefault):
		form := m.Templates.UploadForm()
		form.UseAsDefault = !form.UseAsDefault
		m.Templates.SetUploadForm(form)

	case key.Matches(msg, m.keys.GetTemplate):
		if m.Templates.Fetch.Snapshot().Loading() {
			return m, nil
		}
		name := m.inputs[fieldTemplateName].Value()
		return m, m.run(console.OpGetTemplate, func(ctx context.Context) { m.Templates.GetTemplate(ctx, name) })

	case key.Matches(msg, m.keys.Render):
		if m.Templates.Render.Snapshot().Loading() {
			return m, nil
		}
		name := m.inputs[fieldTemplateName].Value()
		mac, uuid, serial := m.inputs[fieldMAC].Value(), m.inputs[fieldUUID].Value(), m.inputs[fieldSerial].Value()
		return m, m.run(console.OpRenderTemplate, func(ctx context.Context) {
			m.Templates.RenderTemplate(ctx, name, mac, uuid, serial)
		})

	case key.Matches(msg, m.keys.Upload):
		if m.Templates.Upload.Snapshot().Loading() {
			return m, nil
		}
		m.syncUploadForm()
		return m, m.run(console.OpUploadTemplate, func(ctx context.Context) { m.Templates.SubmitUpload(ctx) })
	}
	return m, nil
}

func (m Model) focus(f field) (tea.Model, tea.Cmd) {
	m.editing = f
	return m, m.inputs[f].Focus()
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing == fieldValues {
		if key.Matches(msg, m.keys.Done) {
			m.values.Blur()
			form := m.Config.Form()
			form.ValuesText = m.values.Value()
			m.Config.SetForm(form)
			m.editing = fieldNone
			return m, nil
		}
		var cmd tea.Cmd
		m.values, cmd = m.values.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.Done) || msg.Type == tea.KeyEnter {
		m.inputs[m.editing].Blur()
		if m.editing == fieldUploadPath || m.editing == fieldUploadName {
			m.syncUploadForm()
		}
		m.editing = fieldNone
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.editing], cmd = m.inputs[m.editing].Update(msg)
	return m, cmd
}

// run executes op off the UI goroutine and reports back when it resolved.
func (m Model) run(op string, fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return OperationDoneMsg{Operation: op}
	}
}

func (m *Model) applyOutcome(op string) {
	m.resolved = append(lo.Without(m.resolved, op), op)

	switch op {
	case console.OpGetConfig:
		if m.Config.Fetch.Snapshot().Succeeded() {
			m.values.SetValue(m.Config.Form().ValuesText)
		}
	case console.OpGetTemplate:
		if content, ok := m.Templates.Fetch.Result(); ok {
			m.TemplateContent = content
		}
	case console.OpRenderTemplate:
		if rendered, ok := m.Templates.Render.Result(); ok {
			m.Rendered = rendered
		}
	case console.OpUploadTemplate:
		m.syncUploadInputs()
	}
}

// syncUploadForm copies the upload inputs into the client's upload form.
// A path that cannot be read leaves the file unselected.
func (m *Model) syncUploadForm() {
	form := m.Templates.UploadForm()
	form.TemplateName = m.inputs[fieldUploadName].Value()
	form.File = nil
	if path := m.inputs[fieldUploadPath].Value(); path != "" {
		file, err := console.OpenFile(path)
		if err != nil {
			m.Notice = err.Error()
		} else {
			form.File = file
			if !console.HasTemplateExtension(file.Name) {
				m.Notice = file.Name + " is not a template file; uploading anyway"
			}
		}
	}
	m.Templates.SetUploadForm(form)
}

// syncUploadInputs reflects the client's upload form in the inputs, which
// clears them after a successful upload.
func (m *Model) syncUploadInputs() {
	form := m.Templates.UploadForm()
	m.inputs[fieldUploadName].SetValue(form.TemplateName)
	if form.File == nil {
		m.inputs[fieldUploadPath].SetValue("")
	}
}

// dismiss returns the most recently resolved slot of the current section to
// idle. Operations that went back to loading have no banner and are skipped.
func (m *Model) dismiss() {
	for i := len(m.resolved) - 1; i >= 0; i-- {
		op := m.resolved[i]
		if sectionOf(op) != m.Section {
			continue
		}
		m.resolved = lo.Without(m.resolved, op)
		if m.slot(op).Dismiss() {
			return
		}
	}
}

type dismisser interface {
	Dismiss() bool
}

func (m *Model) slot(op string) dismisser {
	switch op {
	case console.OpGetConfig:
		return m.Config.Fetch
	case console.OpUpdateConfig:
		return m.Config.Update
	case console.OpGetTemplate:
		return m.Templates.Fetch
	case console.OpUploadTemplate:
		return m.Templates.Upload
	default:
		return m.Templates.Render
	}
}

func sectionOf(op string) Section {
	if op == console.OpGetConfig || op == console.OpUpdateConfig {
		return SectionConfig
	}
	return SectionTemplates
}

func (m *Model) closePanels() {
	if m.Section == SectionConfig {
		m.Config.ClearCurrent()
		return
	}
	m.TemplateContent = ""
	m.Rendered = ""
}

func nextTargetOS(t provisioning.TargetOS) provisioning.TargetOS {
	values := provisioning.TargetOSValues
	_, i, ok := lo.FindIndexOf(values, func(v provisioning.TargetOS) bool { return v == t })
	if !ok {
		return values[0]
	}
	return values[(i+1)%len(values)]
}
