package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/provisionr/provisionr-console/internal/opstate"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.Err != nil {
		return bannerStyles[opstate.Failed].Render(fmt.Sprintf("%s %v", bannerPrefix[opstate.Failed], m.Err)) + "\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("provisionR"))
	b.WriteString(" ")
	b.WriteString(endpointStyle.Render(m.BaseURL))
	b.WriteString("\n")

	b.WriteString(m.sectionTitle(SectionConfig, "Configuration"))
	b.WriteString("\n")
	if m.Section == SectionConfig {
		b.WriteString(m.viewConfig())
	}

	b.WriteString(m.sectionTitle(SectionTemplates, "Kickstart Templates"))
	b.WriteString("\n")
	if m.Section == SectionTemplates {
		b.WriteString(m.viewTemplates())
	}

	if m.Notice != "" {
		b.WriteString(noticeStyle.Render(m.Notice))
		b.WriteString("\n")
	}

	b.WriteString(helpBarStyle.Render(m.help.ShortHelpView(m.helpBindings())))
	b.WriteString("\n")
	return b.String()
}

func (m Model) sectionTitle(s Section, title string) string {
	if m.Section == s {
		return tabStyle.Render(title)
	}
	return idleTabStyle.Render(title)
}

func (m Model) helpBindings() []key.Binding {
	if m.editing != fieldNone {
		return []key.Binding{m.keys.Done}
	}
	if m.Section == SectionConfig {
		return m.keys.configHelp()
	}
	return m.keys.templateHelp()
}

func (m Model) viewConfig() string {
	var b strings.Builder

	fetch := m.Config.Fetch.Snapshot()
	b.WriteString(m.banner(fetch.Operation, fetch.Status, fetch.Message, ""))
	update := m.Config.Update.Snapshot()
	b.WriteString(m.banner(update.Operation, update.Status, update.Message, update.Result.Message))

	form := m.Config.Form()
	b.WriteString(row("Target OS", form.TargetOS.Label()))
	b.WriteString(row("Generate passwords", yesNo(form.GeneratePasswords)))
	b.WriteString(captionStyle.Render("Custom values"))
	b.WriteString("\n")
	if m.editing == fieldValues {
		b.WriteString(m.values.View())
	} else {
		b.WriteString(boxStyle.Render(form.ValuesText))
	}
	b.WriteString("\n")

	if current := m.Config.Current(); current != nil {
		b.WriteString(captionStyle.Render("Current configuration"))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(strings.Join([]string{
			"target_os: " + string(current.TargetOS),
			"generate_passwords: " + yesNo(current.GeneratePasswords),
			"values: " + current.Values.Pretty(),
		}, "\n")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewTemplates() string {
	var b strings.Builder

	for _, slot := range []*opstate.Slot[string]{m.Templates.Fetch, m.Templates.Render} {
		snap := slot.Snapshot()
		b.WriteString(m.banner(snap.Operation, snap.Status, snap.Message, ""))
	}
	upload := m.Templates.Upload.Snapshot()
	b.WriteString(m.banner(upload.Operation, upload.Status, upload.Message, upload.Result))

	b.WriteString(m.inputRow("Template name", fieldTemplateName))
	if m.TemplateContent != "" {
		b.WriteString(boxStyle.Render(m.TemplateContent))
		b.WriteString("\n")
	}

	b.WriteString(m.inputRow("MAC", fieldMAC))
	b.WriteString(m.inputRow("UUID", fieldUUID))
	b.WriteString(m.inputRow("Serial", fieldSerial))
	if m.Rendered != "" {
		b.WriteString(boxStyle.Render(m.Rendered))
		b.WriteString("\n")
	}

	b.WriteString(m.inputRow("Upload file", fieldUploadPath))
	b.WriteString(m.inputRow("Upload as", fieldUploadName))
	b.WriteString(row("Use as default", yesNo(m.Templates.UploadForm().UseAsDefault)))
	return b.String()
}

func (m Model) inputRow(label string, f field) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, fieldLabelStyle.Render(label), m.inputs[f].View()) + "\n"
}

// banner renders the loading, failure or success line of an operation.
// Operations whose success is shown as a panel pass an empty success text.
func (m Model) banner(operation string, status opstate.Status, message, success string) string {
	var text string
	switch status {
	case opstate.Loading:
		text = m.spinner.View() + " " + operation
	case opstate.Failed:
		text = message
	case opstate.Succeeded:
		text = success
	}
	if text == "" {
		return ""
	}
	return bannerStyles[status].Render(bannerPrefix[status]+" "+text) + "\n"
}

func row(label, value string) string {
	return fieldLabelStyle.Render(label) + value + "\n"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
