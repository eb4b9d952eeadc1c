package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Configuration
	GetConfig      key.Binding
	CycleTargetOS  key.Binding
	TogglePassword key.Binding
	EditValues     key.Binding
	UpdateConfig   key.Binding

	// Templates
	EditName      key.Binding
	GetTemplate   key.Binding
	Render        key.Binding
	EditMAC       key.Binding
	EditUUID      key.Binding
	EditSerial    key.Binding
	EditFile      key.Binding
	EditUpload    key.Binding
	ToggleDefault key.Binding
	Upload        key.Binding

	// Global
	Dismiss    key.Binding
	ClosePanel key.Binding
	Switch     key.Binding
	Done       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		GetConfig:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "get config")),
		CycleTargetOS:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "target os")),
		TogglePassword: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "passwords")),
		EditValues:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit values")),
		UpdateConfig:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update config")),

		EditName:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "template name")),
		GetTemplate:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "view template")),
		Render:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "render")),
		EditMAC:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mac")),
		EditUUID:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "uuid")),
		EditSerial:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "serial")),
		EditFile:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "file")),
		EditUpload:    key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "upload name")),
		ToggleDefault: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "as default")),
		Upload:        key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "upload")),

		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss latest")),
		ClosePanel: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "close panel")),
		Switch:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch section")),
		Done:       key.NewBinding(key.WithKeys("esc", "ctrl+s"), key.WithHelp("esc", "finish editing")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) configHelp() []key.Binding {
	return []key.Binding{k.GetConfig, k.CycleTargetOS, k.TogglePassword, k.EditValues, k.UpdateConfig, k.Dismiss, k.ClosePanel, k.Switch, k.Quit}
}

func (k keyMap) templateHelp() []key.Binding {
	return []key.Binding{k.EditName, k.GetTemplate, k.EditMAC, k.EditUUID, k.EditSerial, k.Render, k.EditFile, k.EditUpload, k.ToggleDefault, k.Upload, k.Dismiss, k.ClosePanel, k.Switch, k.Quit}
}
