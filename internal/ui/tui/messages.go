// Package tui provides the Bubble Tea operator console for provisionR.
package tui

// OperationDoneMsg reports that a console operation has resolved. The
// outcome lives in the operation's slot.
type OperationDoneMsg struct {
	Operation string
}

// UploadResetMsg is sent when a successful upload cleared the upload form.
type UploadResetMsg struct{}

// ErrMsg carries an error that ends the console.
type ErrMsg struct{ Err error }
