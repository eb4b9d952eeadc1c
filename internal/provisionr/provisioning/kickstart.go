package provisioning

// DefaultTemplateName is the template the backend renders when no name is given.
const DefaultTemplateName = "default"

// RenderRequest identifies the machine a kickstart is rendered for. The
// identifiers are forwarded verbatim. An empty TemplateName leaves the choice
// to the backend's default template.
type RenderRequest struct {
	MAC          string
	UUID         string
	Serial       string
	TemplateName string

	// Extra query parameters exposed to the template by the backend.
	Extra map[string]string
}

// EffectiveTemplateName is the template the backend is expected to use.
func (r RenderRequest) EffectiveTemplateName() string {
	if r.TemplateName == "" {
		return DefaultTemplateName
	}
	return r.TemplateName
}

// SampleMachine is the machine the operator console pre-fills for test renders.
func SampleMachine() RenderRequest {
	return RenderRequest{
		MAC:    "00:11:22:33:44:55",
		UUID:   "test-uuid-12345",
		Serial: "TEST-SN-001",
	}
}
