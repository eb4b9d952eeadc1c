package handlers

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/samber/lo"

	"github.com/provisionr/provisionr-console/internal/console"
)

// KickstartRenderOptions holds the flags of "kickstart render". Empty machine
// fields fall back to the profile's machine section.
type KickstartRenderOptions struct {
	TemplateName string
	MAC          string
	UUID         string
	Serial       string
	Params       []string
	Output       string
	Archive      bool
}

// KickstartRender renders a kickstart for one machine.
func KickstartRender(ctx context.Context, g Globals, opts KickstartRenderOptions) error {
	extra, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	req := s.settings.Machine.RenderRequest()
	req.TemplateName = lo.CoalesceOrEmpty(opts.TemplateName, req.TemplateName)
	req.MAC = lo.CoalesceOrEmpty(opts.MAC, req.MAC)
	req.UUID = lo.CoalesceOrEmpty(opts.UUID, req.UUID)
	req.Serial = lo.CoalesceOrEmpty(opts.Serial, req.Serial)
	req.Extra = extra

	client := console.NewTemplateClient(s.backend, s.consoleOptions()...)
	snap := client.RenderKickstart(ctx, req)
	if err := failure(snap); err != nil {
		return err
	}

	rendered := []byte(snap.Result)
	if err := writeOutput(opts.Output, rendered); err != nil {
		return err
	}
	if opts.Archive {
		return s.archive(ctx, kickstartObjectName(req.EffectiveTemplateName(), req.MAC), "text/plain", rendered)
	}
	return nil
}

// parseParams turns key=value pairs into extra render parameters.
func parseParams(params []string) (map[string]string, error) {
	if len(params) == 0 {
		return nil, nil
	}
	extra := make(map[string]string, len(params))
	for _, p := range params {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q (expected key=value)", p)
		}
		extra[k] = v
	}
	return extra, nil
}

func kickstartObjectName(templateName, mac string) string {
	id := strings.ToLower(strings.ReplaceAll(mac, ":", "-"))
	return path.Join("kickstarts", templateName, lo.CoalesceOrEmpty(id, "unknown")+".ks")
}
