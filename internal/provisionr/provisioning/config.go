package provisioning

import (
	"fmt"

	"github.com/provisionr/provisionr-console/internal/jsonvalue"
)

// TargetOS is the operating system family kickstarts are rendered for.
type TargetOS string

const (
	TargetOSRocky9     TargetOS = "Rocky9"
	TargetOSUbuntu2504 TargetOS = "Ubuntu25.04"
)

// TargetOSValues lists every TargetOS the backend accepts.
var TargetOSValues = []TargetOS{TargetOSRocky9, TargetOSUbuntu2504}

// ParseTargetOS validates s against the closed set of target systems.
func ParseTargetOS(s string) (TargetOS, error) {
	for _, t := range TargetOSValues {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target OS %q (expected one of %v)", s, TargetOSValues)
}

// Label is the human readable name shown in forms.
func (t TargetOS) Label() string {
	switch t {
	case TargetOSRocky9:
		return "Rocky 9"
	case TargetOSUbuntu2504:
		return "Ubuntu 25.04"
	default:
		return string(t)
	}
}

// Config is the service-wide provisioning configuration read from and
// written to /api/v1/config. Values is opaque to the client.
type Config struct {
	TargetOS          TargetOS        `json:"target_os"`
	GeneratePasswords bool            `json:"generate_passwords"`
	Values            jsonvalue.Value `json:"values"`
}

// DefaultConfig mirrors the configuration the backend creates on first use.
func DefaultConfig() Config {
	return Config{
		TargetOS:          TargetOSRocky9,
		GeneratePasswords: true,
		Values:            jsonvalue.EmptyObject(),
	}
}

// Equal compares two configurations, treating values as JSON documents.
func (c Config) Equal(o Config) bool {
	return c.TargetOS == o.TargetOS &&
		c.GeneratePasswords == o.GeneratePasswords &&
		c.Values.Equal(o.Values)
}
