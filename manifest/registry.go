package manifest

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CrateSpec pins one crate the emitted code may depend on.
type CrateSpec struct {
	// Version is the Cargo version requirement.
	Version string

	// Features lists the crate features to enable, if any.
	Features []string
}

// registry pins the version of every crate the emitter can request.  Needs
// outside this table are a translator bug, not a user error.
var registry = map[string]CrateSpec{
	"base64":     {Version: "0.22"},
	"chrono":     {Version: "0.4"},
	"clap":       {Version: "4.5", Features: []string{"derive"}},
	"hmac":       {Version: "0.12"},
	"once_cell":  {Version: "1.19"},
	"rand":       {Version: "0.8"},
	"regex":      {Version: "1.10"},
	"serde_json": {Version: "1.0"},
	"sha2":       {Version: "0.10"},
	"tokio":      {Version: "1.37", Features: []string{"full"}},
	"uuid":       {Version: "1.8", Features: []string{"v4"}},
}

// Lookup resolves a crate need against the registry, validating that the
// pinned version parses as a semver requirement.
func Lookup(crate string) (CrateSpec, error) {
	spec, ok := registry[crate]
	if !ok {
		return CrateSpec{}, fmt.Errorf("no pinned version for crate %s", crate)
	}

	if _, err := semver.NewConstraint(spec.Version); err != nil {
		return CrateSpec{}, fmt.Errorf("crate %s pins unparseable version %q: %w", crate, spec.Version, err)
	}

	return spec, nil
}

// Known reports whether a crate has a registry pin.
func Known(crate string) bool {
	_, ok := registry[crate]
	return ok
}
