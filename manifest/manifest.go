// Package manifest synthesizes the Cargo manifest that accompanies an
// emitted Rust module, resolving crate needs against a pinned registry.
package manifest

import (
	"sort"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml"
)

// Manifest is the Cargo.toml document model.
type Manifest struct {
	Package      Package                `toml:"package"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

// Package is the [package] section.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

// dependency is a crate requirement with features; plain requirements render
// as bare version strings instead.
type dependency struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features,omitempty"`
}

// Generate renders the Cargo manifest for one emitted module.  The needs are
// the crate names the emitter recorded; an allowlist, when non-empty,
// restricts which of them may appear, and the denied remainder is returned
// for reporting.  Generation is deterministic: dependencies render sorted.
func Generate(moduleName, edition string, needs, allow []string) (string, []string, error) {
	allowed := make(map[string]bool, len(allow))
	for _, crate := range allow {
		allowed[crate] = true
	}

	deps := make(map[string]interface{})
	var denied []string

	sorted := append([]string(nil), needs...)
	sort.Strings(sorted)

	for _, crate := range sorted {
		if len(allow) > 0 && !allowed[crate] {
			denied = append(denied, crate)
			continue
		}

		spec, err := Lookup(crate)
		if err != nil {
			return "", nil, err
		}

		if len(spec.Features) == 0 {
			deps[crate] = spec.Version
		} else {
			deps[crate] = dependency{Version: spec.Version, Features: spec.Features}
		}
	}

	doc := Manifest{
		Package: Package{
			Name:    SanitizeName(moduleName),
			Version: "0.1.0",
			Edition: edition,
		},
		Dependencies: deps,
	}

	rendered, err := toml.Marshal(doc)
	if err != nil {
		return "", nil, err
	}

	return string(rendered), denied, nil
}

// SanitizeName converts a Python module name into a valid Cargo package
// name: lowercase, [a-z0-9_-], never digit-initial, never empty.
func SanitizeName(name string) string {
	var sb strings.Builder

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLower(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			sb.WriteRune(r)
		case r == '.' || r == ' ':
			sb.WriteRune('-')
		default:
			sb.WriteRune('_')
		}
	}

	out := sb.String()
	if out == "" {
		return "transpiled"
	}

	if unicode.IsDigit(rune(out[0])) {
		out = "pkg-" + out
	}

	return out
}
