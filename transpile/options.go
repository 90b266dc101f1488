package transpile

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml"

	"depyler/pyast"
	"depyler/report"
)

// Options configures one transpilation run.
type Options struct {
	// LangVersion is the Python language version the source targets, eg.
	// "3.11".  It is informational: the pipeline accepts what the parser
	// accepts.
	LangVersion string

	// Dynamic enables boxed emission: unknown types become the bundled
	// dynamic value type instead of failing type mapping.
	Dynamic bool

	// IntWidth is the width of the default integer mapping: 32 or 64.
	IntWidth int

	// Allow is the dependency allowlist.  Empty allows every registry crate;
	// otherwise needs outside the list are dropped from the manifest and
	// reported.
	Allow []string

	// LogLevel is one of the report.LogLevel constants.
	LogLevel int

	// Parser is the Python front-end.  The pipeline consumes its AST and is
	// agnostic to how the text was parsed.
	Parser pyast.Parser
}

// DefaultOptions returns the defaults: 64-bit integers, precise typing,
// verbose reporting.
func DefaultOptions() Options {
	return Options{
		LangVersion: "3.11",
		IntWidth:    64,
		LogLevel:    report.LogLevelVerbose,
	}
}

// tomlOptions mirrors the depyler.toml options file.
type tomlOptions struct {
	LangVersion string   `toml:"lang_version"`
	Dynamic     bool     `toml:"dynamic"`
	IntWidth    int      `toml:"int_width"`
	Allow       []string `toml:"allow"`
	LogLevel    string   `toml:"log_level"`
}

// LoadOptions reads a depyler.toml options file, validates it, and merges it
// over the defaults.  The parser must still be supplied by the caller.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("unable to read options file: %w", err)
	}

	var raw tomlOptions
	if err := toml.Unmarshal(data, &raw); err != nil {
		return opts, fmt.Errorf("malformed options file: %w", err)
	}

	if raw.LangVersion != "" {
		opts.LangVersion = raw.LangVersion
	}

	opts.Dynamic = raw.Dynamic
	opts.Allow = raw.Allow

	if raw.IntWidth != 0 {
		if raw.IntWidth != 32 && raw.IntWidth != 64 {
			return opts, fmt.Errorf("int_width must be 32 or 64, not %d", raw.IntWidth)
		}
		opts.IntWidth = raw.IntWidth
	}

	if raw.LogLevel != "" {
		level, err := parseLogLevel(raw.LogLevel)
		if err != nil {
			return opts, err
		}
		opts.LogLevel = level
	}

	return opts, nil
}

// parseLogLevel maps an options-file log level name to its constant.
func parseLogLevel(name string) (int, error) {
	switch name {
	case "silent":
		return report.LogLevelSilent, nil
	case "error":
		return report.LogLevelError, nil
	case "warn":
		return report.LogLevelWarn, nil
	case "verbose":
		return report.LogLevelVerbose, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}
