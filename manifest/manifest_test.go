package manifest

import (
	"strings"
	"testing"
)

func TestGenerateBasic(t *testing.T) {
	rendered, denied, err := Generate("fib", "2021", []string{"serde_json", "regex"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(denied) != 0 {
		t.Errorf("nothing should be denied without an allowlist, got %v", denied)
	}

	for _, fragment := range []string{
		`name = "fib"`,
		`version = "0.1.0"`,
		`edition = "2021"`,
		`regex = "1.10"`,
		`serde_json = "1.0"`,
	} {
		if !strings.Contains(rendered, fragment) {
			t.Errorf("manifest missing %q:\n%s", fragment, rendered)
		}
	}
}

func TestGenerateFeaturedDependency(t *testing.T) {
	rendered, _, err := Generate("cli", "2021", []string{"clap"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if !strings.Contains(rendered, `version = "4.5"`) || !strings.Contains(rendered, `"derive"`) {
		t.Errorf("clap should render with its derive feature:\n%s", rendered)
	}
}

func TestGenerateAllowlistDenies(t *testing.T) {
	rendered, denied, err := Generate("svc", "2021",
		[]string{"serde_json", "tokio", "regex"},
		[]string{"serde_json"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(denied) != 2 || denied[0] != "regex" || denied[1] != "tokio" {
		t.Errorf("expected sorted denied list [regex tokio], got %v", denied)
	}

	if strings.Contains(rendered, "tokio") || strings.Contains(rendered, "regex") {
		t.Errorf("denied crates leaked into the manifest:\n%s", rendered)
	}

	if !strings.Contains(rendered, "serde_json") {
		t.Errorf("allowed crate missing from the manifest:\n%s", rendered)
	}
}

func TestGenerateUnknownCrateFails(t *testing.T) {
	_, _, err := Generate("x", "2021", []string{"left-pad"}, nil)
	if err == nil {
		t.Fatal("expected an error for a crate without a registry pin")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first, _, err1 := Generate("m", "2021", []string{"regex", "serde_json", "chrono"}, nil)
	second, _, err2 := Generate("m", "2021", []string{"chrono", "serde_json", "regex"}, nil)

	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}

	if first != second {
		t.Errorf("manifests differ across need orderings:\n%s\n---\n%s", first, second)
	}
}

func TestLookupValidatesRegistry(t *testing.T) {
	for _, crate := range []string{"base64", "chrono", "clap", "hmac", "once_cell", "rand", "regex", "serde_json", "sha2", "tokio", "uuid"} {
		if _, err := Lookup(crate); err != nil {
			t.Errorf("pinned crate %s failed lookup: %s", crate, err)
		}

		if !Known(crate) {
			t.Errorf("pinned crate %s not reported as known", crate)
		}
	}

	if Known("left-pad") {
		t.Error("unpinned crates must not be known")
	}
}

func TestSanitizeName(t *testing.T) {
	testCases := []struct {
		in, expected string
	}{
		{"fib", "fib"},
		{"MyModule", "mymodule"},
		{"data.processing", "data-processing"},
		{"white space", "white-space"},
		{"weird!chars", "weird_chars"},
		{"", "transpiled"},
		{"3d_engine", "pkg-3d_engine"},
		{"under_score", "under_score"},
	}

	for _, tc := range testCases {
		if got := SanitizeName(tc.in); got != tc.expected {
			t.Errorf("SanitizeName(%q): expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}
