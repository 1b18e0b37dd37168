package output

import (
	"bytes"
	"os"
	"testing"
)

func TestColorSchemes(t *testing.T) {
	for name, scheme := range map[string]*ColorScheme{
		"default":  DefaultColorScheme(),
		"no color": NoColorScheme(),
		"enabled":  NewColorScheme(false),
		"disabled": NewColorScheme(true),
	} {
		for i, c := range scheme.all() {
			if c == nil {
				t.Errorf("%s scheme: color %d should not be nil", name, i)
			}
		}
	}
}

func TestNoColorSchemePlainText(t *testing.T) {
	scheme := NoColorScheme()
	if got := scheme.Method.Sprint("GET"); got != "GET" {
		t.Errorf("Expected plain text, got %q", got)
	}
	if got := scheme.Status(500).Sprint("500"); got != "500" {
		t.Errorf("Expected plain text, got %q", got)
	}
}

func TestColorSchemeStatus(t *testing.T) {
	scheme := DefaultColorScheme()
	tests := []struct {
		code     int
		expected interface{}
	}{
		{200, scheme.StatusOK},
		{204, scheme.StatusOK},
		{302, scheme.StatusWarn},
		{404, scheme.StatusError},
		{503, scheme.StatusError},
	}

	for _, tt := range tests {
		if scheme.Status(tt.code) != tt.expected {
			t.Errorf("Unexpected color for status %d", tt.code)
		}
	}
}

func TestIcons(t *testing.T) {
	if SuccessIcon(true) != "✓" {
		t.Errorf("Expected plain success icon, got %q", SuccessIcon(true))
	}
	if ErrorIcon(true) != "✗" {
		t.Errorf("Expected plain error icon, got %q", ErrorIcon(true))
	}
}

func TestShouldDisableColor(t *testing.T) {
	var buf bytes.Buffer

	if !ShouldDisableColor(true, os.Stdout) {
		t.Error("Expected color to be disabled when requested")
	}
	if !ShouldDisableColor(false, &buf) {
		t.Error("Expected color to be disabled for a non-terminal writer")
	}
	if IsTerminal(&buf) {
		t.Error("A buffer is not a terminal")
	}

	t.Setenv("NO_COLOR", "1")
	if !ShouldDisableColor(false, os.Stdout) {
		t.Error("Expected NO_COLOR to disable color")
	}
}
