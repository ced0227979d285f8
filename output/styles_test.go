package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestStylesPreserveText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	tests := []struct {
		name string
		fn   func(string) string
		text string
	}{
		{"Success", styles.Success, "0 errors"},
		{"Error", styles.Error, "transaction does not balance"},
		{"Warning", styles.Warning, "undeclared account"},
		{"Info", styles.Info, "unknown commodity"},
		{"FilePath", styles.FilePath, "main.beancount"},
		{"Account", styles.Account, "Assets:Checking"},
		{"Amount", styles.Amount, "100.50 USD"},
		{"Keyword", styles.Keyword, "balance"},
		{"Dim", styles.Dim, "3 references"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.text); !strings.Contains(got, tt.text) {
				t.Errorf("%s(%q) lost the text, got: %s", tt.name, tt.text, got)
			}
		})
	}
}

func TestStylesSeverity(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	for _, severity := range []string{"error", "warning", "info", "hint"} {
		if got := styles.Severity(severity, severity); !strings.Contains(got, severity) {
			t.Errorf("Severity(%q) lost the text, got: %s", severity, got)
		}
	}
}

func TestStylesOutput(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	if styles.Output() == nil {
		t.Error("Output() should return non-nil termenv.Output")
	}
}
