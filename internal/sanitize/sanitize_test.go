package sanitize

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Alice", "Alice"},
		{"script stripped", "<script>alert(1)</script>Bob", "Bob"},
		{"tags stripped", "<b>Go</b> <i>basics</i>", "Go basics"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"whitespace collapsed", "  New \t\n York  ", "New York"},
		{"control chars dropped", "Ali\x07ce", "Alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("expected rune-aware truncation, got %q", got)
	}
	if got := Truncate("go", 10); got != "go" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	if got := Truncate("go", 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
