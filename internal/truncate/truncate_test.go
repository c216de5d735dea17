package truncate

import (
	"strings"
	"testing"
)

func TestHead(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "abc"},
		{"zero", "abc", 0, ""},
		{"negative", "abc", -1, ""},
		{"empty", "", 3, ""},
		{"multibyte", "héllo wörld", 4, "héll"},
		{"emoji", "🙂🙃😉", 2, "🙂🙃"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Head(tt.in, tt.n); got != tt.want {
				t.Errorf("Head(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"cut", "abcdef", 3, "def"},
		{"zero", "abc", 0, ""},
		{"empty", "", 3, ""},
		{"multibyte", "héllo wörld", 4, "örld"},
		{"emoji", "🙂🙃😉", 2, "🙃😉"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tail(tt.in, tt.n); got != tt.want {
				t.Errorf("Tail(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestHead_LongASCII(t *testing.T) {
	s := strings.Repeat("x", 4000)
	got := Head(s, 3000)
	if len(got) != 3000 {
		t.Fatalf("expected 3000 chars, got %d", len(got))
	}
	if got != s[:3000] {
		t.Error("expected prefix of input")
	}
}
