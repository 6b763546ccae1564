package project

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateSlug(t *testing.T) {
	suffix := regexp.MustCompile(`-\d+$`)

	tests := []struct {
		name string
		in   string
		want string // 数値サフィックスを除いた部分
	}{
		{name: "simple", in: "My Board", want: "my-board"},
		{name: "punctuation stripped", in: "Let's talk!", want: "lets-talk"},
		{name: "already lowercase", in: "daily-words", want: "daily-words"},
		{name: "digits kept", in: "Board 2", want: "board-2"},
		{name: "empty input", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateSlug(tt.in)
			if !suffix.MatchString(got) {
				t.Fatalf("generateSlug(%q) = %q, want numeric suffix", tt.in, got)
			}
			base := strings.TrimSuffix(got, suffix.FindString(got))
			if base != tt.want {
				t.Errorf("generateSlug(%q) base = %q, want %q", tt.in, base, tt.want)
			}
		})
	}
}

func TestGenerateSlug_VariesBetweenCalls(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[generateSlug("board")] = true
	}
	if len(seen) < 2 {
		t.Error("expected random suffix to vary across calls")
	}
}
