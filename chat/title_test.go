package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestLocalTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "first_sentence", message: "How do I register? I missed the deadline.", want: "How do I register?"},
		{name: "short_message", message: "library hours", want: "library hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := localTitle(tt.message, 50); got != tt.want {
				t.Errorf("localTitle(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestLocalTitleLongMessage(t *testing.T) {
	message := strings.Repeat("registration ", 20)
	got := localTitle(message, 50)
	if utf8.RuneCountInString(got) > 53 { // 50 plus the ellipsis
		t.Errorf("localTitle() = %q, longer than the cap", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("localTitle() = %q, want truncation marker", got)
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		maxLen int
		want   string
	}{
		{name: "short_kept", title: "Tuition Fees", maxLen: 50, want: "Tuition Fees"},
		{name: "exact_kept", title: "abcde", maxLen: 5, want: "abcde"},
		{name: "truncated", title: "abcdef", maxLen: 5, want: "abcde..."},
		{name: "arabic_rune_safe", title: "مرحبا بكم في الجامعة", maxLen: 5, want: "مرحبا..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateTitle(tt.title, tt.maxLen); got != tt.want {
				t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.title, tt.maxLen, got, tt.want)
			}
		})
	}
}
