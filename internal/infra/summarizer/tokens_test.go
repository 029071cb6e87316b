package summarizer

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"日本語テキスト", 2},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTruncateToTokens(t *testing.T) {
	got, cut := TruncateToTokens("abcdefghij", 2)
	if got != "abcdefgh" || !cut {
		t.Errorf("TruncateToTokens = (%q, %v), want (\"abcdefgh\", true)", got, cut)
	}

	got, cut = TruncateToTokens("short", 8192)
	if got != "short" || cut {
		t.Errorf("TruncateToTokens = (%q, %v), want (\"short\", false)", got, cut)
	}

	got, cut = TruncateToTokens("anything", 0)
	if got != "anything" || cut {
		t.Errorf("TruncateToTokens with zero budget = (%q, %v), want input unchanged", got, cut)
	}
}

func TestInstructionPrompt(t *testing.T) {
	got := instructionPrompt("BODY", 30, 200)
	want := "Summarize the following text in plain sentences of between 22 and 150 words. " +
		"Write each key point as one complete sentence ending in a period. " +
		"Do not use headings, bullet markers, numbering or any preamble.\n\nBODY"
	if got != want {
		t.Errorf("instructionPrompt() =\n%q\nwant\n%q", got, want)
	}

	// min above max collapses to max
	if got := instructionPrompt("x", 100, 40); !strings.Contains(got, "between 30 and 30 words") {
		t.Errorf("unexpected bounds: %q", got)
	}
}
