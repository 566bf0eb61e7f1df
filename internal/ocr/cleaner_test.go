package ocr

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"too short", "ab", ""},
		{"newlines become spaces", "solve for\n\n\nx plus two", "solve for x plus two"},
		{"whitespace runs collapse", "  what   is\t\tthe   area  ", "what is the area"},
		{"non ascii stripped", "area “of” circle ∑ is pi r2", "area of circle is pi r2"},
		{"doubled word kept", "the the answer is twelve", "the the answer is twelve"},
		{"stutter capped at two", "hello hello hello hello hello", "hello hello"},
		{"single char words are noise", "a b c d e f g", ""},
		{"low unique ratio is noise", "ab cd ab cd ab cd ab cd ab cd", ""},
		{"five words bypass unique ratio", "ab cd ab cd ab", "ab cd ab cd ab"},
		{"math expression survives", "x^2 + 3x = 10", "x^2 + 3x = 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"x",
		"a é b",
		"hello\n\nworld  world world world",
		"integral ∫ of  x dx\t from 0 to 1",
		"w w w w w w w w",
		"the the the quick brown fox fox fox",
		"12 + 7 = 19 ?",
		"d x d y d z d q",
		"“quoted” text — with dashes",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestCleanRepetitionCap(t *testing.T) {
	for n := 4; n <= 12; n++ {
		in := strings.TrimSpace(strings.Repeat("theta ", n))
		if got := Clean(in); got != "theta theta" {
			t.Errorf("Clean(%d x theta) = %q, want %q", n, got, "theta theta")
		}
	}
}

func TestIsNonsensical(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"hi", true},
		{"hey", false},
		{"a b c d e f g", true},
		{"x = 5", true},
		{"x equals five", false},
		{"z z z z z z z z", true},
	}

	for _, tt := range tests {
		if got := IsNonsensical(tt.text); got != tt.want {
			t.Errorf("IsNonsensical(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
