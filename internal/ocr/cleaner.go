package ocr

import (
	"regexp"
	"strings"
)

const (
	// A word may repeat this many times in a row; further repeats are OCR stutter
	maxConsecutiveRepeats = 2

	minCleanLength      = 3
	minUniqueWordRatio  = 0.3
	uniqueRatioMinWords = 5
	maxSingleCharShare  = 0.5
)

var (
	newlineRun    = regexp.MustCompile(`[\r\n]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw OCR output and drops it entirely when it looks like
// noise. The result is either readable text or "". Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	text := collapseWhitespace(raw)
	text = stripNonPrintable(text)
	// stripping can leave doubled or edge spaces behind
	text = collapseWhitespace(text)

	words := dedupeRepeats(strings.Fields(text))
	cleaned := strings.Join(words, " ")

	if IsNonsensical(cleaned) {
		return ""
	}
	return cleaned
}

// IsNonsensical reports whether text is too short, too repetitive, or
// dominated by isolated single characters to be worth sending to a model.
func IsNonsensical(text string) bool {
	if len(text) < minCleanLength {
		return true
	}

	words := strings.Fields(text)
	total := len(words)
	if total == 0 {
		return true
	}

	unique := make(map[string]struct{}, total)
	singleChars, chars := 0, 0
	for _, w := range words {
		unique[w] = struct{}{}
		n := len([]rune(w))
		chars += n
		if n == 1 {
			singleChars++
		}
	}

	if total > uniqueRatioMinWords && float64(len(unique))/float64(total) < minUniqueWordRatio {
		return true
	}

	return chars > 0 && float64(singleChars)/float64(chars) > maxSingleCharShare
}

func collapseWhitespace(s string) string {
	s = newlineRun.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripNonPrintable keeps printable ASCII (0x20-0x7E) only
func stripNonPrintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dedupeRepeats(words []string) []string {
	out := make([]string, 0, len(words))
	run := 0
	for i, w := range words {
		if i > 0 && w == words[i-1] {
			run++
		} else {
			run = 1
		}
		if run <= maxConsecutiveRepeats {
			out = append(out, w)
		}
	}
	return out
}
