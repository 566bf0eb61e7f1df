package ocr

import (
	"regexp"

	"github.com/canvastutor/tutor-service/internal/models"
)

var (
	mathPattern = regexp.MustCompile(
		`[+\-*/=^<>√∫∑∏π∞≤≥≠÷×²³]|(?i:\b(sin|cos|tan|cot|sec|csc|log|ln|sqrt|lim)\b)`)

	questionPattern = regexp.MustCompile(
		`(?i)\b(what|why|how|when|where|which|who|solve|find|calculate)\b|\?`)
)

// Classify tags text as math, question or plain text. Math wins over
// question when both match.
func Classify(text string) models.ContentType {
	switch {
	case mathPattern.MatchString(text):
		return models.ContentMath
	case questionPattern.MatchString(text):
		return models.ContentQuestion
	default:
		return models.ContentText
	}
}
