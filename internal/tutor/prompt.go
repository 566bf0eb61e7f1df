package tutor

import (
	"fmt"
	"strings"
)

// buildCanvasPrompt assembles the user turn sent to the tutor
func buildCanvasPrompt(ext *extraction, description, callerText string, req CanvasRequest) string {
	var b strings.Builder

	b.WriteString("A student is working on a problem on their canvas and wants help.\n\n")

	if ext != nil {
		switch ext.source {
		case SourceVision:
			fmt.Fprintf(&b, "What the student has written, as read from the canvas:\n%s\n\n", ext.text)
		default:
			fmt.Fprintf(&b, "Text recognized on the canvas (may contain recognition errors):\n%s\n\n", ext.text)
		}
	}
	if callerText != "" && (ext == nil || callerText != ext.text) {
		fmt.Fprintf(&b, "Text extracted on the student's device:\n%s\n\n", callerText)
	}
	if description != "" {
		fmt.Fprintf(&b, "The student describes their work as:\n%s\n\n", description)
	}
	if t := strings.TrimSpace(req.AnalysisType); t != "" && t != DefaultAnalysisType {
		fmt.Fprintf(&b, "Requested analysis: %s\n", t)
	}
	if r := strings.TrimSpace(req.TriggerReason); r != "" {
		fmt.Fprintf(&b, "Why help was requested: %s\n", r)
	}

	b.WriteString("\nStay in character. Say what the student is working on, point out any mistake, " +
		"and guide them to the next step without giving away the final answer. Keep it short.")
	return b.String()
}
