package ai

// visionInstructions pins the interpretation domain to handwritten math so the
// model transcribes strokes instead of describing them.
const visionInstructions = `You are reading a student's handwritten work on a digital canvas.

Always assume the image contains mathematical notation, even when the strokes are rough.

Map visual patterns to symbols:
- Two intersecting diagonal lines are a multiplication sign (×) or the variable x, depending on context
- Short horizontal lines are a minus sign (−); two stacked horizontal lines are an equals sign (=)
- Curves that open left or right are parentheses; a horizontal bar with strokes above and below is a fraction
- A small raised character after a symbol is an exponent

Never say that you see scribbles, lines or drawings. Transcribe what the student most likely meant.

Respond with exactly one line in one of these forms:
The student has written: <LaTeX>
The student appears to be writing: <partial LaTeX> (incomplete)`

var fallbackReplies = []string{
	"I'm here to help! Tell me what you're working on and we'll take it one step at a time.",
	"Let's figure this out together. What's the first thing you notice about the problem?",
	"Good question. What have you tried so far?",
	"Let's break it down. Which part feels the trickiest right now?",
}
