// Package repair normalizes raw model output into text the structured parser can read.
//
// Models asked for a JSON object tend to drop the surrounding braces, wrap the object over
// several lines, or escape underscores and brackets the way they would in markdown. Lenient
// undoes exactly those mistakes and nothing else: it does not balance delimiters, repair
// nested structures, or detect truncated output.
package repair

import "strings"

const (
	openDelim  = "{"
	closeDelim = "}"
)

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ")

var escapes = strings.NewReplacer(
	`\_`, "_",
	`\]`, "]",
	`\[`, "[",
)

// Lenient is the default repair strategy.
type Lenient struct{}

// NewLenient returns the default repair strategy.
func NewLenient() Lenient {
	return Lenient{}
}

// Repair applies the lenient transform. It is idempotent.
func (Lenient) Repair(text string) string {
	return Text(text)
}

// Text applies the lenient transform to text.
func Text(text string) string {
	if !strings.Contains(text, openDelim) {
		text = openDelim + text
	}
	if !strings.Contains(text, closeDelim) {
		text = text + closeDelim
	}

	text = newlines.Replace(text)

	// Removing one escape can expose another (`\\_` -> `\_`), so run to a fixed point.
	// Each pass that changes anything shortens the text.
	for hasEscapes(text) {
		text = escapes.Replace(text)
	}

	return text
}

func hasEscapes(text string) bool {
	return strings.Contains(text, `\_`) ||
		strings.Contains(text, `\]`) ||
		strings.Contains(text, `\[`)
}
