package terminal

import (
	"regexp"

	"github.com/charmbracelet/glamour"
)

var (
	// Leading/trailing runs of whitespace or ANSI sequences, matched as a
	// unit so trimming never splits an escape code.
	leadingANSIWhitespace  = regexp.MustCompile(`^(?:\x1b\[[0-9;]*m|\s)*`)
	trailingANSIWhitespace = regexp.MustCompile(`(?:\x1b\[[0-9;]*m|\s)*$`)
)

func renderMarkdown(content string, width int) string {
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"), // avoid OSC background queries
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	out, err := md.Render(content)
	if err != nil {
		return content
	}

	return trimTrailingWhitespaceWithANSI(trimLeadingWhitespaceWithANSI(out))
}

func trimLeadingWhitespaceWithANSI(s string) string {
	return leadingANSIWhitespace.ReplaceAllString(s, "")
}

func trimTrailingWhitespaceWithANSI(s string) string {
	return trailingANSIWhitespace.ReplaceAllString(s, "")
}
