package textutil

import "strings"

// CollapseLines tidies scraped page text: lines are trimmed, runs of two or
// more spaces split a line into separate phrases, and blank lines drop out.
func CollapseLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(line, "  ") {
			phrase = strings.TrimSpace(phrase)
			if phrase != "" {
				out = append(out, phrase)
			}
		}
	}
	return strings.Join(out, "\n")
}
