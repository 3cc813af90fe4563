package intelligence

import (
	"strings"
	"unicode/utf8"
)

// HeaderSectionName names the section holding text before the first heading
const HeaderSectionName = "Header"

// maxHeadingLength is the exclusive upper bound on a heading line's length
const maxHeadingLength = 30

// headingVocabulary lists the heading prefixes of common academic papers,
// in match order
var headingVocabulary = []string{
	"Abstract",
	"Introduction",
	"Background",
	"Related work",
	"Method",
	"Methodology",
	"Experiment",
	"Experiments",
	"Implementation",
	"Result",
	"Results",
	"Discussion",
	"Conclusion",
	"Conclusions",
	"References",
}

// Section is a named run of consecutive non-heading lines
type Section struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// HeadingVocabulary returns a copy of the recognized heading prefixes
func HeadingVocabulary() []string {
	out := make([]string, len(headingVocabulary))
	copy(out, headingVocabulary)
	return out
}

// MatchHeading reports whether line is a heading line and, if so, which
// vocabulary entry matched first. The line is trimmed before matching.
func MatchHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || utf8.RuneCountInString(trimmed) >= maxHeadingLength {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	for _, heading := range headingVocabulary {
		if strings.HasPrefix(lower, strings.ToLower(heading)) {
			return heading, true
		}
	}
	return "", false
}

// IsHeading reports whether line is a section boundary
func IsHeading(line string) bool {
	_, ok := MatchHeading(line)
	return ok
}

// Segment splits text into sections at heading lines. Heading lines are
// consumed as section names; every other line is kept verbatim with a
// trailing newline. Sections whose content is blank are dropped.
func Segment(text string) []Section {
	sections := make([]Section, 0)
	current := Section{Name: HeaderSectionName}

	var content strings.Builder
	for _, line := range splitLines(text) {
		if IsHeading(line) {
			current.Content = content.String()
			if strings.TrimSpace(current.Content) != "" {
				sections = append(sections, current)
			}
			current = Section{Name: strings.TrimSpace(line)}
			content.Reset()
			continue
		}

		content.WriteString(line)
		content.WriteByte('\n')
	}

	current.Content = content.String()
	if strings.TrimSpace(current.Content) != "" {
		sections = append(sections, current)
	}

	return sections
}

// splitLines splits on "\n". A terminating newline ends the last line
// rather than starting an empty one.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
