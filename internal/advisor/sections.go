package advisor

import (
	"strings"
)

// ParseSections splits model output into the three report sections.
// It matches the required headings case-insensitively, with or without
// markdown markers. When no headings are found, the full text becomes the
// Detailed Analysis and the first paragraph doubles as the summary.
func ParseSections(text string) Sections {
	indexes := make([]int, len(sectionHeadings))
	bodies := make([]string, len(sectionHeadings))
	for i := range indexes {
		indexes[i] = -1
	}

	lines := strings.Split(text, "\n")
	for n, line := range lines {
		if h := headingIndex(line); h >= 0 && indexes[h] == -1 {
			indexes[h] = n
		}
	}

	if indexes[0] == -1 && indexes[1] == -1 && indexes[2] == -1 {
		return Sections{
			ExecutiveSummary: firstParagraph(text),
			DetailedAnalysis: strings.TrimSpace(text),
		}
	}

	// A section runs until the nearest heading below it. The model does not
	// always emit headings in the requested order, so scan all of them.
	for i, start := range indexes {
		if start == -1 {
			continue
		}
		end := len(lines)
		for j, other := range indexes {
			if j == i || other == -1 {
				continue
			}
			if other > start && other < end {
				end = other
			}
		}
		bodies[i] = strings.TrimSpace(strings.Join(lines[start+1:end], "\n"))
	}

	return Sections{
		ExecutiveSummary:    bodies[0],
		DetailedAnalysis:    bodies[1],
		StakeholderInsights: bodies[2],
	}
}

// headingIndex reports which required heading a line is, or -1.
func headingIndex(line string) int {
	normalized := strings.ToLower(strings.TrimSpace(line))
	normalized = strings.TrimLeft(normalized, "#")
	normalized = strings.Trim(normalized, "* ")
	normalized = strings.TrimSuffix(normalized, ":")

	for i, heading := range sectionHeadings {
		if normalized == strings.ToLower(heading) {
			return i
		}
	}
	return -1
}

// firstParagraph returns the text up to the first blank line.
func firstParagraph(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.Index(trimmed, "\n\n"); idx > 0 {
		return strings.TrimSpace(trimmed[:idx])
	}
	return trimmed
}
