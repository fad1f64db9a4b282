package adf

import (
	"fmt"
	"strings"
)

// ToMarkdown renders a plain-text projection of a built document, mainly for
// logs and diagnostics. Headings render as repeated '#' followed by the text
// of their first inline only; paragraphs join all inline texts with single
// spaces, rendering link-marked inlines as [text](href). Blocks of any other
// type are skipped. Blocks are joined by a blank line.
func ToMarkdown(doc Node) string {
	rendered := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		switch block.Type {
		case "heading":
			rendered = append(rendered, renderHeading(block))
		case "paragraph":
			rendered = append(rendered, renderParagraph(block))
		}
	}
	return strings.Join(rendered, "\n\n")
}

func renderHeading(block Node) string {
	text := ""
	if len(block.Content) > 0 {
		text = block.Content[0].Text
	}
	return strings.Repeat("#", headingLevel(block)) + " " + text
}

// headingLevel reads attrs.level, which is an int for locally built nodes and
// a float64 for nodes decoded from JSON.
func headingLevel(block Node) int {
	switch level := block.Attrs["level"].(type) {
	case int:
		return level
	case float64:
		return int(level)
	default:
		return 1
	}
}

func renderParagraph(block Node) string {
	parts := make([]string, 0, len(block.Content))
	for _, inline := range block.Content {
		if inline.Type != "text" {
			parts = append(parts, "")
			continue
		}
		if len(inline.Marks) > 0 && inline.Marks[0].Type == string(MarkLink) {
			href, _ := inline.Marks[0].Attrs["href"].(string)
			parts = append(parts, fmt.Sprintf("[%s](%s)", inline.Text, href))
			continue
		}
		parts = append(parts, inline.Text)
	}
	return strings.Join(parts, " ")
}
