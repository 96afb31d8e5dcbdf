package gutenberg

import (
	"regexp"
	"strings"
)

// lineKind tags the syntactic role of a single source line. Classification is
// line-local except for fence state: between a fence open and its matching
// close every line is raw text.
type lineKind int

const (
	lineBlank lineKind = iota
	lineText
	lineHeading
	lineListItem
	lineQuote
	lineFenceOpen
	lineFenceClose
	lineTableRow
	lineRule
	lineHTML
	lineShortcode
)

// lineSpan is one classified source line. content holds the text with the
// block prefix stripped (heading marker, list marker, quote prefix); text
// keeps the raw line for passthrough and degrade paths.
type lineSpan struct {
	kind    lineKind
	text    string
	content string
	indent  int
	level   int  // heading level, 1..6
	ordered bool // list marker family
	info    string
}

var (
	listItemRE  = regexp.MustCompile(`^(\s*)([*\-+]|\d+[.)])\s+(.*)$`)
	orderedRE   = regexp.MustCompile(`^\s*\d+[.)]\s`)
	shortcodeRE = regexp.MustCompile(`^\[[^\[\]]+\]$`)
)

// classify splits the document into tagged line spans. It never fails:
// anything unrecognized is tagged lineText and merges into a paragraph later.
func classify(text string) []lineSpan {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	spans := make([]lineSpan, 0, len(lines))
	var fence string
	for _, raw := range lines {
		if fence != "" {
			if isFenceClose(raw, fence) {
				spans = append(spans, lineSpan{kind: lineFenceClose, text: raw})
				fence = ""
			} else {
				spans = append(spans, lineSpan{kind: lineText, text: raw, content: raw})
			}
			continue
		}
		spans = append(spans, classifyLine(raw, &fence))
	}
	return spans
}

func classifyLine(raw string, fence *string) lineSpan {
	trimmed := strings.TrimSpace(raw)
	indent := indentWidth(raw)

	switch {
	case trimmed == "":
		return lineSpan{kind: lineBlank, text: raw}

	case strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~"):
		marker := trimmed[:3]
		info := strings.TrimSpace(strings.TrimLeft(trimmed, string(marker[0])))
		if i := strings.IndexAny(info, " \t"); i >= 0 {
			info = info[:i]
		}
		*fence = marker
		return lineSpan{kind: lineFenceOpen, text: raw, indent: indent, info: info}

	case strings.HasPrefix(trimmed, "#"):
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level > 6 {
			level = 6
		}
		content := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		return lineSpan{kind: lineHeading, text: raw, content: content, indent: indent, level: level}

	case strings.HasPrefix(trimmed, ">"):
		content := strings.TrimPrefix(trimmed, ">")
		content = strings.TrimPrefix(content, " ")
		return lineSpan{kind: lineQuote, text: raw, content: content, indent: indent}

	case isRuleLine(trimmed):
		return lineSpan{kind: lineRule, text: raw, indent: indent}

	case listItemRE.MatchString(raw):
		m := listItemRE.FindStringSubmatch(raw)
		return lineSpan{
			kind:    lineListItem,
			text:    raw,
			content: m[3],
			indent:  indent,
			ordered: orderedRE.MatchString(raw),
		}

	case strings.HasPrefix(trimmed, "<"):
		return lineSpan{kind: lineHTML, text: raw, content: trimmed, indent: indent}

	case shortcodeRE.MatchString(trimmed):
		return lineSpan{kind: lineShortcode, text: raw, content: trimmed, indent: indent}

	case strings.Contains(trimmed, "|"):
		return lineSpan{kind: lineTableRow, text: raw, content: trimmed, indent: indent}

	default:
		return lineSpan{kind: lineText, text: raw, content: raw, indent: indent}
	}
}

// indentWidth counts leading indentation columns, expanding tabs to four.
func indentWidth(s string) int {
	n := 0
	for _, c := range s {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// isRuleLine reports whether the trimmed line is a thematic break: three or
// more of the same rule character, optionally space separated.
func isRuleLine(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '-' && c != '_' && c != '*' {
		return false
	}
	count := 0
	for _, r := range trimmed {
		switch byte(r) {
		case c:
			count++
		case ' ':
		default:
			return false
		}
	}
	return count >= 3
}

func isFenceClose(raw, fence string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), fence)
}

// isSeparatorRow reports whether the line is a valid table alignment
// separator: pipe-delimited cells of dashes with optional leading or trailing
// colons. A table row run is only confirmed as a Table when its second line
// passes this check.
func isSeparatorRow(trimmed string) bool {
	cells := splitTableCells(trimmed)
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !isSeparatorCell(cell) {
			return false
		}
	}
	return true
}

func isSeparatorCell(cell string) bool {
	cell = strings.TrimSpace(cell)
	cell = strings.TrimPrefix(cell, ":")
	cell = strings.TrimSuffix(cell, ":")
	if cell == "" {
		return false
	}
	for i := 0; i < len(cell); i++ {
		if cell[i] != '-' {
			return false
		}
	}
	return true
}

// splitTableCells splits a pipe-delimited row into trimmed cell texts,
// tolerating both present and absent outer pipes.
func splitTableCells(trimmed string) []string {
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// separatorAlignment maps one separator cell to its column alignment.
func separatorAlignment(cell string) Alignment {
	cell = strings.TrimSpace(cell)
	left := strings.HasPrefix(cell, ":")
	right := strings.HasSuffix(cell, ":")
	switch {
	case left && right:
		return AlignCenter
	case right:
		return AlignRight
	case left:
		return AlignLeft
	default:
		return AlignNone
	}
}
