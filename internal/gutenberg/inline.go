package gutenberg

import "strings"

// marker is a provisional delimiter placeholder. It sits in the working span
// list until a matching closer wraps the spans after it; leftover markers
// degrade to literal text during normalization.
type marker struct {
	lit string
}

func (*marker) span() {}

// parseInline parses a run of block text into an ordered span sequence. It is
// a single left-to-right scan with a marker stack for emphasis and
// strikethrough delimiters; unmatched delimiters and malformed link or image
// syntax fall back to literal text, so the parser is total over any input.
func parseInline(s string) InlineSeq {
	type open struct {
		lit string
		pos int
	}

	var nodes []Span
	var stack []open

	appendText := func(t string) {
		if t == "" {
			return
		}
		if len(nodes) > 0 {
			if last, ok := nodes[len(nodes)-1].(*Text); ok {
				last.Text += t
				return
			}
		}
		nodes = append(nodes, &Text{Text: t})
	}

	handleDelim := func(lit string) {
		for j := len(stack) - 1; j >= 0; j-- {
			if stack[j].lit != lit {
				continue
			}
			// Close the innermost unmatched open marker of this kind.
			// Anything opened after it stays unmatched and degrades later.
			pos := stack[j].pos
			inner := normalizeSpans(nodes[pos+1:])
			var wrapped Span
			switch lit {
			case "**":
				wrapped = &Bold{Content: inner}
			case "*":
				wrapped = &Italic{Content: inner}
			case "~~":
				wrapped = &Strikethrough{Content: inner}
			}
			nodes = append(nodes[:pos], wrapped)
			stack = stack[:j]
			return
		}
		stack = append(stack, open{lit: lit, pos: len(nodes)})
		nodes = append(nodes, &marker{lit: lit})
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '`':
			if j := strings.IndexByte(s[i+1:], '`'); j >= 0 {
				nodes = append(nodes, &InlineCode{Code: s[i+1 : i+1+j]})
				i += j + 2
			} else {
				appendText("`")
				i++
			}

		case strings.HasPrefix(s[i:], "**"):
			handleDelim("**")
			i += 2

		case strings.HasPrefix(s[i:], "~~"):
			handleDelim("~~")
			i += 2

		case c == '*':
			handleDelim("*")
			i++

		case c == '!' && i+1 < len(s) && s[i+1] == '[':
			alt, target, title, next, ok := parseRef(s, i+1)
			if !ok {
				appendText("!")
				i++
				break
			}
			nodes = append(nodes, &InlineImage{Src: target, Alt: alt, Title: title})
			i = next

		case c == '[':
			text, target, title, next, ok := parseRef(s, i)
			if !ok {
				appendText("[")
				i++
				break
			}
			nodes = append(nodes, &Link{Href: target, Title: title, Content: parseInline(text)})
			i = next

		default:
			j := i + 1
			for j < len(s) && !strings.ContainsRune("`*~![", rune(s[j])) {
				j++
			}
			appendText(s[i:j])
			i = j
		}
	}

	return normalizeSpans(nodes)
}

// parseRef parses `[text](target)` or `[text](target "title")` starting at
// the opening bracket. It returns the bracket text, the destination, the
// optional title, and the scan position after the closing parenthesis.
func parseRef(s string, start int) (text, target, title string, next int, ok bool) {
	depth := 0
	end := -1
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = j
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 || end+1 >= len(s) || s[end+1] != '(' {
		return "", "", "", 0, false
	}
	close := strings.IndexByte(s[end+1:], ')')
	if close < 0 {
		return "", "", "", 0, false
	}
	text = s[start+1 : end]
	target, title = splitTargetTitle(s[end+2 : end+1+close])
	return text, target, title, end + 2 + close, true
}

// splitTargetTitle separates a link destination from an optional
// double-quoted title.
func splitTargetTitle(inner string) (target, title string) {
	inner = strings.TrimSpace(inner)
	if strings.HasSuffix(inner, "\"") {
		if i := strings.Index(inner, " \""); i >= 0 {
			return strings.TrimSpace(inner[:i]), inner[i+2 : len(inner)-1]
		}
	}
	return inner, ""
}

// normalizeSpans converts leftover delimiter markers to literal text and
// merges adjacent text spans, recursing into nested content.
func normalizeSpans(spans []Span) InlineSeq {
	out := make(InlineSeq, 0, len(spans))
	appendText := func(t string) {
		if len(out) > 0 {
			if last, ok := out[len(out)-1].(*Text); ok {
				last.Text += t
				return
			}
		}
		out = append(out, &Text{Text: t})
	}
	for _, sp := range spans {
		switch v := sp.(type) {
		case *marker:
			appendText(v.lit)
		case *Text:
			appendText(v.Text)
		case *Bold:
			out = append(out, &Bold{Content: normalizeSpans(v.Content)})
		case *Italic:
			out = append(out, &Italic{Content: normalizeSpans(v.Content)})
		case *Strikethrough:
			out = append(out, &Strikethrough{Content: normalizeSpans(v.Content)})
		default:
			out = append(out, sp)
		}
	}
	return out
}

// plainText flattens a span sequence to its literal text, used when deciding
// whether a paragraph still carries content.
func plainText(seq InlineSeq) string {
	var b strings.Builder
	for _, sp := range seq {
		switch v := sp.(type) {
		case *Text:
			b.WriteString(v.Text)
		case *Bold:
			b.WriteString(plainText(v.Content))
		case *Italic:
			b.WriteString(plainText(v.Content))
		case *Strikethrough:
			b.WriteString(plainText(v.Content))
		case *InlineCode:
			b.WriteString(v.Code)
		case *Link:
			b.WriteString(plainText(v.Content))
		}
	}
	return b.String()
}
