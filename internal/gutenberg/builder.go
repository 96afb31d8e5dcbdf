package gutenberg

import (
	"regexp"
	"strings"
)

// build assembles the block tree from classified line spans. It is recursive
// descent over index ranges: list item children and quote bodies re-enter
// buildBlocks scoped to their own slice of lines. The builder never fails;
// unrecognized input degrades to a Paragraph or RawPassthrough.
func build(spans []lineSpan) *Document {
	return &Document{Blocks: buildBlocks(spans, 0, len(spans))}
}

func buildBlocks(spans []lineSpan, lo, hi int) []Block {
	var blocks []Block
	i := lo
	for i < hi {
		ln := spans[i]
		switch ln.kind {
		case lineBlank, lineFenceClose:
			i++

		case lineHeading:
			blocks = append(blocks, &Heading{Level: ln.level, Content: parseInline(ln.content)})
			i++

		case lineRule:
			blocks = append(blocks, &Rule{})
			i++

		case lineFenceOpen:
			var raw []string
			j := i + 1
			for ; j < hi && spans[j].kind != lineFenceClose; j++ {
				raw = append(raw, spans[j].text)
			}
			blocks = append(blocks, &CodeBlock{Language: ln.info, RawText: strings.Join(raw, "\n")})
			if j < hi {
				j++
			}
			i = j

		case lineQuote:
			var inner []string
			j := i
			for ; j < hi && spans[j].kind == lineQuote; j++ {
				inner = append(inner, spans[j].content)
			}
			innerSpans := classify(strings.Join(inner, "\n"))
			quote := &Quote{Children: buildBlocks(innerSpans, 0, len(innerSpans))}
			if len(quote.Children) > 0 {
				blocks = append(blocks, quote)
			}
			i = j

		case lineListItem:
			j := listRunEnd(spans, i, hi)
			blocks = append(blocks, buildListRun(spans, i, j)...)
			i = j

		case lineTableRow:
			j := i
			for ; j < hi && spans[j].kind == lineTableRow; j++ {
			}
			if j-i >= 2 && isSeparatorRow(spans[i+1].content) {
				blocks = append(blocks, buildTable(spans[i:j]))
				i = j
				break
			}
			// No alignment separator confirmation: the rows are ordinary
			// paragraph text.
			var para []string
			for k := i; k < j; k++ {
				para = append(para, spans[k].content)
			}
			blocks = append(blocks, paragraphBlocks(strings.Join(para, " "))...)
			i = j

		case lineHTML:
			var raw []string
			j := i
			for ; j < hi && spans[j].kind == lineHTML; j++ {
				raw = append(raw, spans[j].text)
			}
			joined := strings.Join(raw, "\n")
			if img := liftHTMLImage(joined); img != nil {
				blocks = append(blocks, img)
			} else {
				blocks = append(blocks, &RawPassthrough{Text: joined})
			}
			i = j

		case lineShortcode:
			blocks = append(blocks, &RawPassthrough{Text: ln.content})
			i++

		default: // lineText
			var para []string
			j := i
			for j < hi && (spans[j].kind == lineText || spans[j].kind == lineTableRow) {
				// A pipe row that opens a confirmed table ends the paragraph.
				if spans[j].kind == lineTableRow && j+1 < hi &&
					spans[j+1].kind == lineTableRow && isSeparatorRow(spans[j+1].content) {
					break
				}
				para = append(para, spans[j].content)
				j++
			}
			blocks = append(blocks, paragraphBlocks(strings.Join(para, " "))...)
			i = j
		}
	}
	return blocks
}

// listRunEnd finds the end of a list region starting at lo: list item lines,
// lines indented strictly deeper than the most recent marker column, and
// blank lines whose next content line still belongs to the list.
func listRunEnd(spans []lineSpan, lo, hi int) int {
	markerCol := spans[lo].indent
	j := lo
	for j < hi {
		ln := spans[j]
		switch {
		case ln.kind == lineListItem:
			markerCol = ln.indent
			j++
		case ln.kind == lineBlank:
			k := j
			for k < hi && spans[k].kind == lineBlank {
				k++
			}
			if k < hi && (spans[k].kind == lineListItem || (spans[k].kind != lineBlank && spans[k].indent > markerCol)) {
				j = k
				continue
			}
			return j
		case ln.kind != lineFenceOpen && ln.kind != lineFenceClose && ln.indent > markerCol:
			j++
		default:
			return j
		}
	}
	return j
}

// buildListRun turns a run of list lines into sibling List blocks. Items at
// the base marker column extend the current list while the marker family
// holds; a family switch starts a new sibling list. Lines indented deeper
// than an item's marker column become that item's children via a recursive
// build scoped to the deeper slice.
func buildListRun(spans []lineSpan, lo, hi int) []Block {
	base := spans[lo].indent
	var blocks []Block
	var cur *List

	i := lo
	for i < hi {
		ln := spans[i]
		if ln.kind == lineBlank {
			i++
			continue
		}
		if ln.kind != lineListItem || ln.indent > base {
			// Deep content with no owning item at this level; degrade into
			// a nested build so nothing is lost.
			j := i
			for j < hi && (spans[j].kind == lineBlank || spans[j].indent > base) {
				j++
			}
			blocks = append(blocks, buildBlocks(spans, i, j)...)
			i = j
			continue
		}

		if cur == nil || cur.Ordered != ln.ordered {
			cur = &List{Ordered: ln.ordered}
			blocks = append(blocks, cur)
		}
		item := &ListItem{Content: parseInline(ln.content)}
		cur.Items = append(cur.Items, item)

		j := i + 1
		for j < hi && (spans[j].kind == lineBlank || spans[j].indent > ln.indent) {
			j++
		}
		for j > i+1 && spans[j-1].kind == lineBlank {
			j--
		}
		if j > i+1 {
			item.Children = buildBlocks(spans, i+1, j)
		}
		i = j
	}
	return blocks
}

func buildTable(rows []lineSpan) *Table {
	header := splitTableCells(rows[0].content)
	aligns := make([]Alignment, len(header))
	for i, cell := range splitTableCells(rows[1].content) {
		if i < len(aligns) {
			aligns[i] = separatorAlignment(cell)
		}
	}

	t := &Table{Alignments: aligns}
	for _, cell := range header {
		t.Header = append(t.Header, parseInline(cell))
	}
	for _, row := range rows[2:] {
		cells := splitTableCells(row.content)
		parsed := make([]InlineSeq, len(cells))
		for i, cell := range cells {
			parsed[i] = parseInline(cell)
		}
		t.Rows = append(t.Rows, parsed)
	}
	return t
}

// paragraphBlocks parses paragraph text and hoists any top-level inline
// images out into block-level Image nodes, splitting the paragraph around
// them. A paragraph that was only an image yields just the Image block.
func paragraphBlocks(text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	seq := parseInline(text)

	var blocks []Block
	var pending InlineSeq
	flush := func() {
		if len(pending) > 0 && strings.TrimSpace(plainText(pending)) != "" {
			blocks = append(blocks, &Paragraph{Content: pending})
		}
		pending = nil
	}
	for _, sp := range seq {
		if img, ok := sp.(*InlineImage); ok {
			flush()
			blocks = append(blocks, &Image{Src: img.Src, Alt: img.Alt, Title: img.Title})
			continue
		}
		pending = append(pending, sp)
	}
	flush()
	return blocks
}

var (
	htmlFigureRE = regexp.MustCompile(`(?is)^<figure[^>]*>\s*<img\s+([^>]+?)\s*/?>\s*(?:<figcaption[^>]*>(.*?)</figcaption>)?\s*</figure>$`)
	htmlImgRE    = regexp.MustCompile(`(?is)^<img\s+([^>]+?)\s*/?>$`)
	srcAttrRE    = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']+)["']`)
	altAttrRE    = regexp.MustCompile(`(?i)alt\s*=\s*["']([^"']*)["']`)
	tagStripRE   = regexp.MustCompile(`<[^>]+>`)
)

// liftHTMLImage recognizes figure/img markup standing alone as a block and
// lifts it to an Image node. Anything else returns nil and stays raw.
func liftHTMLImage(html string) *Image {
	html = strings.TrimSpace(html)

	var attrs, caption string
	if m := htmlFigureRE.FindStringSubmatch(html); m != nil {
		attrs, caption = m[1], m[2]
	} else if m := htmlImgRE.FindStringSubmatch(html); m != nil {
		attrs = m[1]
	} else {
		return nil
	}

	src := srcAttrRE.FindStringSubmatch(attrs)
	if src == nil {
		return nil
	}
	alt := ""
	if m := altAttrRE.FindStringSubmatch(attrs); m != nil {
		alt = m[1]
	}
	caption = strings.TrimSpace(tagStripRE.ReplaceAllString(caption, ""))
	return &Image{Src: src[1], Alt: alt, Title: caption}
}
