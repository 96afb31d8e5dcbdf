package gutenberg

import (
	"fmt"
	"strings"
)

// Serialize walks the document in order and emits the Gutenberg wire format:
// one comment-delimited block per top-level node, blocks separated by a blank
// line. Nested blocks render as nested native markup inside their parent's
// wire block. Serialization only reads the tree; image sources are taken as
// already resolved.
func Serialize(doc *Document) string {
	var out []string
	for _, b := range doc.Blocks {
		if s := serializeBlock(b); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n\n")
}

func serializeBlock(b Block) string {
	switch v := b.(type) {
	case *Heading:
		return fmt.Sprintf("<!-- wp:heading {\"level\":%d} -->\n<h%d class=\"wp-block-heading\">%s</h%d>\n<!-- /wp:heading -->",
			v.Level, v.Level, renderInline(v.Content), v.Level)

	case *Paragraph:
		return fmt.Sprintf("<!-- wp:paragraph -->\n<p>%s</p>\n<!-- /wp:paragraph -->", renderInline(v.Content))

	case *List:
		if v.Ordered {
			return fmt.Sprintf("<!-- wp:list {\"ordered\":true} -->\n%s\n<!-- /wp:list -->", renderList(v))
		}
		return fmt.Sprintf("<!-- wp:list -->\n%s\n<!-- /wp:list -->", renderList(v))

	case *Quote:
		var b strings.Builder
		for _, child := range v.Children {
			b.WriteString(renderNested(child))
		}
		return fmt.Sprintf("<!-- wp:quote -->\n<blockquote class=\"wp-block-quote\">%s</blockquote>\n<!-- /wp:quote -->", b.String())

	case *CodeBlock:
		attrs := ""
		class := ""
		if v.Language != "" {
			attrs = fmt.Sprintf(" {\"language\":\"%s\"}", jsonEscape(v.Language))
			class = fmt.Sprintf(" class=\"language-%s\"", escapeAttr(v.Language))
		}
		return fmt.Sprintf("<!-- wp:code%s -->\n<pre class=\"wp-block-code\"><code%s>%s</code></pre>\n<!-- /wp:code -->",
			attrs, class, escapeHTML(v.RawText))

	case *Table:
		return fmt.Sprintf("<!-- wp:table -->\n<figure class=\"wp-block-table\"><table>%s</table></figure>\n<!-- /wp:table -->", renderTable(v))

	case *Image:
		return renderFigure(v.Src, v.Alt, v.Caption(), v.MediaID)

	case *Rule:
		return "<!-- wp:separator -->\n<hr class=\"wp-block-separator has-alpha-channel-opacity\"/>\n<!-- /wp:separator -->"

	case *RawPassthrough:
		return v.Text
	}
	return ""
}

// renderNested renders a block as inner markup inside a parent wire block,
// without its own comment delimiters.
func renderNested(b Block) string {
	switch v := b.(type) {
	case *Paragraph:
		return fmt.Sprintf("<p>%s</p>", renderInline(v.Content))
	case *Heading:
		return fmt.Sprintf("<h%d>%s</h%d>", v.Level, renderInline(v.Content), v.Level)
	case *List:
		return renderList(v)
	case *Quote:
		var sb strings.Builder
		for _, child := range v.Children {
			sb.WriteString(renderNested(child))
		}
		return fmt.Sprintf("<blockquote>%s</blockquote>", sb.String())
	case *CodeBlock:
		return fmt.Sprintf("<pre><code>%s</code></pre>", escapeHTML(v.RawText))
	case *Image:
		return renderFigure(v.Src, v.Alt, v.Caption(), v.MediaID)
	case *Rule:
		return "<hr/>"
	case *RawPassthrough:
		return v.Text
	}
	return ""
}

// renderList emits one native list element containing every item of the
// List, never one element per item. Nested child blocks render inside the
// owning <li>.
func renderList(l *List) string {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>", tag)
	for _, item := range l.Items {
		b.WriteString("\n<li>")
		b.WriteString(renderInline(item.Content))
		for _, child := range item.Children {
			b.WriteString("\n")
			b.WriteString(renderNested(child))
		}
		b.WriteString("</li>")
	}
	fmt.Fprintf(&b, "\n</%s>", tag)
	return b.String()
}

func renderTable(t *Table) string {
	align := func(col int) string {
		if col >= len(t.Alignments) {
			return ""
		}
		switch t.Alignments[col] {
		case AlignLeft:
			return " class=\"has-text-align-left\""
		case AlignCenter:
			return " class=\"has-text-align-center\""
		case AlignRight:
			return " class=\"has-text-align-right\""
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("<thead><tr>")
	for i, cell := range t.Header {
		fmt.Fprintf(&b, "<th%s>%s</th>", align(i), renderInline(cell))
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			fmt.Fprintf(&b, "<td%s>%s</td>", align(i), renderInline(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody>")
	return b.String()
}

// renderFigure emits the structural image wrapper. The figure element is
// unconditional; the figcaption appears only when the caption rule yields
// text. A known media id adds the id attribute and wp-image class the block
// editor expects.
func renderFigure(src, alt, caption string, mediaID int) string {
	attrs := "{\"sizeSlug\":\"full\",\"linkDestination\":\"none\",\"align\":\"center\"}"
	imgClass := ""
	if mediaID > 0 {
		attrs = fmt.Sprintf("{\"id\":%d,\"sizeSlug\":\"full\",\"linkDestination\":\"none\",\"align\":\"center\"}", mediaID)
		imgClass = fmt.Sprintf(" class=\"wp-image-%d\"", mediaID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<!-- wp:image %s -->\n", attrs)
	fmt.Fprintf(&b, "<figure class=\"wp-block-image aligncenter size-full\"><img src=\"%s\" alt=\"%s\"%s/>", escapeAttr(src), escapeAttr(alt), imgClass)
	if caption != "" {
		fmt.Fprintf(&b, "<figcaption class=\"wp-element-caption\">%s</figcaption>", escapeHTML(caption))
	}
	b.WriteString("</figure>\n<!-- /wp:image -->")
	return b.String()
}

func renderInline(seq InlineSeq) string {
	var b strings.Builder
	for _, sp := range seq {
		switch v := sp.(type) {
		case *Text:
			b.WriteString(escapeHTML(v.Text))
		case *Bold:
			fmt.Fprintf(&b, "<strong>%s</strong>", renderInline(v.Content))
		case *Italic:
			fmt.Fprintf(&b, "<em>%s</em>", renderInline(v.Content))
		case *Strikethrough:
			fmt.Fprintf(&b, "<del>%s</del>", renderInline(v.Content))
		case *InlineCode:
			fmt.Fprintf(&b, "<code>%s</code>", escapeHTML(v.Code))
		case *Link:
			if v.Title != "" {
				fmt.Fprintf(&b, "<a href=\"%s\" title=\"%s\">%s</a>", escapeAttr(v.Href), escapeAttr(v.Title), renderInline(v.Content))
			} else {
				fmt.Fprintf(&b, "<a href=\"%s\">%s</a>", escapeAttr(v.Href), renderInline(v.Content))
			}
		case *InlineImage:
			b.WriteString(renderFigure(v.Src, v.Alt, v.Caption(), v.MediaID))
		}
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

func escapeAttr(s string) string { return htmlEscaper.Replace(s) }

var jsonEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"\"", "\\\"",
)

func jsonEscape(s string) string { return jsonEscaper.Replace(s) }
