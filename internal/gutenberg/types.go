package gutenberg

// Document is an ordered sequence of top-level blocks. Order is significant
// and preserved through every pass: building, image resolution, and
// serialization never reorder blocks.
type Document struct {
	Blocks []Block
}

// Block is a structural unit of content. Implementations are the tagged
// variants below; nesting depth is unbounded.
type Block interface {
	block()
}

// Heading carries a level between 1 and 6 and inline content.
type Heading struct {
	Level   int
	Content InlineSeq
}

// Paragraph carries inline content assembled from one or more source lines.
type Paragraph struct {
	Content InlineSeq
}

// List groups consecutive items of the same marker family. Switching between
// ordered and unordered markers at the same indentation starts a new sibling
// List rather than continuing this one.
type List struct {
	Ordered bool
	Items   []*ListItem
}

// ListItem holds the item's own inline content plus any nested blocks
// (sub-lists, quotes) that were indented under its marker column.
type ListItem struct {
	Content  InlineSeq
	Children []Block
}

// Quote wraps one or more child blocks, typically paragraphs but possibly
// nested lists or further quotes.
type Quote struct {
	Children []Block
}

// CodeBlock captures fenced code verbatim. RawText is opaque: it is never
// inline-parsed and is HTML-escaped only at serialization time.
type CodeBlock struct {
	Language string
	RawText  string
}

// Alignment describes per-column table cell alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table holds a header row, data rows, and one alignment per column.
type Table struct {
	Header     []InlineSeq
	Rows       [][]InlineSeq
	Alignments []Alignment
}

// Image is a block-level image reference. Src is rewritten in place by the
// image resolution pipeline; MediaID is populated when the upload collaborator
// reports the hosted attachment id (0 means unknown).
type Image struct {
	Src     string
	Alt     string
	Title   string
	MediaID int
}

// Rule is a horizontal separator.
type Rule struct{}

// RawPassthrough carries shortcodes and embedded block markup verbatim,
// uninterpreted, at its original position.
type RawPassthrough struct {
	Text string
}

func (*Heading) block()        {}
func (*Paragraph) block()      {}
func (*List) block()           {}
func (*Quote) block()          {}
func (*CodeBlock) block()      {}
func (*Table) block()          {}
func (*Image) block()          {}
func (*Rule) block()           {}
func (*RawPassthrough) block() {}

// InlineSeq is an ordered sequence of inline spans.
type InlineSeq []Span

// Span is an inline-level formatting unit. Spans may nest, e.g. a Bold span
// containing a Link.
type Span interface {
	span()
}

// Text is literal text.
type Text struct {
	Text string
}

// Bold wraps nested content in strong emphasis.
type Bold struct {
	Content InlineSeq
}

// Italic wraps nested content in emphasis.
type Italic struct {
	Content InlineSeq
}

// Strikethrough wraps nested content in a deletion span.
type Strikethrough struct {
	Content InlineSeq
}

// InlineCode is a literal code span; Code is never parsed further.
type InlineCode struct {
	Code string
}

// Link carries a destination, an optional title, and recursively parsed
// content.
type Link struct {
	Href    string
	Title   string
	Content InlineSeq
}

// InlineImage is an image reference inside inline content. It shares the
// resolution and caption rules of the block-level Image.
type InlineImage struct {
	Src     string
	Alt     string
	Title   string
	MediaID int
}

func (*Text) span()          {}
func (*Bold) span()          {}
func (*Italic) span()        {}
func (*Strikethrough) span() {}
func (*InlineCode) span()    {}
func (*Link) span()          {}
func (*InlineImage) span()   {}

// Caption returns the figcaption text for an image per the caption rule:
// title wins when both title and alt are present, alt is used when only alt
// is present, and the empty string means no caption element. The figure
// wrapper itself does not depend on this value.
func (img *Image) Caption() string {
	if img.Title != "" {
		return img.Title
	}
	return img.Alt
}

// Caption mirrors Image.Caption for inline image spans.
func (img *InlineImage) Caption() string {
	if img.Title != "" {
		return img.Title
	}
	return img.Alt
}
