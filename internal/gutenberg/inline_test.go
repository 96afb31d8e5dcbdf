package gutenberg

import "testing"

// renderInline gives a compact, order-sensitive view of a span tree, which
// keeps these assertions readable.
func inlineHTML(t *testing.T, input string) string {
	t.Helper()
	return renderInline(parseInline(input))
}

func TestParseInlineBasics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"**bold**", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"~~gone~~", "<del>gone</del>"},
		{"`code`", "<code>code</code>"},
		{"a **b** c", "a <strong>b</strong> c"},
		{"**bold *nested italic* more**", "<strong>bold <em>nested italic</em> more</strong>"},
		{"*a **b** c*", "<em>a <strong>b</strong> c</em>"},
	}
	for _, tc := range cases {
		if got := inlineHTML(t, tc.in); got != tc.want {
			t.Errorf("parseInline(%q) rendered %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseInlineUnclosedDelimiters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"**unclosed", "**unclosed"},
		{"*lonely", "*lonely"},
		{"~~half", "~~half"},
		{"`tick", "`tick"},
		{"a ** b * c", "a ** b * c"},
	}
	for _, tc := range cases {
		if got := inlineHTML(t, tc.in); got != tc.want {
			t.Errorf("parseInline(%q) rendered %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseInlineCodeSuppressesMarkup(t *testing.T) {
	got := inlineHTML(t, "`**not bold**`")
	want := "<code>**not bold**</code>"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseInlineLinks(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[text](https://x.test)", "<a href=\"https://x.test\">text</a>"},
		{"[text](https://x.test \"the title\")", "<a href=\"https://x.test\" title=\"the title\">text</a>"},
		{"[**bold** label](https://x.test)", "<a href=\"https://x.test\"><strong>bold</strong> label</a>"},
		{"[orphan", "[orphan"},
		{"[no target]", "[no target]"},
	}
	for _, tc := range cases {
		if got := inlineHTML(t, tc.in); got != tc.want {
			t.Errorf("parseInline(%q) rendered %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseInlineImage(t *testing.T) {
	seq := parseInline("before ![alt text](pic.png \"a title\") after")
	if len(seq) != 3 {
		t.Fatalf("got %d spans, want 3", len(seq))
	}
	img, ok := seq[1].(*InlineImage)
	if !ok {
		t.Fatalf("middle span is %T, want *InlineImage", seq[1])
	}
	if img.Src != "pic.png" || img.Alt != "alt text" || img.Title != "a title" {
		t.Errorf("image = %+v", *img)
	}
}

func TestParseInlineBangWithoutBracket(t *testing.T) {
	if got := inlineHTML(t, "hello! world"); got != "hello! world" {
		t.Fatalf("got %q", got)
	}
}

func TestParseInlineMergesAdjacentText(t *testing.T) {
	seq := parseInline("a*b")
	if len(seq) != 1 {
		t.Fatalf("got %d spans, want 1 merged text span: %#v", len(seq), seq)
	}
	txt, ok := seq[0].(*Text)
	if !ok || txt.Text != "a*b" {
		t.Fatalf("got %#v, want merged text %q", seq[0], "a*b")
	}
}

func TestCaptionPrecedence(t *testing.T) {
	both := &Image{Alt: "alt", Title: "title"}
	if got := both.Caption(); got != "title" {
		t.Errorf("caption with title = %q, want %q", got, "title")
	}
	altOnly := &Image{Alt: "alt"}
	if got := altOnly.Caption(); got != "alt" {
		t.Errorf("caption with alt only = %q, want %q", got, "alt")
	}
	neither := &Image{}
	if got := neither.Caption(); got != "" {
		t.Errorf("caption with neither = %q, want empty", got)
	}
}

func TestPlainText(t *testing.T) {
	got := plainText(parseInline("a **b** [c](x) `d`"))
	if got != "a b c d" {
		t.Fatalf("plainText = %q, want %q", got, "a b c d")
	}
}
