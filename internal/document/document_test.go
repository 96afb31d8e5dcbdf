package document

import (
	"errors"
	"strings"
	"testing"
)

const sample = `---
title: Hello World
slug: hello-world
status: draft
categories:
  - Go
  - Tools
tags:
  - cli
taxonomies:
  project:
    - wp-poster
meta:
  _custom_field: value
custom_key: custom value
---
# Body heading

Body text.
`

func TestParseFrontmatter(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fm := doc.Frontmatter
	if fm.Title != "Hello World" || fm.Slug != "hello-world" || fm.Status != "draft" {
		t.Errorf("frontmatter = %+v", fm)
	}
	if len(fm.Categories) != 2 || fm.Categories[0] != "Go" {
		t.Errorf("categories = %v", fm.Categories)
	}
	if len(fm.Taxonomies["project"]) != 1 || fm.Taxonomies["project"][0] != "wp-poster" {
		t.Errorf("taxonomies = %v", fm.Taxonomies)
	}
	if fm.Meta["_custom_field"] != "value" {
		t.Errorf("meta = %v", fm.Meta)
	}
	if fm.Custom["custom_key"] != "custom value" {
		t.Errorf("custom = %v", fm.Custom)
	}
	if !strings.HasPrefix(doc.Body, "# Body heading") {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("# Just Markdown\n\ntext"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Frontmatter.Title != "" {
		t.Errorf("title = %q, want empty", doc.Frontmatter.Title)
	}
	if !strings.HasPrefix(doc.Body, "# Just Markdown") {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParseRejectsBadStatus(t *testing.T) {
	src := "---\ntitle: x\nstatus: bogus\n---\nbody"
	if _, err := Parse([]byte(src)); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestTitleFallsBackToHeading(t *testing.T) {
	doc, err := Parse([]byte("intro\n\n# The Real Title\n\nmore"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	title, err := doc.Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "The Real Title" {
		t.Errorf("title = %q", title)
	}
}

func TestTitleMissing(t *testing.T) {
	doc, err := Parse([]byte("no headings at all"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := doc.Title(); !errors.Is(err, ErrNoTitle) {
		t.Fatalf("err = %v, want ErrNoTitle", err)
	}
}

func TestSlugNormalizedFromTitle(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: \"Hello, World & Friends!\"\n---\nbody"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := doc.Slug()
	if err != nil {
		t.Fatalf("Slug: %v", err)
	}
	if strings.Contains(got, " ") || strings.Contains(got, "&") || got == "" {
		t.Errorf("slug = %q, want normalized", got)
	}
}

func TestStatusDraftOverride(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: x\nstatus: publish\n---\nbody"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.Status(true); got != "draft" {
		t.Errorf("draft override = %q", got)
	}
	if got := doc.Status(false); got != "publish" {
		t.Errorf("status = %q", got)
	}
}

func TestStatusDefault(t *testing.T) {
	doc := &Document{}
	if got := doc.Status(false); got != "publish" {
		t.Errorf("default status = %q", got)
	}
}

func TestEndpoint(t *testing.T) {
	cases := []struct {
		postType string
		want     string
	}{
		{"", "posts"},
		{"post", "posts"},
		{"page", "pages"},
		{"recipe", "recipe"},
	}
	for _, tc := range cases {
		doc := &Document{Frontmatter: Frontmatter{PostType: tc.postType}}
		if got := doc.Endpoint(); got != tc.want {
			t.Errorf("Endpoint(%q) = %q, want %q", tc.postType, got, tc.want)
		}
	}
}

func TestResolveFormatPrecedence(t *testing.T) {
	cases := []struct {
		flag, fm, cfg string
		want          Format
	}{
		{"gutenberg", "raw", "raw", FormatGutenberg},
		{"", "gutenberg", "raw", FormatGutenberg},
		{"", "", "gutenberg", FormatGutenberg},
		{"", "", "", FormatRaw},
		{"bogus", "raw", "", FormatRaw},
	}
	for _, tc := range cases {
		if got := ResolveFormat(tc.flag, tc.fm, tc.cfg); got != tc.want {
			t.Errorf("ResolveFormat(%q,%q,%q) = %q, want %q", tc.flag, tc.fm, tc.cfg, got, tc.want)
		}
	}
}
