// Package document parses a markdown source file into its frontmatter
// envelope and body, and resolves the fields a post submission needs.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
)

var (
	// ErrNoTitle reports a document with neither a title field nor a way to
	// derive one.
	ErrNoTitle = errors.New("document: missing title")
	// ErrInvalidFrontmatter reports frontmatter that could not be decoded.
	ErrInvalidFrontmatter = errors.New("document: invalid frontmatter")
)

// Format selects how the body is sent to WordPress.
type Format string

const (
	// FormatRaw sends the markdown body untouched.
	FormatRaw Format = "raw"
	// FormatGutenberg converts the body to block markup before sending.
	FormatGutenberg Format = "gutenberg"
)

// Frontmatter is the recognised envelope at the top of a source file. Keys
// not listed here land in Custom and are forwarded as-is.
type Frontmatter struct {
	ID            int                 `yaml:"id"`
	Title         string              `yaml:"title"`
	Slug          string              `yaml:"slug"`
	Date          string              `yaml:"date"`
	Status        string              `yaml:"status"`
	Excerpt       string              `yaml:"excerpt"`
	PostType      string              `yaml:"post_type"`
	Template      string              `yaml:"template"`
	Parent        int                 `yaml:"parent"`
	Author        string              `yaml:"author"`
	Categories    []string            `yaml:"categories"`
	Tags          []string            `yaml:"tags"`
	Taxonomies    map[string][]string `yaml:"taxonomies"`
	Meta          map[string]any      `yaml:"meta"`
	ACF           map[string]any      `yaml:"acf"`
	FeaturedImage string              `yaml:"featured_image"`
	Format        string              `yaml:"format"`
	Custom        map[string]any      `yaml:",inline"`
}

// Document is a parsed source file.
type Document struct {
	Frontmatter Frontmatter
	Body        string
}

// Parse splits source into frontmatter and body. A file without a
// frontmatter fence parses as an empty envelope with the whole file as body.
func Parse(source []byte) (*Document, error) {
	var fm Frontmatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &fm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	doc := &Document{Frontmatter: fm, Body: string(body)}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks the envelope fields that have a constrained shape.
func (d *Document) Validate() error {
	fm := &d.Frontmatter
	return validation.ValidateStruct(fm,
		validation.Field(&fm.Status, validation.In("", "publish", "draft", "pending", "private", "future")),
		validation.Field(&fm.Format, validation.In("", string(FormatRaw), string(FormatGutenberg))),
		validation.Field(&fm.Parent, validation.Min(0)),
		validation.Field(&fm.ID, validation.Min(0)),
	)
}

// Title returns the frontmatter title, falling back to the first heading in
// the body.
func (d *Document) Title() (string, error) {
	if d.Frontmatter.Title != "" {
		return d.Frontmatter.Title, nil
	}
	for _, line := range strings.Split(d.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#")), nil
		}
	}
	return "", ErrNoTitle
}

// Slug returns the frontmatter slug, or one normalized from the title.
func (d *Document) Slug() (string, error) {
	if d.Frontmatter.Slug != "" {
		return d.Frontmatter.Slug, nil
	}
	title, err := d.Title()
	if err != nil {
		return "", err
	}
	normalized, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("document: slug from title: %w", err)
	}
	return normalized, nil
}

// Status returns the posting status, with draft forcing an override.
func (d *Document) Status(draft bool) string {
	if draft {
		return "draft"
	}
	if d.Frontmatter.Status != "" {
		return d.Frontmatter.Status
	}
	return "publish"
}

// Endpoint maps the post type to its REST endpoint. A custom post type is
// assumed to use its own name as rest base.
func (d *Document) Endpoint() string {
	switch d.Frontmatter.PostType {
	case "", "post":
		return "posts"
	case "page":
		return "pages"
	default:
		return d.Frontmatter.PostType
	}
}

// ResolveFormat applies the precedence between the CLI flags, the
// frontmatter, and the configured default. Raw is the final fallback.
func ResolveFormat(flagFormat, fmFormat, configFormat string) Format {
	for _, candidate := range []string{flagFormat, fmFormat, configFormat} {
		switch Format(candidate) {
		case FormatRaw, FormatGutenberg:
			return Format(candidate)
		}
	}
	return FormatRaw
}
