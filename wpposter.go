// Package wpposter publishes markdown files to WordPress. A source file is
// split into its frontmatter envelope and body, the body is optionally
// converted to Gutenberg block markup with referenced images uploaded to the
// media library, and the result is created or updated via the REST API.
package wpposter

import (
	"context"
	"fmt"

	"github.com/ediblesites/wp-poster/internal/config"
	"github.com/ediblesites/wp-poster/internal/document"
	"github.com/ediblesites/wp-poster/internal/gutenberg"
	"github.com/ediblesites/wp-poster/internal/images"
	"github.com/ediblesites/wp-poster/internal/logging"
	"github.com/ediblesites/wp-poster/internal/wordpress"
)

// Config exports the configuration contract for consumers of the package.
type Config = config.Config

// Document exports the parsed source file.
type Document = document.Document

// Frontmatter exports the recognised envelope fields.
type Frontmatter = document.Frontmatter

// Format exports the body format selector.
type Format = document.Format

// Format values.
const (
	FormatRaw       = document.FormatRaw
	FormatGutenberg = document.FormatGutenberg
)

// BlockDocument exports the parsed block tree.
type BlockDocument = gutenberg.Document

// Client exports the WordPress REST client.
type Client = wordpress.Client

// PostResult exports the created or updated post summary.
type PostResult = wordpress.PostResult

// Logger exports the logging contract.
type Logger = logging.Logger

// Options controls a single submission.
type Options struct {
	// Format overrides the frontmatter and configured body format when set.
	Format string
	// Draft forces the post status to draft.
	Draft bool
	// Preview skips all network calls and returns the prepared payload.
	Preview bool
	// BaseDir resolves relative image paths, usually the source file's
	// directory.
	BaseDir string
}

// Poster drives the submission flow against a single site.
type Poster struct {
	cfg    *config.Config
	client *wordpress.Client
	logger logging.Logger
}

// New constructs a Poster from resolved configuration.
func New(cfg *config.Config, opts ...PosterOption) *Poster {
	p := &Poster{
		cfg:    cfg,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = wordpress.New(cfg.SiteURL, cfg.Username, cfg.AppPassword,
			wordpress.WithLogger(p.logger))
	}
	return p
}

// PosterOption customises a Poster.
type PosterOption func(*Poster)

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) PosterOption {
	return func(p *Poster) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClient overrides the REST client, used by tests.
func WithClient(client *wordpress.Client) PosterOption {
	return func(p *Poster) {
		p.client = client
	}
}

// Prepared is a submission ready to send: the parsed document plus the body
// content in its final format.
type Prepared struct {
	Document *document.Document
	Format   document.Format
	Content  string
}

// Prepare parses source and renders the body in the resolved format. In
// preview mode image references pass through untouched; otherwise local
// files and remote URLs are uploaded to the media library and rewritten.
func (p *Poster) Prepare(ctx context.Context, source []byte, opts Options) (*Prepared, error) {
	doc, err := document.Parse(source)
	if err != nil {
		return nil, wrapSourceError(err)
	}
	format := document.ResolveFormat(opts.Format, doc.Frontmatter.Format, p.cfg.Format)
	prepared := &Prepared{Document: doc, Format: format, Content: doc.Body}
	if format != document.FormatGutenberg {
		return prepared, nil
	}

	tree, err := gutenberg.Convert([]byte(doc.Body))
	if err != nil {
		return nil, err
	}
	mode := images.ModeLive
	if opts.Preview {
		mode = images.ModePreview
	}
	resolver := images.NewResolver(p.client,
		images.WithBaseDir(opts.BaseDir),
		images.WithLogger(p.logger))
	if err := resolver.Resolve(ctx, tree, mode); err != nil {
		return nil, err
	}
	prepared.Content = gutenberg.Serialize(tree)
	return prepared, nil
}

// Post parses, prepares and submits source, creating a new post or updating
// the one named by the frontmatter id.
func (p *Poster) Post(ctx context.Context, source []byte, opts Options) (*wordpress.PostResult, error) {
	prepared, err := p.Prepare(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	payload, err := p.buildPayload(ctx, prepared, opts)
	if err != nil {
		return nil, err
	}

	doc := prepared.Document
	endpoint := doc.Endpoint()
	if id := doc.Frontmatter.ID; id > 0 {
		p.logger.Info("updating post", "endpoint", endpoint, "id", id)
		result, err := p.client.UpdatePost(ctx, endpoint, id, payload)
		if err != nil {
			return nil, wrapSubmitError(err)
		}
		return result, nil
	}
	p.logger.Info("creating post", "endpoint", endpoint)
	result, err := p.client.CreatePost(ctx, endpoint, payload)
	if err != nil {
		return nil, wrapSubmitError(err)
	}
	return result, nil
}

func (p *Poster) buildPayload(ctx context.Context, prepared *Prepared, opts Options) (map[string]any, error) {
	doc := prepared.Document
	fm := &doc.Frontmatter

	title, err := doc.Title()
	if err != nil {
		return nil, err
	}
	postSlug, err := doc.Slug()
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"title":   title,
		"slug":    postSlug,
		"content": prepared.Content,
		"status":  doc.Status(opts.Draft),
	}
	if fm.Date != "" {
		payload["date"] = fm.Date
	}
	if fm.Excerpt != "" {
		payload["excerpt"] = fm.Excerpt
	}
	if fm.Template != "" {
		payload["template"] = fm.Template
	}
	if fm.Parent > 0 {
		payload["parent"] = fm.Parent
	}
	if len(fm.Meta) > 0 {
		payload["meta"] = fm.Meta
	}
	if len(fm.ACF) > 0 {
		payload["acf"] = fm.ACF
	}
	for key, value := range fm.Custom {
		if _, exists := payload[key]; !exists {
			payload[key] = value
		}
	}

	if fm.Author != "" {
		authorID, err := p.client.UserID(ctx, fm.Author)
		if err != nil {
			return nil, err
		}
		payload["author"] = authorID
	}
	if len(fm.Categories) > 0 {
		ids, err := p.client.EnsureTerms(ctx, "categories", fm.Categories)
		if err != nil {
			return nil, err
		}
		payload["categories"] = ids
	}
	if len(fm.Tags) > 0 {
		ids, err := p.client.EnsureTerms(ctx, "tags", fm.Tags)
		if err != nil {
			return nil, err
		}
		payload["tags"] = ids
	}
	for taxonomy, names := range fm.Taxonomies {
		base := p.client.TaxonomyRestBase(ctx, taxonomy)
		ids, err := p.client.EnsureTerms(ctx, base, names)
		if err != nil {
			return nil, err
		}
		payload[base] = ids
	}

	if fm.FeaturedImage != "" {
		upload, err := p.uploadFeatured(ctx, fm.FeaturedImage, opts.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("wpposter: featured image: %w", err)
		}
		payload["featured_media"] = upload.MediaID
	}
	return payload, nil
}

func (p *Poster) uploadFeatured(ctx context.Context, ref, baseDir string) (images.Upload, error) {
	if images.IsRemote(ref) {
		return p.client.UploadURL(ctx, ref)
	}
	data, err := images.ReadLocal(baseDir, ref)
	if err != nil {
		return images.Upload{}, err
	}
	return p.client.UploadFile(ctx, data, ref)
}
