// Package images resolves image references inside a converted document:
// local files are read and uploaded, remote URLs are re-hosted, and every
// source is rewritten in place at its fixed structural position.
package images

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ediblesites/wp-poster/internal/gutenberg"
	"github.com/ediblesites/wp-poster/internal/logging"
)

// ErrNotFound reports a local image path that does not exist on disk.
var ErrNotFound = errors.New("images: file not found")

// Mode selects between live resolution and a side-effect free preview.
type Mode int

const (
	// ModeLive reads files and calls the upload collaborator.
	ModeLive Mode = iota
	// ModePreview leaves every src untouched and performs zero I/O.
	ModePreview
)

// Upload is the result reported by the upload collaborator. MediaID is the
// hosted attachment id when the destination supplies one (0 otherwise).
type Upload struct {
	URL     string
	MediaID int
}

// Uploader is the external collaborator that hosts image bytes or remote
// URLs. The pipeline only decides what to upload and how to splice results
// back; the transfer itself belongs to the implementation.
type Uploader interface {
	UploadFile(ctx context.Context, data []byte, nameHint string) (Upload, error)
	UploadURL(ctx context.Context, url string) (Upload, error)
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithWorkers bounds the number of concurrent image resolutions.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout sets the per-image resolution timeout. A timeout is treated
// exactly like an upload failure.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithBaseDir resolves relative local paths against dir, typically the
// directory of the source document.
func WithBaseDir(dir string) Option {
	return func(r *Resolver) { r.baseDir = dir }
}

// WithLogger attaches a logger; the default drops everything.
func WithLogger(logger logging.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReadFile overrides local file access, used by tests.
func WithReadFile(fn func(path string) ([]byte, error)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.readFile = fn
		}
	}
}

// Resolver walks a Document, classifies every image source, and rewrites the
// tree per the replacement policy. Each invocation is independent: there is
// no deduplication and no cache across runs.
type Resolver struct {
	uploader Uploader
	workers  int
	timeout  time.Duration
	baseDir  string
	logger   logging.Logger
	readFile func(path string) ([]byte, error)
}

// NewResolver constructs a resolver around the upload collaborator.
func NewResolver(uploader Uploader, opts ...Option) *Resolver {
	r := &Resolver{
		uploader: uploader,
		workers:  4,
		timeout:  60 * time.Second,
		logger:   logging.NoOp(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ref is one image occurrence in walk order. Block images and inline image
// spans share the same policy; the pointer identity is the structural
// position used to apply outcomes deterministically.
type ref struct {
	src     string
	rewrite func(Upload)
	node    any
}

// outcome describes the decision for one image after resolution.
type outcome struct {
	upload Upload
	remove bool
	keep   bool
}

// Resolve rewrites every image source in doc. Independent images resolve
// concurrently under the worker bound, but outcomes are applied back using
// each image's fixed position from the depth-first walk, never arrival
// order, so output is deterministic given deterministic upload results.
// In preview mode Resolve is a synchronous no-op.
func (r *Resolver) Resolve(ctx context.Context, doc *gutenberg.Document, mode Mode) error {
	if mode == ModePreview || doc == nil {
		return nil
	}

	refs := collect(doc)
	if len(refs) == 0 {
		return nil
	}

	outcomes := make([]outcome, len(refs))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = r.resolveOne(ctx, refs[i])
		}(i)
	}
	wg.Wait()

	removed := make(map[any]bool)
	for i, rf := range refs {
		out := outcomes[i]
		switch {
		case out.remove:
			removed[rf.node] = true
		case out.keep:
			// Original src stays in place.
		default:
			rf.rewrite(out.upload)
		}
	}
	if len(removed) > 0 {
		doc.Blocks = prune(doc.Blocks, removed)
	}
	return ctx.Err()
}

// IsRemote classifies an image source: a network scheme prefix means remote,
// anything else is a local-relative path.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ReadLocal reads an on-disk image, resolving relative paths against
// baseDir.
func ReadLocal(baseDir, src string) ([]byte, error) {
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
	}
	return data, nil
}

func (r *Resolver) resolveOne(ctx context.Context, rf ref) outcome {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if IsRemote(rf.src) {
		up, err := r.uploader.UploadURL(ctx, rf.src)
		if err != nil {
			// Remote images degrade to direct linking rather than
			// disappearing.
			r.logger.Warn("remote image upload failed, keeping original URL", "src", rf.src, "error", err)
			return outcome{keep: true}
		}
		r.logger.Info("remote image re-hosted", "src", rf.src, "url", up.URL)
		return outcome{upload: up}
	}

	path := rf.src
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := r.readFile(path)
	if err != nil {
		r.logger.Warn("local image not found, removing node", "src", rf.src, "error", err)
		return outcome{remove: true}
	}
	up, err := r.uploader.UploadFile(ctx, data, filepath.Base(rf.src))
	if err != nil {
		// Unexpected for bytes already in hand; same policy as not-found.
		r.logger.Warn("local image upload rejected, removing node", "src", rf.src, "error", err)
		return outcome{remove: true}
	}
	r.logger.Info("local image uploaded", "src", rf.src, "url", up.URL)
	return outcome{upload: up}
}

// collect gathers every image reference in depth-first, left-to-right block
// order. This walk order is also the rewrite order.
func collect(doc *gutenberg.Document) []ref {
	var refs []ref
	var walkBlocks func(blocks []gutenberg.Block)
	var walkSpans func(seq gutenberg.InlineSeq)

	walkSpans = func(seq gutenberg.InlineSeq) {
		for _, sp := range seq {
			switch v := sp.(type) {
			case *gutenberg.InlineImage:
				img := v
				refs = append(refs, ref{
					src:  img.Src,
					node: img,
					rewrite: func(up Upload) {
						img.Src = up.URL
						img.MediaID = up.MediaID
					},
				})
			case *gutenberg.Bold:
				walkSpans(v.Content)
			case *gutenberg.Italic:
				walkSpans(v.Content)
			case *gutenberg.Strikethrough:
				walkSpans(v.Content)
			case *gutenberg.Link:
				walkSpans(v.Content)
			}
		}
	}

	walkBlocks = func(blocks []gutenberg.Block) {
		for _, b := range blocks {
			switch v := b.(type) {
			case *gutenberg.Image:
				img := v
				refs = append(refs, ref{
					src:  img.Src,
					node: img,
					rewrite: func(up Upload) {
						img.Src = up.URL
						img.MediaID = up.MediaID
					},
				})
			case *gutenberg.Paragraph:
				walkSpans(v.Content)
			case *gutenberg.Heading:
				walkSpans(v.Content)
			case *gutenberg.List:
				for _, item := range v.Items {
					walkSpans(item.Content)
					walkBlocks(item.Children)
				}
			case *gutenberg.Quote:
				walkBlocks(v.Children)
			case *gutenberg.Table:
				for _, cell := range v.Header {
					walkSpans(cell)
				}
				for _, row := range v.Rows {
					for _, cell := range row {
						walkSpans(cell)
					}
				}
			}
		}
	}

	walkBlocks(doc.Blocks)
	return refs
}

// prune rebuilds block sequences without removed image nodes. Paragraphs
// whose content becomes empty as a result are dropped too; everything else
// keeps its position.
func prune(blocks []gutenberg.Block, removed map[any]bool) []gutenberg.Block {
	out := blocks[:0]
	for _, b := range blocks {
		switch v := b.(type) {
		case *gutenberg.Image:
			if removed[v] {
				continue
			}
		case *gutenberg.Paragraph:
			v.Content = pruneSpans(v.Content, removed)
			if len(v.Content) == 0 {
				continue
			}
		case *gutenberg.Heading:
			v.Content = pruneSpans(v.Content, removed)
		case *gutenberg.List:
			for _, item := range v.Items {
				item.Content = pruneSpans(item.Content, removed)
				item.Children = prune(item.Children, removed)
			}
		case *gutenberg.Quote:
			v.Children = prune(v.Children, removed)
		case *gutenberg.Table:
			for i := range v.Header {
				v.Header[i] = pruneSpans(v.Header[i], removed)
			}
			for _, row := range v.Rows {
				for i := range row {
					row[i] = pruneSpans(row[i], removed)
				}
			}
		}
		out = append(out, b)
	}
	return out
}

func pruneSpans(seq gutenberg.InlineSeq, removed map[any]bool) gutenberg.InlineSeq {
	out := seq[:0]
	for _, sp := range seq {
		switch v := sp.(type) {
		case *gutenberg.InlineImage:
			if removed[v] {
				continue
			}
		case *gutenberg.Bold:
			v.Content = pruneSpans(v.Content, removed)
		case *gutenberg.Italic:
			v.Content = pruneSpans(v.Content, removed)
		case *gutenberg.Strikethrough:
			v.Content = pruneSpans(v.Content, removed)
		case *gutenberg.Link:
			v.Content = pruneSpans(v.Content, removed)
		}
		out = append(out, sp)
	}
	return out
}
