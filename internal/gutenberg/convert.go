// Package gutenberg converts a markdown dialect into an ordered tree of
// structural blocks and serializes that tree into the WordPress Gutenberg
// wire format (comment-delimited blocks wrapping inner HTML markup).
//
// The pipeline is Line Classifier → Block Tree Builder (using the inline
// span parser for leaf text) → Serializer. Parsing is total: unrecognized
// syntax degrades to the nearest enclosing literal form and never returns
// an error. Image resolution is a separate pass owned by the images
// package; this package never performs I/O.
package gutenberg

import (
	"fmt"
	"unicode/utf8"
)

// Convert parses markdown source into a Document. The only failure mode is
// input that is not decodable text; every markdown construct, recognized or
// not, produces a tree.
func Convert(source []byte) (*Document, error) {
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("gutenberg: source is not valid UTF-8")
	}
	return build(classify(string(source))), nil
}
