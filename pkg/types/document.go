// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"regexp"
	"time"
)

// ParseResult is the outcome of sending a PDF through the document-parse
// collaborator: flat Markdown plus any figure images extracted alongside it.
type ParseResult struct {
	// Markdown is the raw converted text. Headings arrive flattened to a
	// single level; the refine stage reassigns depth.
	Markdown string `json:"markdown" yaml:"markdown"`

	// Images maps element identifiers to base64-encoded PNG payloads for
	// figures, charts, and diagrams found in the document.
	Images map[string]string `json:"images,omitempty" yaml:"images,omitempty"`

	// Pages is the page count reported by PDF pre-flight validation.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// InlineImages returns the Markdown with image references rewritten as
// base64 data URIs so the document is self-contained.
func (r *ParseResult) InlineImages() string {
	out := r.Markdown
	for id, data := range r.Images {
		ref := regexp.MustCompile(`!\[([^\]]*)\]\(` + regexp.QuoteMeta(id) + `\)`)
		out = ref.ReplaceAllString(out, fmt.Sprintf("![$1](data:image/png;base64,%s)", data))
	}
	return out
}

// DocumentRecord is a curated document as persisted by the store.
type DocumentRecord struct {
	// ID is a short unique identifier assigned at save time.
	ID string `json:"id" yaml:"id"`

	// Owner identifies who uploaded the document. Listing and deletion
	// are always scoped to an owner.
	Owner string `json:"owner" yaml:"owner"`

	// Filename is the original upload name.
	Filename string `json:"filename" yaml:"filename"`

	// Markdown is the refined document content.
	Markdown string `json:"markdown" yaml:"markdown"`

	// Score is the blended curation score in [0,100].
	Score int `json:"score" yaml:"score"`

	// Details holds the full CurationReport serialized as JSON.
	Details string `json:"details,omitempty" yaml:"details,omitempty"`

	// CreatedAt is the save timestamp (UTC).
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
