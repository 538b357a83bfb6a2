// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse converts PDF bytes into flat Markdown through the Upstage
// document-parse API. The returned headings are single-level; the refine
// stage rebuilds the hierarchy.
package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/httputil"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// upstageAPIURL is the document-parse endpoint. Declared as a var so tests
// can substitute an httptest server.
var upstageAPIURL = "https://api.upstage.ai/v1/document-ai/document-parse"

// ErrMissingAPIKey is returned before any network attempt when no
// credential is configured.
var ErrMissingAPIKey = errors.New("upstage API key not configured")

// APIError carries a non-success status and message from the parse API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("document-parse API returned %d: %s", e.Status, e.Message)
}

// imageCategories are element categories collected into ParseResult.Images.
var imageCategories = map[string]bool{
	"figure":  true,
	"chart":   true,
	"diagram": true,
	"image":   true,
}

// Client calls the Upstage document-parse API.
type Client struct {
	// APIKey authenticates the request. An empty key fails fast with
	// ErrMissingAPIKey.
	APIKey string

	// ExtractImages requests base64 payloads for figure elements.
	ExtractImages bool

	// HTTP is the underlying client. http.DefaultClient when nil.
	HTTP *http.Client

	// MaxRetries bounds 429/5xx retries (httputil default when zero).
	MaxRetries int
}

// parseResponse is the relevant subset of the document-parse API response.
type parseResponse struct {
	Content struct {
		Markdown string `json:"markdown"`
		Text     string `json:"text"`
	} `json:"content"`
	Elements []struct {
		ID             json.Number `json:"id"`
		Category       string      `json:"category"`
		Base64Encoding string      `json:"base64_encoding"`
	} `json:"elements"`
}

// ParseFile reads the PDF at path and sends it through Parse.
func (c *Client) ParseFile(ctx context.Context, path string) (*types.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return c.Parse(ctx, f, filepath.Base(path))
}

// Parse uploads the PDF stream and returns the converted Markdown plus any
// extracted figure images. A missing API key surfaces as ErrMissingAPIKey
// without touching the network; a non-success response surfaces as an
// *APIError carrying the status and body.
func (c *Client) Parse(ctx context.Context, pdf io.Reader, filename string) (*types.ParseResult, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(fw, pdf); err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	if err := mw.WriteField("output_format", "markdown"); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if c.ExtractImages {
		if err := mw.WriteField("base64_encoding", "['figure']"); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, upstageAPIURL, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling document-parse API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var pr parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding document-parse response: %w", err)
	}

	return buildResult(&pr), nil
}

// buildResult assembles the ParseResult: Markdown content (falling back to
// plain text), the figure image map, and appended references for figures
// the converter extracted but never mentioned in the Markdown.
func buildResult(pr *parseResponse) *types.ParseResult {
	markdown := pr.Content.Markdown
	if markdown == "" {
		markdown = pr.Content.Text
	}

	images := make(map[string]string)
	for _, el := range pr.Elements {
		if !imageCategories[el.Category] || el.Base64Encoding == "" {
			continue
		}
		id := el.ID.String()
		images[id] = el.Base64Encoding

		if !strings.Contains(markdown, "!["+id+"]") && !strings.Contains(markdown, id) {
			markdown += fmt.Sprintf("\n\n![Figure %s](data:image/png;base64,%s)\n", id, el.Base64Encoding)
		}
	}

	return &types.ParseResult{Markdown: markdown, Images: images}
}
