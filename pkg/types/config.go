package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "silverforge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ParseConfig holds settings for the document-parse stage.
type ParseConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the Upstage document-parse API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ExtractImages requests base64 figure payloads alongside the Markdown.
	ExtractImages bool `json:"extract_images" yaml:"extract_images"`

	// PapersDir is the base directory for papers (contains raw/, markdown/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// CurationConfig holds settings for the quality curation stage.
type CurationConfig struct {
	// Model is the judgment model identifier (e.g. "solar-pro").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the judgment API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxChars caps the document prefix sent to the judgment model
	// (default 3000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// ReportsDir is where batch curation reports are written.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`
}

// FetchConfig holds settings for the arXiv download stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the pause between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// PapersDir is the base directory for papers (contains raw/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// StoreConfig holds settings for the document store.
type StoreConfig struct {
	// DataDir is the directory containing the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default cap on list and search results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP job server.
type ServerConfig struct {
	// Addr is the listen address (default ":8420").
	Addr string `json:"addr" yaml:"addr"`

	// MaxUploadBytes caps the size of a single uploaded PDF (default 50 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Owner is the identity attached to documents persisted by the server.
	Owner string `json:"owner" yaml:"owner"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Parse    ParseConfig    `json:"parse" yaml:"parse"`
	Curation CurationConfig `json:"curation" yaml:"curation"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}
