// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

func withArxivServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	orig := arxivPDFBase
	arxivPDFBase = srv.URL
	t.Cleanup(func() {
		arxivPDFBase = orig
		srv.Close()
	})
	return srv
}

func TestFetchPaper(t *testing.T) {
	withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/1706.03762.pdf") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte("%PDF-1.4 fake body"))
	})

	papersDir := t.TempDir()
	cfg := types.FetchConfig{PapersDir: papersDir}
	var log bytes.Buffer

	skipped, err := FetchPaper(context.Background(), http.DefaultClient,
		Paper{ArxivID: "1706.03762", Slug: "attention_is_all_you_need"}, cfg, &log)
	if err != nil {
		t.Fatalf("FetchPaper: %v", err)
	}
	if skipped {
		t.Error("fresh download reported as skipped")
	}

	data, err := os.ReadFile(filepath.Join(papersDir, "raw", "attention_is_all_you_need.pdf"))
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if string(data) != "%PDF-1.4 fake body" {
		t.Errorf("content = %q", data)
	}
}

func TestFetchPaper_SkipsExisting(t *testing.T) {
	called := false
	withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	papersDir := t.TempDir()
	rawDir := filepath.Join(papersDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(rawDir, "bert.pdf"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	skipped, err := FetchPaper(context.Background(), http.DefaultClient,
		Paper{ArxivID: "1810.04805", Slug: "bert"}, types.FetchConfig{PapersDir: papersDir}, &log)
	if err != nil {
		t.Fatalf("FetchPaper: %v", err)
	}
	if !skipped {
		t.Error("existing file should be skipped")
	}
	if called {
		t.Error("no download may happen for an existing file")
	}
}

func TestFetchPaper_HTTPError(t *testing.T) {
	withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	var log bytes.Buffer
	_, err := FetchPaper(context.Background(), http.DefaultClient,
		Paper{ArxivID: "0000.00000"}, types.FetchConfig{PapersDir: t.TempDir()}, &log)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("err = %v, want HTTP 404", err)
	}
}

func TestFetchBatch(t *testing.T) {
	withArxivServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("%PDF"))
	})

	papers := []Paper{
		{ArxivID: "1706.03762", Slug: "attention"},
		{ArxivID: "bad.id", Slug: "broken"},
	}
	var log bytes.Buffer

	result := FetchBatch(context.Background(), http.DefaultClient, papers,
		types.FetchConfig{PapersDir: t.TempDir()}, &log)

	if result.Downloaded != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 downloaded and 1 failed", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should report the broken download")
	}
	if !strings.Contains(log.String(), "Batch summary: 1 downloaded") {
		t.Errorf("log missing summary: %q", log.String())
	}
}
