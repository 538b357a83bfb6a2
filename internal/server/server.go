// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline over HTTP: upload PDFs, run them as
// asynchronous jobs, poll status, and download the refined Markdown.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/curate"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/parse"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/refine"
	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/store"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

const defaultMaxUploadBytes = 50 << 20

// Parser abstracts the document-parse collaborator so tests can supply a fake.
type Parser interface {
	Parse(ctx context.Context, pdf io.Reader, filename string) (*types.ParseResult, error)
}

// Server runs uploaded PDFs through the pipeline as asynchronous jobs.
// Each job owns its document and report; the only shared state is the job
// table, which the server owns.
type Server struct {
	parser  Parser
	curator *curate.Curator
	docs    *store.Store // optional; nil disables persistence
	owner   string
	maxUp   int64
	jobs    *jobTable

	// validatePDF is swapped out in tests to avoid crafting real PDFs.
	validatePDF func(io.ReadSeeker) (int, error)
}

// New creates a Server. The store may be nil, in which case completed jobs
// are kept in memory only.
func New(parser Parser, curator *curate.Curator, docs *store.Store, cfg types.ServerConfig) *Server {
	maxUp := cfg.MaxUploadBytes
	if maxUp <= 0 {
		maxUp = defaultMaxUploadBytes
	}
	owner := cfg.Owner
	if owner == "" {
		owner = "local"
	}
	return &Server{
		parser:      parser,
		curator:     curator,
		docs:        docs,
		owner:       owner,
		maxUp:       maxUp,
		jobs:        newJobTable(),
		validatePDF: parse.ValidatePDF,
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Post("/process-all", s.handleProcessAll)
		r.Route("/{jobID}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Post("/process", s.handleProcessJob)
			r.Get("/download", s.handleDownload)
			r.Delete("/", s.handleDeleteJob)
		})
	})
	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	fmt.Fprintf(os.Stderr, "silverforge API listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts one or more PDF files under the "files" form field,
// validates each, and registers a pending job per file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUp)
	if err := r.ParseMultipartForm(s.maxUp); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing upload: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var jobIDs []string
	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("only PDF uploads are accepted: %s", fh.Filename))
			return
		}

		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload %s: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload %s: %v", fh.Filename, err))
			return
		}

		pages, err := s.validatePDF(bytes.NewReader(data))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", fh.Filename, err))
			return
		}

		jobIDs = append(jobIDs, s.jobs.add(fh.Filename, pages, data))
	}

	writeJSON(w, http.StatusAccepted, map[string][]string{"job_ids": jobIDs})
}

func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.list())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.get(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleProcessJob starts one pending job on its own goroutine.
func (s *Server) handleProcessJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	if _, ok := s.jobs.get(id); !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	pdf, ok := s.jobs.claim(id)
	if !ok {
		writeError(w, http.StatusConflict, "job is not pending")
		return
	}

	go s.runJob(id, pdf)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id, "status": string(JobProcessing)})
}

// handleProcessAll starts every pending job, each on its own goroutine.
func (s *Server) handleProcessAll(w http.ResponseWriter, _ *http.Request) {
	var started []string
	for _, id := range s.jobs.pendingIDs() {
		pdf, ok := s.jobs.claim(id)
		if !ok {
			continue
		}
		go s.runJob(id, pdf)
		started = append(started, id)
	}
	writeJSON(w, http.StatusAccepted, map[string][]string{"started": started})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.get(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != JobCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s, not completed", job.Status))
		return
	}

	name := strings.TrimSuffix(job.Filename, ".pdf") + ".md"
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	io.WriteString(w, job.Markdown)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	found, busy := s.jobs.remove(chi.URLParam(r, "jobID"))
	if !found {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if busy {
		writeError(w, http.StatusConflict, "job is processing")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runJob executes the full pipeline for one claimed job: parse, refine,
// curate, then persist when a store is configured. Failures mark the job
// failed; a degraded curation (for example an unconfigured judge) is still
// a completed job, with the degradation explained inside the report.
func (s *Server) runJob(id string, pdf []byte) {
	ctx := context.Background()

	job, ok := s.jobs.get(id)
	if !ok {
		return
	}

	result, err := s.parser.Parse(ctx, bytes.NewReader(pdf), job.Filename)
	if err != nil {
		s.jobs.fail(id, err)
		return
	}

	markdown := refine.Headings(result.InlineImages())
	report := s.curator.Curate(ctx, markdown, "")
	s.jobs.complete(id, markdown, report)

	if s.docs != nil {
		details, err := json.Marshal(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not serialize report for job %s: %v\n", id, err)
			return
		}
		if _, err := s.docs.Save(ctx, types.DocumentRecord{
			Owner:    s.owner,
			Filename: job.Filename,
			Markdown: markdown,
			Score:    report.OverallScore,
			Details:  string(details),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not persist job %s: %v\n", id, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
