// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Hyeongseob91/upstage-silverforge-agent/internal/curate"
	"github.com/Hyeongseob91/upstage-silverforge-agent/pkg/types"
)

// fakeParser returns canned Markdown or an error.
type fakeParser struct {
	markdown string
	err      error
}

func (f *fakeParser) Parse(_ context.Context, _ io.Reader, _ string) (*types.ParseResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.ParseResult{Markdown: f.markdown}, nil
}

func testServer(t *testing.T, parser Parser) (*Server, *httptest.Server) {
	t.Helper()
	s := New(parser, &curate.Curator{}, nil, types.ServerConfig{})
	// Uploads in tests are not real PDFs; count them as one page.
	s.validatePDF = func(io.ReadSeeker) (int, error) { return 1, nil }

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

// uploadPDF posts one file under the "files" field and returns the job ID.
func uploadPDF(t *testing.T, ts *httptest.Server, filename string) string {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload returned %d: %s", resp.StatusCode, msg)
	}

	var out struct {
		JobIDs []string `json:"job_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.JobIDs) != 1 {
		t.Fatalf("job_ids = %v, want one", out.JobIDs)
	}
	return out.JobIDs[0]
}

// waitForStatus polls the job until it reaches a terminal status.
func waitForStatus(t *testing.T, ts *httptest.Server, jobID string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/jobs/" + jobID)
		if err != nil {
			t.Fatal(err)
		}
		var job Job
		err = json.NewDecoder(resp.Body).Decode(&job)
		resp.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if job.Status == JobCompleted || job.Status == JobFailed {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal status")
	return Job{}
}

func TestUploadAndProcess(t *testing.T) {
	_, ts := testServer(t, &fakeParser{markdown: "# My Paper\n# Abstract\n# 1 Introduction"})

	jobID := uploadPDF(t, ts, "paper.pdf")

	resp, err := http.Post(ts.URL+"/jobs/"+jobID+"/process", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("process returned %d", resp.StatusCode)
	}

	job := waitForStatus(t, ts, jobID)
	if job.Status != JobCompleted {
		t.Fatalf("status = %q, error = %q", job.Status, job.Error)
	}
	// Headings come back refined.
	if !strings.Contains(job.Markdown, "## Abstract") {
		t.Errorf("Markdown = %q, want refined headings", job.Markdown)
	}
	if job.Report == nil {
		t.Error("completed job must carry its curation report")
	}
	if job.Progress != 100 {
		t.Errorf("Progress = %d, want 100", job.Progress)
	}
}

func TestProcess_ParseFailureFailsJob(t *testing.T) {
	_, ts := testServer(t, &fakeParser{err: errors.New("document-parse API returned 500")})

	jobID := uploadPDF(t, ts, "paper.pdf")
	resp, _ := http.Post(ts.URL+"/jobs/"+jobID+"/process", "", nil)
	resp.Body.Close()

	job := waitForStatus(t, ts, jobID)
	if job.Status != JobFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if !strings.Contains(job.Error, "500") {
		t.Errorf("Error = %q, want the collaborator failure text", job.Error)
	}
}

func TestProcess_OnlyOnce(t *testing.T) {
	_, ts := testServer(t, &fakeParser{markdown: "# Doc"})

	jobID := uploadPDF(t, ts, "paper.pdf")
	resp, _ := http.Post(ts.URL+"/jobs/"+jobID+"/process", "", nil)
	resp.Body.Close()
	waitForStatus(t, ts, jobID)

	resp, err := http.Post(ts.URL+"/jobs/"+jobID+"/process", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("second process returned %d, want 409", resp.StatusCode)
	}
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	_, ts := testServer(t, &fakeParser{markdown: "# Doc"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("files", "notes.txt")
	fw.Write([]byte("plain text"))
	mw.Close()

	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("upload returned %d, want 400", resp.StatusCode)
	}
}

func TestUpload_RejectsInvalidPDF(t *testing.T) {
	s, ts := testServer(t, &fakeParser{markdown: "# Doc"})
	s.validatePDF = func(io.ReadSeeker) (int, error) { return 0, fmt.Errorf("not a valid PDF") }

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("files", "corrupt.pdf")
	fw.Write([]byte("garbage"))
	mw.Close()

	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("upload returned %d, want 400", resp.StatusCode)
	}
}

func TestDownload(t *testing.T) {
	_, ts := testServer(t, &fakeParser{markdown: "# Doc\nbody"})

	jobID := uploadPDF(t, ts, "paper.pdf")

	// Download before completion is a conflict.
	resp, _ := http.Get(ts.URL + "/jobs/" + jobID + "/download")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("early download returned %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	r2, _ := http.Post(ts.URL+"/jobs/"+jobID+"/process", "", nil)
	r2.Body.Close()
	waitForStatus(t, ts, jobID)

	resp, err := http.Get(ts.URL + "/jobs/" + jobID + "/download")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download returned %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "paper.md") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "# Doc") {
		t.Errorf("downloaded %q", data)
	}
}

func TestListAndDeleteJobs(t *testing.T) {
	_, ts := testServer(t, &fakeParser{markdown: "# Doc"})

	first := uploadPDF(t, ts, "a.pdf")
	uploadPDF(t, ts, "b.pdf")

	resp, err := http.Get(ts.URL + "/jobs/")
	if err != nil {
		t.Fatal(err)
	}
	var jobs []Job
	json.NewDecoder(resp.Body).Decode(&jobs)
	resp.Body.Close()
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/jobs/"+first, nil)
	dresp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	dresp.Body.Close()
	if dresp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete returned %d", dresp.StatusCode)
	}

	gresp, _ := http.Get(ts.URL + "/jobs/" + first)
	gresp.Body.Close()
	if gresp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted job still returned %d", gresp.StatusCode)
	}
}

func TestProcessAll(t *testing.T) {
	_, ts := testServer(t, &fakeParser{markdown: "# Doc"})

	a := uploadPDF(t, ts, "a.pdf")
	b := uploadPDF(t, ts, "b.pdf")

	resp, err := http.Post(ts.URL+"/jobs/process-all", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Started []string `json:"started"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	resp.Body.Close()
	if len(out.Started) != 2 {
		t.Fatalf("started = %v, want both jobs", out.Started)
	}

	for _, id := range []string{a, b} {
		if job := waitForStatus(t, ts, id); job.Status != JobCompleted {
			t.Errorf("job %s status = %q", id, job.Status)
		}
	}
}
