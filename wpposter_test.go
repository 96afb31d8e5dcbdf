package wpposter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/ediblesites/wp-poster/internal/config"
	"github.com/ediblesites/wp-poster/internal/wordpress"
)

const article = `---
title: Test Article
tags:
  - go
---
# Ignored by title precedence

Body paragraph with **markup**.
`

func testPoster(t *testing.T, handler http.Handler) *Poster {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		SiteURL:     srv.URL,
		Username:    "admin",
		AppPassword: "secret",
		Format:      "raw",
	}
	client := wordpress.New(srv.URL, "admin", "secret",
		wordpress.WithHTTPClient(srv.Client()),
		wordpress.WithUploadClient(srv.Client()))
	return New(cfg, WithClient(client))
}

func TestPrepareRawPassthrough(t *testing.T) {
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("raw prepare should not touch the network")
	}))

	prepared, err := poster.Prepare(context.Background(), []byte(article), Options{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prepared.Format != FormatRaw {
		t.Errorf("format = %q", prepared.Format)
	}
	if !strings.Contains(prepared.Content, "**markup**") {
		t.Errorf("raw content was rewritten: %q", prepared.Content)
	}
}

func TestPrepareGutenbergPreview(t *testing.T) {
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preview should not touch the network")
	}))

	prepared, err := poster.Prepare(context.Background(), []byte(article), Options{
		Format:  string(FormatGutenberg),
		Preview: true,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !strings.Contains(prepared.Content, "<!-- wp:paragraph -->") {
		t.Errorf("content not converted: %q", prepared.Content)
	}
	if !strings.Contains(prepared.Content, "<strong>markup</strong>") {
		t.Errorf("inline markup missing: %q", prepared.Content)
	}
}

func TestPostCreates(t *testing.T) {
	var payload map[string]any
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/tags") && r.Method == http.MethodGet:
			w.Write([]byte(`[{"id": 4, "name": "go", "slug": "go"}]`))
		case strings.HasSuffix(r.URL.Path, "/posts"):
			json.NewDecoder(r.Body).Decode(&payload)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 77, "link": "https://x.test/test-article"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	result, err := poster.Post(context.Background(), []byte(article), Options{})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if result.ID != 77 {
		t.Errorf("result = %+v", result)
	}
	if payload["title"] != "Test Article" {
		t.Errorf("title = %v", payload["title"])
	}
	if payload["slug"] != "test-article" {
		t.Errorf("slug = %v", payload["slug"])
	}
	if payload["status"] != "publish" {
		t.Errorf("status = %v", payload["status"])
	}
	tags, ok := payload["tags"].([]any)
	if !ok || len(tags) != 1 || tags[0] != float64(4) {
		t.Errorf("tags = %v", payload["tags"])
	}
}

func TestPostUpdatesWhenIDSet(t *testing.T) {
	source := "---\ntitle: Existing\nid: 12\n---\nbody"
	var gotPath string
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": 12, "link": "https://x.test/existing"}`))
	}))

	if _, err := poster.Post(context.Background(), []byte(source), Options{}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotPath != "/wp-json/wp/v2/posts/12" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestPostDraftOverride(t *testing.T) {
	var payload map[string]any
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"id": 1}`))
	}))

	source := "---\ntitle: T\nstatus: publish\n---\nbody"
	if _, err := poster.Post(context.Background(), []byte(source), Options{Draft: true}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if payload["status"] != "draft" {
		t.Errorf("status = %v, want draft override", payload["status"])
	}
}

func TestPrepareInvalidFrontmatterWrapped(t *testing.T) {
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	source := "---\ntitle: x\nstatus: bogus\n---\nbody"

	_, err := poster.Prepare(context.Background(), []byte(source), Options{})
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("err = %v, want validation category", err)
	}
}

func TestPostFailureWrapped(t *testing.T) {
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":"internal_error","message":"boom"}`))
	}))

	_, err := poster.Post(context.Background(), []byte("---\ntitle: T\n---\nbody"), Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("err = %v, want command category", err)
	}
}

func TestPostCustomPostTypeEndpoint(t *testing.T) {
	var gotPath string
	poster := testPoster(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": 2}`))
	}))

	source := "---\ntitle: R\npost_type: recipe\n---\nbody"
	if _, err := poster.Post(context.Background(), []byte(source), Options{}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if gotPath != "/wp-json/wp/v2/recipe" {
		t.Errorf("path = %q", gotPath)
	}
}
