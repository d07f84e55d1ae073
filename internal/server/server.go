// Package server exposes the rendered report artifacts over HTTP: an index
// of available reports, a markdown-to-HTML view per report, and a small
// JSON endpoint resolving the most recent artifact.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ternarybob/marketbrief/internal/common"
)

// Server serves the report artifacts
type Server struct {
	outputDir string
	logger    arbor.ILogger
	markdown  goldmark.Markdown
	server    *http.Server
}

// New creates the viewer over the configured artifact directory
func New(cfg *common.Config, logger arbor.ILogger) *Server {
	s := &Server{
		outputDir: cfg.Report.OutputDir,
		logger:    logger,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.Table)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /api/latest", s.handleLatest)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown or a listener error
func (s *Server) Start() error {
	if s.logger != nil {
		s.logger.Info().Str("address", s.server.Addr).Msg("Report viewer starting")
	}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler exposes the route table for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// artifacts lists report files newest first. The date-prefixed naming makes
// reverse lexical order chronological.
func (s *Server) artifacts() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="utf-8"><title>MarketBrief</title>
<style>body{font-family:sans-serif;max-width:720px;margin:2rem auto}li{margin:.4rem 0}</style>
</head>
<body>
<h1>市场报告</h1>
{{if .}}
<ul>
{{range .}}<li><a href="/report?name={{.}}">{{.}}</a></li>
{{end}}</ul>
{{else}}<p>暂无报告</p>{{end}}
</body>
</html>
`))

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head><meta charset="utf-8"><title>{{.Name}}</title>
<style>
body{font-family:sans-serif;max-width:960px;margin:2rem auto;line-height:1.6}
table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3rem .6rem}
</style>
</head>
<body>
<p><a href="/">&larr; 返回</a></p>
{{.Body}}
</body>
</html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	names, err := s.artifacts()
	if err != nil {
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, names); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("Index render failed")
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		http.Error(w, "invalid report name", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(filepath.Join(s.outputDir, name+".md"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var body strings.Builder
	if err := s.markdown.Convert(data, &body); err != nil {
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = reportTemplate.Execute(w, struct {
		Name string
		Body template.HTML
	}{Name: name, Body: template.HTML(body.String())})
	if err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("Report render failed")
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	names, err := s.artifacts()
	if err != nil {
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	if len(names) == 0 {
		http.Error(w, "no reports available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"name": names[0],
		"url":  "/report?name=" + names[0],
	})
}
