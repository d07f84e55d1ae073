package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/marketbrief/internal/common"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := common.NewDefaultConfig()
	cfg.Report.OutputDir = dir
	return New(cfg, nil), dir
}

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".md"), []byte(content), 0o644))
}

func TestIndexListsReportsNewestFirst(t *testing.T) {
	srv, dir := newTestServer(t)
	writeArtifact(t, dir, "2026-08-27_afternoon", "# old")
	writeArtifact(t, dir, "2026-08-28_morning", "# new")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2026-08-28_morning")
	assert.Less(t, // newest link appears before the older one
		strings.Index(body, "2026-08-28_morning"), strings.Index(body, "2026-08-27_afternoon"))
}

func TestIndexEmptyDir(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "暂无报告")
}

func TestReportRendersMarkdownTables(t *testing.T) {
	srv, dir := newTestServer(t)
	writeArtifact(t, dir, "2026-08-28_morning",
		"# A股市场报告\n\n| # | 板块名称 |\n|---|---------|\n| 1 | 半导体 |\n")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?name=2026-08-28_morning", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>A股市场报告</h1>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "半导体")
}

func TestReportRejectsTraversal(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, name := range []string{"../secret", "..%2Fsecret", "a/b", ""} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?name="+name, nil))
		assert.NotEqual(t, http.StatusOK, rec.Code, "name %q must be rejected", name)
	}
}

func TestReportNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?name=2026-01-01_morning", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestResolvesNewestArtifact(t *testing.T) {
	srv, dir := newTestServer(t)
	writeArtifact(t, dir, "2026-08-27_afternoon", "# old")
	writeArtifact(t, dir, "2026-08-28_afternoon", "# new")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "2026-08-28_afternoon", payload["name"])
}

func TestLatestEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
