package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/econsult/sentidash/internal/dashboardtest"
)

func TestDownloaderSavesExport(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed("good service", "late delivery")

	dir := filepath.Join(t.TempDir(), "exports")
	var savedPath string
	var savedSize int64
	d := &Downloader{Client: c, Dir: dir, OnSaved: func(p string, n int64) {
		savedPath, savedSize = p, n
	}}

	require.NoError(t, d.Navigate(context.Background(), c.ExportURL(false)))

	want := filepath.Join(dir, DefaultExportName)
	assert.Equal(t, want, savedPath)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), savedSize)
	assert.Contains(t, string(data), "good service")
	assert.Len(t, srv.Comments(), 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestDownloaderClearFlag(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed("good service")

	d := &Downloader{Client: c, Dir: t.TempDir()}
	require.NoError(t, d.Navigate(context.Background(), PathExport+"?clear=true"))
	assert.Empty(t, srv.Comments())
}

func TestDownloaderServerError(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Fail(PathExport, dashboardtest.Failure{
		Status:      http.StatusInternalServerError,
		Body:        `{"status":"error","message":"disk full"}`,
		ContentType: "application/json",
	})
	dir := t.TempDir()

	err := (&Downloader{Client: c, Dir: dir}).Navigate(context.Background(), c.ExportURL(true))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", DefaultExportName},
		{"attachment", DefaultExportName},
		{`attachment; filename="report.xlsx"`, "report.xlsx"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`attachment; filename="/"`, DefaultExportName},
		{"not a ; valid = = header", DefaultExportName},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, attachmentName(tt.header))
		})
	}
}
