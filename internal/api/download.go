package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultExportName is used when the server does not name the attachment.
const DefaultExportName = "E-Consultation_Feedback.xlsx"

// Downloader follows export URLs and saves the attachment into Dir.
type Downloader struct {
	Client *Client
	Dir    string

	// OnSaved, when set, is called with the written path and size.
	OnSaved func(path string, size int64)
}

// Navigate downloads target. Relative targets are resolved against the
// client's base URL.
func (d *Downloader) Navigate(ctx context.Context, target string) error {
	if strings.HasPrefix(target, "/") {
		target = d.Client.BaseURL + target
	}

	resp, requestID, err := d.Client.send(ctx, http.MethodGet, target, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, snippetBytes+1))
		return newAPIError(resp.StatusCode, body)
	}

	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if copyErr != nil {
			return fmt.Errorf("downloading %s: %w", name, copyErr)
		}
		return fmt.Errorf("writing %s: %w", name, closeErr)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("saving %s: %w", path, err)
	}

	d.Client.log.Info("export saved",
		zap.String("path", path),
		zap.Int64("bytes", n),
		zap.String("request_id", requestID))
	if d.OnSaved != nil {
		d.OnSaved(path, n)
	}
	return nil
}

// attachmentName extracts a safe file name from a Content-Disposition
// header value.
func attachmentName(disposition string) string {
	if disposition == "" {
		return DefaultExportName
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultExportName
	}
	name := filepath.Base(filepath.Clean("/" + params["filename"]))
	if name == "/" || name == "." || name == "" {
		return DefaultExportName
	}
	return name
}
