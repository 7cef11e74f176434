package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/econsult/sentidash/internal/dashboard"
)

// Endpoints served by the dashboard backend.
const (
	PathAddComment    = "/add_comment"
	PathAnalyzeAll    = "/analyze_all"
	PathClearComments = "/clear_comments"
	PathExport        = "/download_excel"
	PathAnalytics     = "/api/analytics_data"
)

// Form field names read by /add_comment.
const (
	FieldCommentText = "comment_text"
	FieldAuthor      = "author"
)

var _ dashboard.Backend = (*Client)(nil)

// AddComment posts a comment as a multipart form. Extra fields are sent in
// name order, followed by file attachments.
func (c *Client) AddComment(ctx context.Context, comment dashboard.Comment) (*dashboard.CommentResult, error) {
	body, contentType, err := encodeComment(comment)
	if err != nil {
		return nil, err
	}

	var res dashboard.CommentResult
	if err := c.do(ctx, http.MethodPost, PathAddComment, body, contentType, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AnalyzeAll asks the server to classify its preprocessed data source.
func (c *Client) AnalyzeAll(ctx context.Context) (*dashboard.AnalyzeResult, error) {
	var res dashboard.AnalyzeResult
	if err := c.do(ctx, http.MethodPost, PathAnalyzeAll, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ClearComments deletes every stored comment.
func (c *Client) ClearComments(ctx context.Context) (*dashboard.Envelope, error) {
	var res dashboard.Envelope
	if err := c.do(ctx, http.MethodPost, PathClearComments, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Analytics fetches the per-label sentiment and intent breakdown.
func (c *Client) Analytics(ctx context.Context) (*dashboard.Analytics, error) {
	var res dashboard.Analytics
	if err := c.do(ctx, http.MethodGet, PathAnalytics, nil, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExportURL returns the absolute spreadsheet export URL.
func (c *Client) ExportURL(clear bool) string {
	return c.BaseURL + PathExport + "?clear=" + strconv.FormatBool(clear)
}

func encodeComment(comment dashboard.Comment) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(FieldCommentText, comment.Text); err != nil {
		return nil, "", fmt.Errorf("encoding comment: %w", err)
	}
	if comment.Author != "" {
		if err := w.WriteField(FieldAuthor, comment.Author); err != nil {
			return nil, "", fmt.Errorf("encoding author: %w", err)
		}
	}

	names := make([]string, 0, len(comment.Fields))
	for name := range comment.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := w.WriteField(name, comment.Fields[name]); err != nil {
			return nil, "", fmt.Errorf("encoding field %s: %w", name, err)
		}
	}

	for _, a := range comment.Attachments {
		if err := attachFile(w, a); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func attachFile(w *multipart.Writer, a dashboard.Attachment) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return fmt.Errorf("opening attachment %s: %w", a.Field, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(a.Field, filepath.Base(a.Path))
	if err != nil {
		return fmt.Errorf("creating part %s: %w", a.Field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading attachment %s: %w", a.Field, err)
	}
	return nil
}
