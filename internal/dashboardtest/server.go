// Package dashboardtest provides an in-memory dashboard backend for tests.
// It serves the same routes and response shapes as the real server.
package dashboardtest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/econsult/sentidash/internal/dashboard"
)

// ExportContentType is the media type of the spreadsheet export.
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Record is one stored comment.
type Record struct {
	Text      string
	Sentiment string
	Intent    string
	Author    string
	Timestamp time.Time
	Fields    map[string]string
	Files     map[string]string // form field to uploaded file name
}

// Row is an entry of the preprocessed data source ingested by analyze-all.
type Row struct {
	ReviewText string
	UserID     string
}

// Failure forces a route to answer with a fixed status and body.
type Failure struct {
	Status      int
	Body        string
	ContentType string
}

// Classifier labels a comment with a sentiment and an intent.
type Classifier func(text string) (sentiment, intent string)

// Server is a fake dashboard backend.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	comments   []Record
	rows       []Row
	classify   Classifier
	failures   map[string]Failure
	gate       chan struct{}
	hits       map[string]int
	lastHeader http.Header
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		classify: Classify,
		failures: make(map[string]Failure),
		hits:     make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /add_comment", s.handleAddComment)
	mux.HandleFunc("POST /analyze_all", s.handleAnalyzeAll)
	mux.HandleFunc("POST /clear_comments", s.handleClearComments)
	mux.HandleFunc("GET /download_excel", s.handleDownload)
	mux.HandleFunc("GET /api/analytics_data", s.handleAnalytics)

	s.Server = httptest.NewServer(s.track(mux))
	t.Cleanup(s.Close)
	return s
}

// SetClassifier replaces the labelling function.
func (s *Server) SetClassifier(c Classifier) {
	s.mu.Lock()
	s.classify = c
	s.mu.Unlock()
}

// SetRows sets the preprocessed data source.
func (s *Server) SetRows(rows ...Row) {
	s.mu.Lock()
	s.rows = append([]Row(nil), rows...)
	s.mu.Unlock()
}

// Seed stores comments directly, labelling any that carry no sentiment.
func (s *Server) Seed(texts ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, text := range texts {
		s.store(Record{Text: text})
	}
}

// Fail makes every request to path answer with f until Recover is called.
func (s *Server) Fail(path string, f Failure) {
	s.mu.Lock()
	s.failures[path] = f
	s.mu.Unlock()
}

// Recover clears a forced failure.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	delete(s.failures, path)
	s.mu.Unlock()
}

// Hold makes handlers block until the returned release func is called.
// Requests already counted by Hits are the ones waiting.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastHeader returns the headers of the most recent request.
func (s *Server) LastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeader.Clone()
}

// Comments returns a copy of the stored comments.
func (s *Server) Comments() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.comments...)
}

// Stats computes the dashboard counters over the stored comments.
func (s *Server) Stats() dashboard.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

// track counts requests, applies forced failures and holds requests at
// the gate.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.lastHeader = r.Header.Clone()
		gate := s.gate
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		s.mu.Lock()
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()
		if failing {
			ct := f.ContentType
			if ct == "" {
				ct = "text/html; charset=utf-8"
			}
			w.Header().Set("Content-Type", ct)
			w.WriteHeader(f.Status)
			w.Write([]byte(f.Body))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil && err != http.ErrNotMultipart {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := r.FormValue("comment_text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "Comment cannot be empty.")
		return
	}

	rec := Record{
		Text:   text,
		Author: r.FormValue("author"),
		Fields: make(map[string]string),
		Files:  make(map[string]string),
	}
	for name, values := range r.PostForm {
		if name == "comment_text" || name == "author" || len(values) == 0 {
			continue
		}
		rec.Fields[name] = values[0]
	}
	if r.MultipartForm != nil {
		for field, headers := range r.MultipartForm.File {
			if len(headers) > 0 {
				rec.Files[field] = headers[0].Filename
			}
		}
	}

	s.mu.Lock()
	rec = s.store(rec)
	stats := s.statsLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, dashboard.CommentResult{
		Envelope:  dashboard.Envelope{Status: dashboard.StatusSuccess},
		Sentiment: rec.Sentiment,
		Intent:    rec.Intent,
		Stats:     stats,
	})
}

func (s *Server) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for _, row := range s.rows {
		author := row.UserID
		if author == "" {
			author = "N/A"
		}
		s.store(Record{Text: row.ReviewText, Author: author})
	}
	stats := s.statsLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, dashboard.AnalyzeResult{
		Envelope: dashboard.Envelope{Status: dashboard.StatusSuccess, Message: "All comments analyzed and saved."},
		Stats:    stats,
	})
}

func (s *Server) handleClearComments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.comments = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, dashboard.Envelope{
		Status:  dashboard.StatusSuccess,
		Message: "All comments have been cleared.",
	})
}

// handleDownload serves the comments as a CSV body under the spreadsheet
// media type, which is enough for clients that only save the bytes.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	wipe := strings.EqualFold(r.URL.Query().Get("clear"), "true")

	s.mu.Lock()
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write([]string{"comment", "sentiment", "intent", "timestamp", "author"})
	for _, c := range s.comments {
		cw.Write([]string{c.Text, c.Sentiment, c.Intent, c.Timestamp.Format(time.RFC3339), c.Author})
	}
	cw.Flush()
	if wipe {
		s.comments = nil
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="E-Consultation_Feedback.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a := s.analyticsLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, a)
}

// store labels and appends rec. Caller holds s.mu.
func (s *Server) store(rec Record) Record {
	if rec.Sentiment == "" {
		rec.Sentiment, rec.Intent = s.classify(rec.Text)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	s.comments = append(s.comments, rec)
	return rec
}

func (s *Server) analyticsLocked() dashboard.Analytics {
	a := dashboard.Analytics{
		Sentiment: make(map[string]int),
		Intent:    make(map[string]int),
	}
	for _, c := range s.comments {
		a.Sentiment[c.Sentiment]++
		a.Intent[c.Intent]++
	}
	return a
}

func (s *Server) statsLocked() dashboard.Stats {
	return s.analyticsLocked().Stats()
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dashboard.Envelope{Status: "error", Message: message})
}
