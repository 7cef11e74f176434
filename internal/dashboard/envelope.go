package dashboard

import "strings"

// StatusSuccess is the only envelope status treated as success.
const StatusSuccess = "success"

// Envelope is the common response shape of every JSON endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Succeeded reports whether the server accepted the request.
func (e Envelope) Succeeded() bool {
	return e.Status == StatusSuccess
}

// CommentResult is the /add_comment response.
type CommentResult struct {
	Envelope
	Sentiment string `json:"sentiment"`
	Intent    string `json:"intent"`
	Stats     Stats  `json:"stats"`
}

// AnalyzeResult is the /analyze_all response.
type AnalyzeResult struct {
	Envelope
	Stats Stats `json:"stats"`
}

// Analytics is the per-label breakdown served by /api/analytics_data.
type Analytics struct {
	Sentiment map[string]int `json:"sentiment_data"`
	Intent    map[string]int `json:"intent_data"`
}

// Stats folds the sentiment breakdown into dashboard counters using the
// server's own rules: any label mentioning Positive or Negative counts
// toward that side, and only the exact label Neutral counts as neutral.
func (a Analytics) Stats() Stats {
	var s Stats
	for label, n := range a.Sentiment {
		s.Total += n
		if strings.Contains(label, "Positive") {
			s.Positive += n
		}
		if strings.Contains(label, "Negative") {
			s.Negative += n
		}
		if label == "Neutral" {
			s.Neutral += n
		}
	}
	return s
}

// Attachment is a file field of the comment form.
type Attachment struct {
	Field string
	Path  string
}

// Comment is the payload of the comment form.
type Comment struct {
	Text        string
	Author      string
	Fields      map[string]string
	Attachments []Attachment
}

// Form is the comment-submission form. OnReset, when set, is called after
// a successful submission cleared the fields.
type Form struct {
	Comment
	OnReset func()
}

// Reset empties every field of the form.
func (f *Form) Reset() {
	f.Comment = Comment{}
	if f.OnReset != nil {
		f.OnReset()
	}
}
