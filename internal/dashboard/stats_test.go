package dashboard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRender(t *testing.T) {
	got := Render(Stats{Total: 5, Positive: 3, Negative: 1, Neutral: 1})
	want := []Mutation{
		{Target: "total-comments", Text: "5"},
		{Target: "positive-sentiment", Text: "3"},
		{Target: "negative-sentiment", Text: "1"},
		{Target: "neutral-sentiment", Text: "1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsConsistent(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  bool
	}{
		{"zero", Stats{}, true},
		{"exact", Stats{Total: 3, Positive: 1, Negative: 1, Neutral: 1}, true},
		{"unclassified remainder", Stats{Total: 4, Positive: 1, Negative: 1, Neutral: 1}, true},
		{"overcount", Stats{Total: 2, Positive: 1, Negative: 1, Neutral: 1}, false},
		{"negative", Stats{Total: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyticsStats(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]int
		want Stats
	}{
		{"empty", nil, Stats{}},
		{
			name: "all labels",
			in: map[string]int{
				"Strongly Positive": 4,
				"Positive":          2,
				"Neutral":           3,
				"Negative":          1,
				"Strongly Negative": 5,
				"Unknown":           2,
			},
			want: Stats{Total: 17, Positive: 6, Negative: 6, Neutral: 3},
		},
		{
			name: "neutral is exact match only",
			in:   map[string]int{"Mostly Neutral": 2, "Neutral": 1},
			want: Stats{Total: 3, Neutral: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analytics{Sentiment: tt.in}.Stats()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormReset(t *testing.T) {
	called := 0
	f := &Form{
		Comment: Comment{
			Text:        "text",
			Author:      "me",
			Fields:      map[string]string{"product": "p1"},
			Attachments: []Attachment{{Field: "photo", Path: "/tmp/a.png"}},
		},
		OnReset: func() { called++ },
	}
	f.Reset()
	if diff := cmp.Diff(Comment{}, f.Comment); diff != "" {
		t.Errorf("Reset() left fields (-want +got):\n%s", diff)
	}
	if called != 1 {
		t.Errorf("OnReset called %d times, want 1", called)
	}
}

func TestOutcomeOK(t *testing.T) {
	ok := map[Outcome]bool{
		OutcomeSuccess:  true,
		OutcomeDeclined: true,
		OutcomeInvalid:  false,
		OutcomeRejected: false,
		OutcomeFailed:   false,
		OutcomeBusy:     false,
		OutcomeUnwired:  false,
	}
	for o, want := range ok {
		if o.OK() != want {
			t.Errorf("%s.OK() = %v, want %v", o, o.OK(), want)
		}
	}
}
