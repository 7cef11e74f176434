package dashboardtest

import "strings"

var (
	refundWords   = []string{"return", "replace", "refund", "wapas"}
	trackingWords = []string{"when", "where", "how", "track", "kab", "kaha"}
	feedbackWords = []string{"good", "bad", "happy", "love", "achha", "badiya"}

	strongPositive = []string{"excellent", "amazing", "love", "badiya"}
	positive       = []string{"good", "great", "happy", "achha"}
	strongNegative = []string{"terrible", "awful", "worst", "hate"}
	negative       = []string{"bad", "poor", "late", "broken"}
)

// Classify is the default labeller. Intent follows the real server's
// keyword rules; sentiment is a keyword stand-in for its rating model and
// uses the same five labels plus Neutral as the fallback.
func Classify(text string) (sentiment, intent string) {
	return Sentiment(text), Intent(text)
}

// Intent labels text by keyword, first match wins.
func Intent(text string) string {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, refundWords):
		return "Return/Refund"
	case containsAny(text, trackingWords):
		return "Query/Tracking"
	case containsAny(text, feedbackWords):
		return "Feedback"
	default:
		return "Other"
	}
}

// Sentiment labels text on the five-step scale.
func Sentiment(text string) string {
	text = strings.ToLower(text)
	switch {
	case containsAny(text, strongNegative):
		return "Strongly Negative"
	case containsAny(text, strongPositive):
		return "Strongly Positive"
	case containsAny(text, negative):
		return "Negative"
	case containsAny(text, positive):
		return "Positive"
	default:
		return "Neutral"
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
