package internal

import "strings"

// Fixed texts returned by FallbackText when the backend cannot answer
const (
	fallbackEmptySummary = "Summary generation requires content to analyze."
	fallbackStudyGuide   = "Study Guide:\n• Review the main concepts\n• Practice key points\n• Apply knowledge practically"
	fallbackTopics       = "Recommended Topics:\n• General learning concepts\n• Practical applications\n• Further study areas"
	fallbackQuiz         = "Quiz Questions:\n• What are the main concepts?\n• How can you apply this knowledge?\n• What are the key takeaways?"
	fallbackGeneric      = "Analysis completed. Please ensure the model backend is running for enhanced AI features."
)

// FallbackText produces rule-based output for a prompt when the model backend is
// unavailable. The first keyword found in the lowercased prompt wins:
// "summary", "study guide", "topics", "quiz".
func FallbackText(prompt, context string) string {
	p := strings.ToLower(prompt)

	switch {
	case strings.Contains(p, "summary"):
		if context == "" {
			return fallbackEmptySummary
		}
		return firstSentences(context, 3)
	case strings.Contains(p, "study guide"):
		return fallbackStudyGuide
	case strings.Contains(p, "topics"):
		return fallbackTopics
	case strings.Contains(p, "quiz"):
		return fallbackQuiz
	default:
		return fallbackGeneric
	}
}

// firstSentences joins the first n ". "-separated segments of text and appends a period
func firstSentences(text string, n int) string {
	sentences := strings.Split(text, ". ")
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	return strings.Join(sentences, ". ") + "."
}
