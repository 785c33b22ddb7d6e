package internal

import (
	"context"
	"strings"
	"unicode/utf8"
)

// ShortTranscriptMessage is returned for transcripts too short to summarize
const ShortTranscriptMessage = "Transcript too short for meaningful summary."

// Summarizer condenses a transcript
type Summarizer struct {
	stageRunner
}

// NewSummarizer creates a Summarizer; nil prompts use the embedded templates
func NewSummarizer(client *ModelClient, prompts *PromptManager) *Summarizer {
	return &Summarizer{stageRunner: newStageRunner(client, prompts)}
}

// Summarize returns a short summary of transcript.
// Inputs under 50 characters never reach the backend.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) string {
	if trimmedLen(transcript) < minTranscriptLen {
		return ShortTranscriptMessage
	}

	if text, ok := s.run(ctx, StageSummary, transcript, summaryMaxTokens, nonEmpty); ok {
		return text
	}
	return fallbackSummary(transcript)
}

// KeyPoints extracts up to five key points from transcript
func (s *Summarizer) KeyPoints(ctx context.Context, transcript string) []string {
	if transcript == "" {
		return nil
	}

	if text, ok := s.run(ctx, StageKeyPoints, transcript, keyPointsMaxTokens, nonEmpty); ok {
		var points []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				points = append(points, line)
			}
			if len(points) == 5 {
				break
			}
		}
		return points
	}

	sentences := strings.Split(transcript, ". ")
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	return sentences
}

// fallbackSummary keeps the first three sentences, or truncates long text to 200 characters
func fallbackSummary(transcript string) string {
	if len(strings.Split(transcript, ". ")) > 3 {
		return firstSentences(transcript, 3)
	}
	if utf8.RuneCountInString(transcript) > 200 {
		return truncateRunes(transcript, 200) + "..."
	}
	return transcript
}
