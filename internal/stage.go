package internal

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
)

// Minimum lengths used by the stage transforms
const (
	minTranscriptLen = 50
	minSummaryLen    = 20
	minGuideLen      = 50

	acceptGuideLen  = 50
	acceptTopicsLen = 100
	acceptQuizLen   = 200
)

// Token caps per stage
const (
	summaryMaxTokens    = 200
	keyPointsMaxTokens  = 300
	studyGuideMaxTokens = 400
	topicsMaxTokens     = 500
	quizMaxTokens       = 600
)

// stageRunner is embedded by every stage transform
type stageRunner struct {
	client  *ModelClient
	prompts *PromptManager
}

func newStageRunner(client *ModelClient, prompts *PromptManager) stageRunner {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return stageRunner{client: client, prompts: prompts}
}

// run issues one model call for stage and reports whether the text is usable.
// Fallback text from the client is never accepted; the caller substitutes its own skeleton.
func (s stageRunner) run(ctx context.Context, stage, input string, maxTokens int, accept func(string) bool) (string, bool) {
	ctx, span := tracer().Start(ctx, "stage."+stage)
	defer span.End()

	res := s.client.GenerateResult(ctx, s.prompts.Template(stage), input, maxTokens)
	ok := res.Source != SourceFallback && accept(res.Text)
	span.SetAttributes(
		attribute.String("source", string(res.Source)),
		attribute.Bool("accepted", ok),
	)
	if !ok {
		s.fallback(stage)
		return "", false
	}
	return res.Text, true
}

// fallback records that stage produced its skeleton
func (s stageRunner) fallback(stage string) {
	s.client.metrics.fallback(stage)
	s.client.logger.Debug().Str("stage", stage).Msg("using stage fallback")
}

func nonEmpty(text string) bool {
	return strings.TrimSpace(text) != ""
}

func longerThan(n int) func(string) bool {
	return func(text string) bool {
		return trimmedLen(text) > n
	}
}

// trimmedLen counts the characters of text without surrounding whitespace
func trimmedLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}
