package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTranscript = "Go routines are cheap threads managed by the runtime. Channels let them communicate safely. " +
	"Select waits on several channel operations. The context package carries cancellation across API boundaries. " +
	"Errgroup collects errors from a group of goroutines."

// unreachableClient returns a client whose Ollama backend points at a closed server
func unreachableClient(t *testing.T) *ModelClient {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return NewModelClient(NewOllamaBackend(url, nil))
}

func TestSummarizer_ShortTranscriptSkipsBackend(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSummarizer(NewModelClient(backend), nil)

	assert.Equal(t, ShortTranscriptMessage, s.Summarize(context.Background(), "too short"))
	assert.Equal(t, ShortTranscriptMessage, s.Summarize(context.Background(), "   "+strings.Repeat("x", 49)+"   "))
	assert.Zero(t, backend.calls())
}

func TestSummarizer_UsesModelText(t *testing.T) {
	backend := &fakeBackend{reply: replyWith("Goroutines and channels are the core of Go concurrency.")}
	s := NewSummarizer(NewModelClient(backend), nil)

	got := s.Summarize(context.Background(), sampleTranscript)

	assert.Equal(t, "Goroutines and channels are the core of Go concurrency.", got)
	assert.Equal(t, summaryMaxTokens, backend.last().MaxTokens)
	assert.Contains(t, backend.last().Prompt, DefaultPrompts().Template(StageSummary))
}

func TestSummarizer_FallbackKeepsThreeSentences(t *testing.T) {
	s := NewSummarizer(unreachableClient(t), nil)

	got := s.Summarize(context.Background(), sampleTranscript)

	assert.Equal(t, "Go routines are cheap threads managed by the runtime. Channels let them communicate safely. "+
		"Select waits on several channel operations.", got)
}

func TestSummarizer_KeyPoints(t *testing.T) {
	backend := &fakeBackend{reply: replyWith("- one\n\n- two\n- three\n- four\n- five\n- six")}
	s := NewSummarizer(NewModelClient(backend), nil)

	assert.Nil(t, s.KeyPoints(context.Background(), ""))
	assert.Equal(t, []string{"- one", "- two", "- three", "- four", "- five"}, s.KeyPoints(context.Background(), sampleTranscript))

	fallback := NewSummarizer(unreachableClient(t), nil)
	assert.Equal(t, []string{
		"Go routines are cheap threads managed by the runtime",
		"Channels let them communicate safely",
		"Select waits on several channel operations",
	}, fallback.KeyPoints(context.Background(), sampleTranscript))
}

func TestStudyGuideBuilder(t *testing.T) {
	long := strings.Repeat("Review goroutines and channels. ", 3)

	t.Run("accepts long output", func(t *testing.T) {
		backend := &fakeBackend{reply: replyWith(long)}
		b := NewStudyGuideBuilder(NewModelClient(backend), nil)

		got := b.CreateGuide(context.Background(), "Goroutines and channels make concurrency simple in Go.")
		assert.Equal(t, "## Study Guide\n\n"+strings.TrimSpace(long), got)
	})

	t.Run("rejects short output", func(t *testing.T) {
		backend := &fakeBackend{reply: replyWith("Too short.")}
		b := NewStudyGuideBuilder(NewModelClient(backend), nil)

		got := b.CreateGuide(context.Background(), "First idea. Second idea. Third idea")
		assert.Equal(t, 1, backend.calls())
		assert.Contains(t, got, "### Key Points\n\n1. First idea\n2. Second idea\n3. Third idea\n")
		assert.Contains(t, got, "### Learning Objectives")
		assert.Contains(t, got, "### Study Tips")
	})

	t.Run("short summary skips backend", func(t *testing.T) {
		backend := &fakeBackend{}
		b := NewStudyGuideBuilder(NewModelClient(backend), nil)

		got := b.CreateGuide(context.Background(), "tiny")
		assert.Zero(t, backend.calls())
		assert.True(t, strings.HasPrefix(got, "## Study Guide\n\n### Key Points\n\n1. tiny\n"))
	})

	t.Run("key points capped at five", func(t *testing.T) {
		got := fallbackGuide("a. b. c. d. e. f. g")
		assert.Contains(t, got, "5. e\n")
		assert.NotContains(t, got, "6. ")
	})
}

func TestTopicRecommender(t *testing.T) {
	long := strings.Repeat("1. Channels: core concurrency primitive (Beginner)\n", 3)

	backend := &fakeBackend{reply: replyWith(long)}
	r := NewTopicRecommender(NewModelClient(backend), nil)
	got := r.Recommend(context.Background(), sampleTranscript)
	assert.True(t, strings.HasPrefix(got, "## Recommended Topics\n\n1. Channels"))
	assert.True(t, strings.HasSuffix(got, "> Tip: start with topics that match your current skill level."))
	assert.Equal(t, topicsMaxTokens, backend.last().MaxTokens)

	short := &fakeBackend{reply: replyWith("1. Channels")}
	r = NewTopicRecommender(NewModelClient(short), nil)
	assert.Equal(t, topicsFallback, r.Recommend(context.Background(), sampleTranscript))

	assert.Equal(t, topicsFallback, r.Recommend(context.Background(), "short"))
	assert.Equal(t, 1, short.calls())
}

func TestQuizGenerator(t *testing.T) {
	guide := strings.Repeat("Study guide content. ", 5)
	long := strings.Repeat("Q1. What is a goroutine? Answer: a cheap thread.\n", 5)

	backend := &fakeBackend{reply: replyWith(long)}
	q := NewQuizGenerator(NewModelClient(backend), nil)
	got := q.Generate(context.Background(), guide)
	assert.True(t, strings.HasPrefix(got, "## Quiz Questions\n\nQ1. What is a goroutine?"))
	assert.True(t, strings.HasSuffix(got, "> Tip: test yourself regularly to reinforce learning."))

	exactly200 := &fakeBackend{reply: replyWith(strings.Repeat("x", 200))}
	q = NewQuizGenerator(NewModelClient(exactly200), nil)
	assert.Equal(t, quizFallback, q.Generate(context.Background(), guide))

	assert.Equal(t, quizFallback, q.Generate(context.Background(), "short guide"))
	assert.Equal(t, 1, exactly200.calls())
}

func TestStages_UnreachableBackendYieldsSkeletons(t *testing.T) {
	client := unreachableClient(t)
	ctx := context.Background()

	guide := NewStudyGuideBuilder(client, nil).CreateGuide(ctx, "Goroutines are cheap. Channels connect them.")
	assert.Equal(t, fallbackGuide("Goroutines are cheap. Channels connect them."), guide)

	assert.Equal(t, topicsFallback, NewTopicRecommender(client, nil).Recommend(ctx, sampleTranscript))
	assert.Equal(t, quizFallback, NewQuizGenerator(client, nil).Generate(ctx, guide))
}

func TestStages_CountFallbacks(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := NewModelClient(&fakeBackend{reply: replyWith("short")}, WithMetrics(NewMetrics(reg)))

	NewTopicRecommender(client, nil).Recommend(context.Background(), sampleTranscript)
	NewQuizGenerator(client, nil).Generate(context.Background(), "x")

	require.InDelta(t, 2, counterValue(t, reg, "vidstudy_fallbacks_total"), 0)
}

func TestStages_CountCharactersNotBytes(t *testing.T) {
	ctx := context.Background()

	t.Run("short multi-byte transcript skips backend", func(t *testing.T) {
		backend := &fakeBackend{}
		s := NewSummarizer(NewModelClient(backend), nil)

		transcript := strings.Repeat("学", 49)
		require.Greater(t, len(transcript), minTranscriptLen)
		assert.Equal(t, ShortTranscriptMessage, s.Summarize(ctx, transcript))
		assert.Equal(t, topicsFallback, NewTopicRecommender(NewModelClient(backend), nil).Recommend(ctx, transcript))
		assert.Zero(t, backend.calls())
	})

	t.Run("multi-byte quiz under 200 characters rejected", func(t *testing.T) {
		reply := strings.Repeat("問", 199)
		require.Greater(t, len(reply), acceptQuizLen)
		backend := &fakeBackend{reply: replyWith(reply)}
		q := NewQuizGenerator(NewModelClient(backend), nil)

		assert.Equal(t, quizFallback, q.Generate(ctx, strings.Repeat("guide ", 20)))
		assert.Equal(t, 1, backend.calls())
	})

	t.Run("multi-byte quiz over 200 characters accepted", func(t *testing.T) {
		reply := strings.Repeat("問", 201)
		q := NewQuizGenerator(NewModelClient(&fakeBackend{reply: replyWith(reply)}), nil)

		assert.Equal(t, "## Quiz Questions\n\n"+reply+"\n\n> Tip: test yourself regularly to reinforce learning.",
			q.Generate(ctx, strings.Repeat("guide ", 20)))
	})

	assert.Equal(t, 3, trimmedLen("  héé \n"))
}
