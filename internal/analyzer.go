package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Report holds the four study artifacts generated from one transcript
type Report struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Model      string    `json:"model"`
	Transcript string    `json:"transcript,omitempty"`
	Summary    string    `json:"summary"`
	StudyGuide string    `json:"study_guide"`
	Topics     string    `json:"topics"`
	Quiz       string    `json:"quiz"`
	CreatedAt  time.Time `json:"created_at"`
}

// Markdown renders the report as a single document
func (r *Report) Markdown() string {
	title := r.Title
	if title == "" {
		title = "Study Report"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	sb.WriteString("## Summary\n\n")
	sb.WriteString(r.Summary)
	sb.WriteString("\n\n")
	for _, section := range []string{r.StudyGuide, r.Topics, r.Quiz} {
		sb.WriteString(section)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "---\n\n_Generated %s with %s_\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Model)
	return sb.String()
}

// StageObserver is notified as each stage finishes
type StageObserver func(stage string)

// Analyzer runs the stage transforms over a transcript
type Analyzer struct {
	client     *ModelClient
	summarizer *Summarizer
	guides     *StudyGuideBuilder
	topics     *TopicRecommender
	quizzes    *QuizGenerator
	store      *ReportStore
	logger     zerolog.Logger
}

// NewAnalyzer wires the four stages to client. store may be nil.
func NewAnalyzer(client *ModelClient, prompts *PromptManager, store *ReportStore) *Analyzer {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Analyzer{
		client:     client,
		summarizer: NewSummarizer(client, prompts),
		guides:     NewStudyGuideBuilder(client, prompts),
		topics:     NewTopicRecommender(client, prompts),
		quizzes:    NewQuizGenerator(client, prompts),
		store:      store,
		logger:     NewLogger("analyzer"),
	}
}

// Summarizer returns the summary stage
func (a *Analyzer) Summarizer() *Summarizer { return a.summarizer }

// StudyGuides returns the study guide stage
func (a *Analyzer) StudyGuides() *StudyGuideBuilder { return a.guides }

// Topics returns the topic stage
func (a *Analyzer) Topics() *TopicRecommender { return a.topics }

// Quizzes returns the quiz stage
func (a *Analyzer) Quizzes() *QuizGenerator { return a.quizzes }

// Store returns the report store, nil when history is disabled
func (a *Analyzer) Store() *ReportStore { return a.store }

// Analyze produces a report for transcript. Topic recommendation runs alongside the
// summary, guide and quiz chain. observe may be nil and is called from both branches.
func (a *Analyzer) Analyze(ctx context.Context, title, transcript string, observe StageObserver) (*Report, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}
	if observe == nil {
		observe = func(string) {}
	}

	ctx, span := tracer().Start(ctx, "analyze")
	defer span.End()

	report := &Report{
		ID:         newReportID(),
		Title:      title,
		Model:      a.client.Model(),
		Transcript: transcript,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Topics = a.topics.Recommend(gctx, transcript)
		observe(StageTopics)
		return gctx.Err()
	})
	g.Go(func() error {
		report.Summary = a.summarizer.Summarize(gctx, transcript)
		observe(StageSummary)
		if err := gctx.Err(); err != nil {
			return err
		}
		report.StudyGuide = a.guides.CreateGuide(gctx, report.Summary)
		observe(StageStudyGuide)
		if err := gctx.Err(); err != nil {
			return err
		}
		report.Quiz = a.quizzes.Generate(gctx, report.StudyGuide)
		observe(StageQuiz)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing transcript: %w", err)
	}
	report.CreatedAt = time.Now().UTC()

	a.logger.Info().
		Str("id", report.ID).
		Int("transcript_len", len(transcript)).
		Msg("report generated")

	if a.store != nil {
		if err := a.store.Save(ctx, report); err != nil {
			// the report is still usable without history
			a.logger.Warn().Err(err).Str("id", report.ID).Msg("saving report")
		}
	}

	return report, nil
}

// newReportID returns a time-ordered report id
func newReportID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
