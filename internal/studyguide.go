package internal

import (
	"context"
	"fmt"
	"strings"
)

// StudyGuideBuilder turns a summary into a study guide
type StudyGuideBuilder struct {
	stageRunner
}

// NewStudyGuideBuilder creates a StudyGuideBuilder; nil prompts use the embedded templates
func NewStudyGuideBuilder(client *ModelClient, prompts *PromptManager) *StudyGuideBuilder {
	return &StudyGuideBuilder{stageRunner: newStageRunner(client, prompts)}
}

// CreateGuide builds a study guide from summary. Model output shorter than 51
// characters is rejected in favour of a guide assembled from the summary itself.
func (b *StudyGuideBuilder) CreateGuide(ctx context.Context, summary string) string {
	if trimmedLen(summary) < minSummaryLen {
		b.fallback(StageStudyGuide)
		return fallbackGuide(summary)
	}

	if text, ok := b.run(ctx, StageStudyGuide, summary, studyGuideMaxTokens, longerThan(acceptGuideLen)); ok {
		return "## Study Guide\n\n" + text
	}
	return fallbackGuide(summary)
}

func fallbackGuide(summary string) string {
	var sb strings.Builder
	sb.WriteString("## Study Guide\n\n### Key Points\n\n")

	sentences := strings.Split(summary, ". ")
	if len(sentences) > 5 {
		sentences = sentences[:5]
	}
	n := 0
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			n++
			fmt.Fprintf(&sb, "%d. %s\n", n, s)
		}
	}

	sb.WriteString("\n### Learning Objectives\n\n")
	sb.WriteString("- Understand the main concepts discussed\n")
	sb.WriteString("- Identify key takeaways from the content\n")
	sb.WriteString("- Apply knowledge to practical scenarios\n")

	sb.WriteString("\n### Study Tips\n\n")
	sb.WriteString("- Review the key points regularly\n")
	sb.WriteString("- Practice explaining concepts in your own words\n")
	sb.WriteString("- Connect new information to existing knowledge")
	return sb.String()
}
