package internal

import "context"

const topicsFallback = `## Recommended Topics

1. General Learning: Review the main concepts discussed
2. Practical Application: Consider real-world uses of the content
3. Further Study: Explore related topics and resources
4. Skill Development: Practice the techniques mentioned
5. Research: Look into recent developments in this field

> Tip: focus on the topics that interest you most.`

// TopicRecommender suggests follow-up topics for a transcript
type TopicRecommender struct {
	stageRunner
}

// NewTopicRecommender creates a TopicRecommender; nil prompts use the embedded templates
func NewTopicRecommender(client *ModelClient, prompts *PromptManager) *TopicRecommender {
	return &TopicRecommender{stageRunner: newStageRunner(client, prompts)}
}

// Recommend returns topics for further study
func (r *TopicRecommender) Recommend(ctx context.Context, transcript string) string {
	if trimmedLen(transcript) < minTranscriptLen {
		r.fallback(StageTopics)
		return topicsFallback
	}

	if text, ok := r.run(ctx, StageTopics, transcript, topicsMaxTokens, longerThan(acceptTopicsLen)); ok {
		return "## Recommended Topics\n\n" + text + "\n\n> Tip: start with topics that match your current skill level."
	}
	return topicsFallback
}
