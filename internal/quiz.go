package internal

import "context"

const quizFallback = `## Quiz Questions

**Q1. What are the main concepts discussed in this content?**
Answer: Review the key points and main topics covered.

**Q2. How can you apply this knowledge practically?**
Answer: Consider real-world applications and scenarios.

**Q3. What are the key takeaways from this content?**
Answer: Focus on the most important points and insights.

**Q4. Which concepts would you like to explore further?**
Answer: Identify areas that need deeper understanding.

**Q5. How does this content relate to your existing knowledge?**
Answer: Connect new information to what you already know.

> Tip: use these questions to test your understanding.`

// QuizGenerator writes quiz questions from a study guide
type QuizGenerator struct {
	stageRunner
}

// NewQuizGenerator creates a QuizGenerator; nil prompts use the embedded templates
func NewQuizGenerator(client *ModelClient, prompts *PromptManager) *QuizGenerator {
	return &QuizGenerator{stageRunner: newStageRunner(client, prompts)}
}

// Generate returns quiz questions for guide
func (q *QuizGenerator) Generate(ctx context.Context, guide string) string {
	if trimmedLen(guide) < minGuideLen {
		q.fallback(StageQuiz)
		return quizFallback
	}

	if text, ok := q.run(ctx, StageQuiz, guide, quizMaxTokens, longerThan(acceptQuizLen)); ok {
		return "## Quiz Questions\n\n" + text + "\n\n> Tip: test yourself regularly to reinforce learning."
	}
	return quizFallback
}
