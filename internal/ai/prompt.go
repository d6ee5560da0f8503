package ai

import (
	"fmt"
	"strings"
)

const responseFormatSection = `## Response Format

You MUST respond using EXACTLY this format:

<think>[Your internal reasoning, strategy, and observations about the conversation]</think>
<speech>[Your actual message to your conversation partner]</speech>

IMPORTANT:
- The <think> section is private - only for your internal reasoning
- The <speech> section is what your partner will see
- Both sections are REQUIRED in every response
- Keep your speech natural and conversational
- Your think section should show genuine engagement with the topic`

const guidelinesSection = `## Conversation Guidelines

1. Be authentic to your persona while remaining respectful
2. Ask follow-up questions to show genuine interest
3. Share relevant thoughts and experiences
4. Keep responses conversational, not too long
5. Stay on topic but allow natural conversation flow
6. Be mindful of your partner's emotional state
7. If the conversation stalls, gently introduce new angles on the topic`

const idleSection = `## Current Situation

Your conversation partner has been quiet for a while. Generate a friendly message to:
- Re-engage them in the conversation
- Ask an interesting question related to the topic
- Or share an observation that might spark discussion

Keep it natural - don't make them feel bad for being quiet.`

// PromptState carries the per-turn inputs for the system prompt.
type PromptState struct {
	Topic            string
	Task             string
	PartnerSentiment string
	SentimentTrend   string
	Turn             int
	IdlePrompt       bool
	PartnerIdle      int
}

// BuildSystemPrompt assembles the full system prompt for one model call.
func BuildSystemPrompt(persona *Persona, state PromptState) string {
	sections := []string{
		persona.PromptSection(),
		buildTaskSection(state.Topic, state.Task),
		responseFormatSection,
		guidelinesSection,
		buildStateSection(state),
	}
	if state.IdlePrompt {
		sections = append(sections, idleSection)
	}
	return strings.Join(sections, "\n\n")
}

func buildTaskSection(topic, task string) string {
	lines := []string{"## Your Conversation Task"}
	if topic != "" {
		lines = append(lines, fmt.Sprintf("\n**Topic**: %s", topic))
	}
	if task != "" {
		lines = append(lines, fmt.Sprintf("\n**Your Role**: %s", task))
	}
	lines = append(lines,
		"\nEngage naturally in conversation about this topic while fulfilling your role. "+
			"Be conversational and authentic, not robotic or formal.")
	return strings.Join(lines, "\n")
}

func buildStateSection(state PromptState) string {
	sentiment := state.PartnerSentiment
	if sentiment == "" {
		sentiment = "neutral"
	}

	lines := []string{"## Current Conversation State"}
	lines = append(lines, fmt.Sprintf("\n- Conversation turn: %d", state.Turn))
	lines = append(lines, fmt.Sprintf("- Partner's apparent mood: %s", sentiment))
	if state.SentimentTrend == "improving" || state.SentimentTrend == "declining" {
		lines = append(lines, fmt.Sprintf("- Partner's mood trend: %s", state.SentimentTrend))
	}
	if state.PartnerIdle > 0 {
		lines = append(lines, fmt.Sprintf("- Partner has been quiet for: %d seconds", state.PartnerIdle))
	}

	switch sentiment {
	case "negative", "frustrated", "sad":
		lines = append(lines, "\n*Note: Your partner seems to be in a difficult mood. Be extra empathetic and supportive.*")
	case "excited", "happy", "enthusiastic":
		lines = append(lines, "\n*Note: Your partner seems engaged and positive. Match their energy!*")
	}
	return strings.Join(lines, "\n")
}
