package chat

import (
	"context"
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

const titlePrompt = `Generate a very short, concise title (3-6 words max) that summarizes the topic of this question.
Just output the title, nothing else.

Examples:
- "Course Registration Help"
- "Library Hours Inquiry"
- "Tuition Payment Question"

Question: `

// GenerateTitle produces a short chat title from the first user message.
// It asks the generation service first and falls back to a local heuristic
// when the call fails, so titling never blocks or fails a chat.
func (s *Service) GenerateTitle(ctx context.Context, firstMessage string) string {
	maxLen := s.cfg.ChatTitleMaxLength

	title, err := s.llm.Chat(ctx, []Message{
		{Role: "user", Content: titlePrompt + firstMessage + "\n\nTitle:"},
	}, 0.3, 20)
	if err != nil {
		s.logger.Debug("Title generation call failed, using local fallback", zap.Error(err))
		return localTitle(firstMessage, maxLen)
	}

	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if title == "" {
		return localTitle(firstMessage, maxLen)
	}
	return truncateTitle(title, maxLen)
}

// localTitle derives a title from the message itself: the first sentence
// when one can be detected, otherwise the first six words.
func localTitle(message string, maxLen int) string {
	message = strings.TrimSpace(message)

	if doc, err := prose.NewDocument(message); err == nil {
		if sentences := doc.Sentences(); len(sentences) > 0 {
			if first := strings.TrimSpace(sentences[0].Text); first != "" {
				return truncateTitle(first, maxLen)
			}
		}
	}

	words := strings.Fields(message)
	if len(words) > 6 {
		words = words[:6]
	}
	return truncateTitle(strings.Join(words, " "), maxLen)
}

func truncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + "..."
}
