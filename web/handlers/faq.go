package handlers

import (
	"net/http"
	"strconv"

	"campus-agent/faq"

	"github.com/gin-gonic/gin"
)

type FAQHandler struct {
	matcher *faq.Matcher
}

func NewFAQHandler(matcher *faq.Matcher) *FAQHandler {
	return &FAQHandler{matcher: matcher}
}

// Search mirrors the single best-match lookup used as the chatbot fast
// path. "found": false does not mean failure, only that the generation
// service should answer instead.
func (h *FAQHandler) Search(c *gin.Context) {
	match, ok := h.matcher.FindBestMatch(c.Query("q"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"found":   false,
			"message": "No FAQ found for this question. The AI will provide a general answer.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"found":      true,
		"question":   match.Entry.Question,
		"answer":     match.Entry.Answer,
		"category":   match.Entry.Category,
		"confidence": match.Confidence,
	})
}

func (h *FAQHandler) Matches(c *gin.Context) {
	topK, _ := strconv.Atoi(c.Query("top_k"))
	matches := h.matcher.FindMultipleMatches(c.Query("q"), topK)

	out := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		out = append(out, gin.H{
			"question":   m.Entry.Question,
			"answer":     m.Entry.Answer,
			"category":   m.Entry.Category,
			"confidence": m.Confidence,
		})
	}
	c.JSON(http.StatusOK, gin.H{"matches": out})
}

func (h *FAQHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.matcher.Categories()})
}

func (h *FAQHandler) ByCategory(c *gin.Context) {
	entries := h.matcher.ByCategory(c.Param("name"))
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":       e.ID,
			"question": e.Question,
			"answer":   e.Answer,
			"category": e.Category,
		})
	}
	c.JSON(http.StatusOK, gin.H{"faqs": out})
}
