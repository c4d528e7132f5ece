package chat

import (
	"context"
	"strings"

	"campus-agent/config"
	"campus-agent/faq"
	"campus-agent/knowledge"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const systemInstruction = `You are an intelligent assistant for universities.
You help students and staff with:
- Academic inquiries and course information
- Administrative procedures
- Campus facilities and services
- Department-specific guidance
- General university information

IMPORTANT INSTRUCTIONS:
1. Always respond in the SAME LANGUAGE the user uses (Arabic, English, or French)
2. Focus your answers on the specific university and department the user belongs to
3. Use the knowledge base information provided when available
4. When department information is available, provide department-specific guidance
5. Reference official department websites when appropriate
6. If you don't have specific information, provide general guidance and suggest contacting the university or department directly
7. Be helpful, professional, and concise`

// PromptContext is everything the assembler gathers for one chat turn. All
// retrieval is complete by the time a PromptContext exists; nothing here is
// streamed or partial.
type PromptContext struct {
	UniversitySummary string
	DepartmentSummary string
	KnowledgeBlock    string
	Sources           []string
	FAQ               *faq.Match
}

// Assembler gathers tenant, department, knowledge and FAQ context for a
// query. The knowledge search and FAQ match are independent signals and run
// concurrently; both are fully joined before the prompt is built.
type Assembler struct {
	knowledge *knowledge.Service
	faq       *faq.Matcher
	cfg       *config.Config
	logger    *zap.Logger
}

func NewAssembler(ks *knowledge.Service, matcher *faq.Matcher, cfg *config.Config, logger *zap.Logger) *Assembler {
	return &Assembler{
		knowledge: ks,
		faq:       matcher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Build assembles the prompt context for one user message. Retrieval
// failures degrade to missing context blocks; a chat turn never fails
// because context could not be gathered.
func (a *Assembler) Build(ctx context.Context, query string, universityID int64, departmentID *int64) PromptContext {
	var pctx PromptContext

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := a.knowledge.Search(gctx, query, universityID, departmentID, a.cfg.ChatKnowledgeResults)
		if err != nil {
			a.logger.Warn("Knowledge search failed, continuing without knowledge context",
				zap.Int64("university_id", universityID),
				zap.Error(err))
			return nil
		}
		pctx.KnowledgeBlock, pctx.Sources = a.renderKnowledge(results)
		return nil
	})
	g.Go(func() error {
		if match, ok := a.faq.FindBestMatch(query); ok {
			pctx.FAQ = &match
		}
		return nil
	})
	_ = g.Wait()

	if universityID != 0 {
		pctx.UniversitySummary = a.knowledge.TenantSummary(ctx, universityID)
		if departmentID != nil {
			pctx.DepartmentSummary = a.knowledge.DepartmentSummary(ctx, *departmentID, universityID)
		}
	}

	return pctx
}

// renderKnowledge turns ranked results into the bullet-line block injected
// into the prompt, truncating each body to the configured snippet length.
func (a *Assembler) renderKnowledge(results []knowledge.Result) (string, []string) {
	if len(results) == 0 {
		return "", nil
	}
	lines := make([]string, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		content := r.Entry.Content
		if runes := []rune(content); len(runes) > a.cfg.SnippetLength {
			content = string(runes[:a.cfg.SnippetLength])
		}
		lines = append(lines, "- "+r.Entry.Title+": "+content)
		sources = append(sources, r.Entry.Title)
	}
	return strings.Join(lines, "\n"), sources
}

// SystemPrompt renders the full system message for a turn.
func (pctx PromptContext) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(systemInstruction)
	if pctx.UniversitySummary != "" {
		b.WriteString("\n\nCONTEXT ABOUT USER'S UNIVERSITY:\n" + pctx.UniversitySummary + "\n")
	}
	if pctx.DepartmentSummary != "" {
		b.WriteString("\n\nCONTEXT ABOUT USER'S DEPARTMENT:\n" + pctx.DepartmentSummary + "\n")
	}
	if pctx.KnowledgeBlock != "" {
		b.WriteString("\n\nRELEVANT INFORMATION FROM KNOWLEDGE BASE:\n" + pctx.KnowledgeBlock + "\n")
	}
	if pctx.FAQ != nil {
		b.WriteString("\n\nMATCHED FAQ (use as the basis of your answer if relevant):\nQ: " +
			pctx.FAQ.Entry.Question + "\nA: " + pctx.FAQ.Entry.Answer + "\n")
	}
	return b.String()
}
