package faq

import (
	"math"
	"sort"
	"strings"

	"campus-agent/config"
	"campus-agent/knowledge"
)

// Match pairs a catalog entry with its confidence for a query. Confidence
// is rounded to two decimals, matching how it is surfaced to clients.
type Match struct {
	Entry      Entry
	Confidence float64
}

// Matcher scores user queries against the fixed FAQ catalog using a
// keyword-overlap score blended with a string-similarity score. It holds no
// tenant state and is safe for concurrent use.
type Matcher struct {
	entries []Entry
	cfg     *config.Config
}

// NewMatcher loads the embedded catalog. Construct one per process at
// startup and inject it; the catalog never changes afterwards.
func NewMatcher(cfg *config.Config) (*Matcher, error) {
	entries, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return &Matcher{entries: entries, cfg: cfg}, nil
}

// FindBestMatch returns the highest-scoring entry for the query, or
// ok=false when the best score falls below the configured threshold.
// Selection uses strictly-greater comparison, so catalog order wins ties
// and repeated calls are deterministic.
func (m *Matcher) FindBestMatch(query string) (Match, bool) {
	queryNorm := knowledge.NormalizeStrict(query)

	var best *Entry
	bestScore := 0.0
	for i := range m.entries {
		score := m.score(queryNorm, &m.entries[i])
		if score > bestScore {
			bestScore = score
			best = &m.entries[i]
		}
	}

	if best == nil || bestScore < m.cfg.FAQMatchThreshold {
		return Match{}, false
	}
	return Match{Entry: *best, Confidence: round2(bestScore)}, true
}

// FindMultipleMatches returns every entry scoring at or above the multi
// threshold, sorted by descending confidence and truncated to topK.
// topK <= 0 uses the configured default.
func (m *Matcher) FindMultipleMatches(query string, topK int) []Match {
	if topK <= 0 {
		topK = m.cfg.FAQTopK
	}
	queryNorm := knowledge.NormalizeStrict(query)

	var matches []Match
	for i := range m.entries {
		score := m.score(queryNorm, &m.entries[i])
		if score >= m.cfg.FAQMultiThreshold {
			matches = append(matches, Match{Entry: m.entries[i], Confidence: round2(score)})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// score blends the keyword and semantic signals for one entry against a
// normalized query.
func (m *Matcher) score(queryNorm string, e *Entry) float64 {
	return m.keywordScore(queryNorm, e)*m.cfg.FAQKeywordWeight +
		m.semanticScore(queryNorm, e)*m.cfg.FAQSemanticWeight
}

// keywordScore is the fraction of the entry's keywords found in the query,
// plus a flat bonus when a full phrasing variant appears verbatim, capped
// at 1.0. A keyword counts if it is a substring of the whole query or of
// any single whitespace token of it.
func (m *Matcher) keywordScore(queryNorm string, e *Entry) float64 {
	tokens := strings.Fields(queryNorm)

	hits := 0
	for _, keyword := range e.Keywords {
		kw := strings.ToLower(keyword)
		if strings.Contains(queryNorm, kw) {
			hits++
			continue
		}
		for _, tok := range tokens {
			if strings.Contains(tok, kw) {
				hits++
				break
			}
		}
	}

	score := float64(hits) / float64(len(e.Keywords))
	for _, variant := range e.Variants {
		if strings.Contains(queryNorm, strings.ToLower(variant)) {
			score += 0.3
			break
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// semanticScore is the best similarity between the query and the entry's
// question or any phrasing variant, all normalized.
func (m *Matcher) semanticScore(queryNorm string, e *Entry) float64 {
	best := knowledge.Similarity(queryNorm, knowledge.NormalizeStrict(e.Question))
	for _, variant := range e.Variants {
		if s := knowledge.Similarity(queryNorm, knowledge.NormalizeStrict(variant)); s > best {
			best = s
		}
	}
	return best
}

// ByCategory returns the catalog entries in one category, in declaration
// order.
func (m *Matcher) ByCategory(category string) []Entry {
	var out []Entry
	for _, e := range m.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the distinct catalog categories in first-seen order.
func (m *Matcher) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.entries {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
