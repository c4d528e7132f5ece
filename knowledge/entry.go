package knowledge

import (
	"strings"
	"time"
)

// Entry is a curated piece of text owned by one university, optionally
// scoped to a single department. DepartmentID == nil means the entry is
// university-wide.
type Entry struct {
	ID           int64
	UniversityID int64
	DepartmentID *int64
	Title        string
	Content      string
	ContentAr    string
	Category     string
	Tags         string
	SourceURL    string
	Priority     int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    *int64
}

// Scope labels on a Result indicating which bucket the entry matched under.
const (
	ScopeDepartment = "department"
	ScopeUniversity = "university"
)

// Result is a transient search hit. Score is a raw ranking value:
// department-scoped hits carry the additive boost and may exceed 1.0.
type Result struct {
	Entry Entry
	Score float64
	Scope string
}

// EntryUpdate is an explicit partial update. Nil fields are left untouched;
// there is no way to patch a field this struct does not enumerate.
type EntryUpdate struct {
	Title     *string
	Content   *string
	ContentAr *string
	Category  *string
	Tags      *string
	SourceURL *string
	Priority  *int
	IsActive  *bool
}

// SplitTags splits a comma-joined tag string, trimming whitespace around
// each comma. Empty segments are dropped.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTags is the inverse of SplitTags.
func JoinTags(tags []string) string {
	trimmed := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return strings.Join(trimmed, ",")
}
