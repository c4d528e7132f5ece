package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"campus-agent/config"
	apperrors "campus-agent/errors"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// DefaultSearchLimit is the result cap applied by callers that do not have
// an explicit limit of their own.
const DefaultSearchLimit = 5

// Store is the persistence boundary the service depends on. Implementations
// must only ever return entries belonging to the requested university.
type Store interface {
	Entry(ctx context.Context, id int64) (Entry, error)
	ActiveEntriesByUniversity(ctx context.Context, universityID int64) ([]Entry, error)
	EntriesByCategory(ctx context.Context, universityID int64, category string) ([]Entry, error)
	DistinctCategories(ctx context.Context, universityID int64) ([]string, error)
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	UpdateEntry(ctx context.Context, id int64, update EntryUpdate) (Entry, error)
	DeactivateEntry(ctx context.Context, id int64) (Entry, error)
	University(ctx context.Context, id int64) (University, error)
	Department(ctx context.Context, id int64) (Department, error)
}

// Service ranks a university's knowledge entries against chat queries and
// owns the write path for entries. A small per-university cache avoids
// re-reading the full entry set on every turn; any write for a university
// evicts that university's cached set, and cache keys are the university id
// so one tenant's entries can never serve another tenant's request.
type Service struct {
	store  Store
	cfg    *config.Config
	logger *zap.Logger
	cache  *lru.Cache
}

func NewService(cfg *config.Config, store Store, logger *zap.Logger) (*Service, error) {
	size := cfg.KnowledgeCacheSize
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge cache: %w", err)
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logger,
		cache:  cache,
	}, nil
}

// Search returns up to limit entries relevant to query, scoped to the given
// university and optionally boosted toward the given department. A zero
// universityID yields an empty result rather than an error: retrieval is
// advisory and a chat turn must not fail for lack of tenant context.
// Entries scoped to a department other than the caller's are excluded
// entirely. limit <= 0 yields an empty result.
func (s *Service) Search(ctx context.Context, query string, universityID int64, departmentID *int64, limit int) ([]Result, error) {
	if universityID == 0 || limit <= 0 {
		return nil, nil
	}

	entries, err := s.activeEntries(ctx, universityID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	queryNorm := Normalize(query)

	// Department bucket first so equal boosted scores keep department
	// entries ahead through the stable sort.
	var results []Result
	for _, entry := range entries {
		if departmentID == nil || entry.DepartmentID == nil || *entry.DepartmentID != *departmentID {
			continue
		}
		score := s.scoreEntry(queryNorm, entry)
		if score > s.cfg.ScoreThreshold {
			results = append(results, Result{
				Entry: entry,
				Score: score + s.cfg.DepartmentBoost,
				Scope: ScopeDepartment,
			})
		}
	}
	for _, entry := range entries {
		if entry.DepartmentID != nil {
			continue
		}
		score := s.scoreEntry(queryNorm, entry)
		if score > s.cfg.ScoreThreshold {
			results = append(results, Result{
				Entry: entry,
				Score: score,
				Scope: ScopeUniversity,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scoreEntry computes the unboosted combined relevance of one entry. The
// content window keeps similarity cost bounded on long bodies.
func (s *Service) scoreEntry(queryNorm string, entry Entry) float64 {
	titleScore := Similarity(queryNorm, Normalize(entry.Title))

	content := entry.Content
	if runes := []rune(content); len(runes) > s.cfg.ContentWindow {
		content = string(runes[:s.cfg.ContentWindow])
	}
	contentScore := Similarity(queryNorm, Normalize(content))

	hits := 0
	for _, tag := range SplitTags(entry.Tags) {
		if strings.Contains(queryNorm, strings.ToLower(tag)) {
			hits++
		}
	}
	keywordScore := 0.2 * float64(hits)
	if keywordScore > 1.0 {
		keywordScore = 1.0
	}

	return titleScore*s.cfg.TitleWeight +
		contentScore*s.cfg.ContentWeight +
		keywordScore*s.cfg.KeywordWeight +
		float64(entry.Priority)/10*s.cfg.PriorityWeight
}

func (s *Service) activeEntries(ctx context.Context, universityID int64) ([]Entry, error) {
	if cached, ok := s.cache.Get(universityID); ok {
		return cached.([]Entry), nil
	}
	entries, err := s.store.ActiveEntriesByUniversity(ctx, universityID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to load knowledge entries")
	}
	s.cache.Add(universityID, entries)
	return entries, nil
}

func (s *Service) invalidate(universityID int64) {
	s.cache.Remove(universityID)
}

// Entry returns one entry by id regardless of its active flag.
func (s *Service) Entry(ctx context.Context, id int64) (Entry, error) {
	return s.store.Entry(ctx, id)
}

// Categories returns the distinct active category labels for a university.
func (s *Service) Categories(ctx context.Context, universityID int64) ([]string, error) {
	if universityID == 0 {
		return nil, nil
	}
	return s.store.DistinctCategories(ctx, universityID)
}

// ByCategory returns a university's active entries in one category, ordered
// by descending priority.
func (s *Service) ByCategory(ctx context.Context, universityID int64, category string) ([]Entry, error) {
	if universityID == 0 {
		return nil, nil
	}
	return s.store.EntriesByCategory(ctx, universityID, category)
}

// TenantSummary renders the short university blurb used as the prompt
// preamble. An unknown university yields an empty string, indistinguishable
// from "no knowledge available".
func (s *Service) TenantSummary(ctx context.Context, universityID int64) string {
	uni, err := s.store.University(ctx, universityID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Warn("Failed to load university for summary",
				zap.Int64("university_id", universityID),
				zap.Error(err))
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("University: " + uni.Name)
	if uni.NameAr != "" {
		b.WriteString(" (" + uni.NameAr + ")")
	}
	if uni.City != "" {
		b.WriteString("\nLocation: " + uni.City)
	}
	if uni.Website != "" {
		b.WriteString("\nWebsite: " + uni.Website)
	}

	categories, err := s.Categories(ctx, universityID)
	if err != nil {
		s.logger.Warn("Failed to load categories for summary",
			zap.Int64("university_id", universityID),
			zap.Error(err))
	}
	if len(categories) > 0 {
		if len(categories) > 5 {
			categories = categories[:5]
		}
		b.WriteString("\nAvailable information categories: " + strings.Join(categories, ", "))
	}

	return b.String()
}

// DepartmentSummary renders the department context block. The department
// must belong to the given university; any mismatch yields an empty string.
func (s *Service) DepartmentSummary(ctx context.Context, departmentID, universityID int64) string {
	dept, err := s.store.Department(ctx, departmentID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Warn("Failed to load department for summary",
				zap.Int64("department_id", departmentID),
				zap.Error(err))
		}
		return ""
	}
	if dept.UniversityID != universityID {
		return ""
	}

	return fmt.Sprintf("Department: %s\nDepartment Code: %s\nOfficial Website: %s\nEmail: %s\nBuilding: %s\nDescription: %s\nHead of Department: %s",
		dept.Name,
		dept.Code,
		orDefault(dept.OfficialWebsite, "Not available"),
		orDefault(dept.Email, "Not available"),
		orDefault(dept.Building, "Not specified"),
		orDefault(dept.Description, "No description available"),
		orDefault(dept.HeadOfDepartment, "Not specified"))
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// CreateEntry validates and persists a new knowledge entry and evicts the
// owning university's cached entry set. An entry scoped to a department of
// a different university is rejected here, in the writer path, so the read
// path never has to defend against it.
func (s *Service) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	if entry.UniversityID == 0 {
		return Entry{}, apperrors.WrapError(apperrors.ErrInvalidInput, "university id is required")
	}
	if strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Content) == "" {
		return Entry{}, apperrors.WrapError(apperrors.ErrInvalidInput, "title and content are required")
	}
	if entry.Priority == 0 {
		entry.Priority = 5
	}
	if entry.Priority < 1 || entry.Priority > 10 {
		return Entry{}, apperrors.WrapError(apperrors.ErrInvalidInput, "priority must be between 1 and 10")
	}
	if entry.DepartmentID != nil {
		dept, err := s.store.Department(ctx, *entry.DepartmentID)
		if err != nil {
			return Entry{}, apperrors.WrapError(err, "failed to resolve department")
		}
		if dept.UniversityID != entry.UniversityID {
			return Entry{}, apperrors.WrapError(apperrors.ErrInvalidInput, "department belongs to a different university")
		}
	}
	entry.IsActive = true

	created, err := s.store.CreateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	s.invalidate(created.UniversityID)
	return created, nil
}

// UpdateEntry applies a partial update and evicts the owning university's
// cached entry set.
func (s *Service) UpdateEntry(ctx context.Context, id int64, update EntryUpdate) (Entry, error) {
	if update.Priority != nil && (*update.Priority < 1 || *update.Priority > 10) {
		return Entry{}, apperrors.WrapError(apperrors.ErrInvalidInput, "priority must be between 1 and 10")
	}
	updated, err := s.store.UpdateEntry(ctx, id, update)
	if err != nil {
		return Entry{}, err
	}
	s.invalidate(updated.UniversityID)
	return updated, nil
}

// DeleteEntry soft-deletes an entry via its active flag.
func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	entry, err := s.store.DeactivateEntry(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(entry.UniversityID)
	return nil
}
