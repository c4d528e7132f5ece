package knowledge

import (
	"context"
	"math"
	"strings"
	"testing"

	"campus-agent/config"
	apperrors "campus-agent/errors"

	"go.uber.org/zap"
)

// fakeStore is an in-memory Store for service tests. It counts the full
// entry-set reads so cache behavior can be asserted.
type fakeStore struct {
	entries      []Entry
	universities map[int64]University
	departments  map[int64]Department
	nextID       int64
	listCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		universities: make(map[int64]University),
		departments:  make(map[int64]Department),
		nextID:       1,
	}
}

func (f *fakeStore) Entry(_ context.Context, id int64) (Entry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, apperrors.ErrNotFound
}

func (f *fakeStore) ActiveEntriesByUniversity(_ context.Context, universityID int64) ([]Entry, error) {
	f.listCalls++
	var out []Entry
	for _, e := range f.entries {
		if e.UniversityID == universityID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) EntriesByCategory(_ context.Context, universityID int64, category string) ([]Entry, error) {
	var out []Entry
	for _, e := range f.entries {
		if e.UniversityID == universityID && e.IsActive && e.Category == category {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) DistinctCategories(_ context.Context, universityID int64) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, e := range f.entries {
		if e.UniversityID == universityID && e.IsActive && e.Category != "" && !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateEntry(_ context.Context, entry Entry) (Entry, error) {
	entry.ID = f.nextID
	f.nextID++
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeStore) UpdateEntry(_ context.Context, id int64, update EntryUpdate) (Entry, error) {
	for i, e := range f.entries {
		if e.ID != id {
			continue
		}
		if update.Title != nil {
			e.Title = *update.Title
		}
		if update.Content != nil {
			e.Content = *update.Content
		}
		if update.Priority != nil {
			e.Priority = *update.Priority
		}
		if update.IsActive != nil {
			e.IsActive = *update.IsActive
		}
		f.entries[i] = e
		return e, nil
	}
	return Entry{}, apperrors.ErrNotFound
}

func (f *fakeStore) DeactivateEntry(_ context.Context, id int64) (Entry, error) {
	active := false
	return f.UpdateEntry(context.Background(), id, EntryUpdate{IsActive: &active})
}

func (f *fakeStore) University(_ context.Context, id int64) (University, error) {
	if u, ok := f.universities[id]; ok {
		return u, nil
	}
	return University{}, apperrors.ErrNotFound
}

func (f *fakeStore) Department(_ context.Context, id int64) (Department, error) {
	if d, ok := f.departments[id]; ok {
		return d, nil
	}
	return Department{}, apperrors.ErrNotFound
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(config.Defaults(), store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc
}

func activeEntry(universityID int64, departmentID *int64, title, content string) Entry {
	return Entry{
		UniversityID: universityID,
		DepartmentID: departmentID,
		Title:        title,
		Content:      content,
		Priority:     5,
		IsActive:     true,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestSearchTenantIsolation(t *testing.T) {
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Title: "tuition fees", Content: "tuition fees", Priority: 5, IsActive: true},
	}
	svc := newTestService(t, store)

	results, err := svc.Search(context.Background(), "tuition fees", 2, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() for another university returned %d results, want 0", len(results))
	}
}

func TestSearchZeroUniversity(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	results, err := svc.Search(context.Background(), "anything", 0, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if results != nil {
		t.Errorf("Search() with zero university = %v, want nil", results)
	}
}

func TestSearchEmptyKnowledgeBase(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	results, err := svc.Search(context.Background(), "tuition", 1, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty knowledge base returned %d results, want 0", len(results))
	}
}

func TestSearchDepartmentBoost(t *testing.T) {
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Title: "tuition fees", Content: "tuition fees", Priority: 5, IsActive: true},
		{ID: 2, UniversityID: 1, DepartmentID: int64Ptr(10), Title: "tuition fees", Content: "tuition fees", Priority: 5, IsActive: true},
	}
	svc := newTestService(t, store)

	results, err := svc.Search(context.Background(), "tuition fees", 1, int64Ptr(10), DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Entry.ID != 2 || results[0].Scope != ScopeDepartment {
		t.Errorf("top result = entry %d scope %q, want department entry 2", results[0].Entry.ID, results[0].Scope)
	}
	if results[1].Scope != ScopeUniversity {
		t.Errorf("second result scope = %q, want %q", results[1].Scope, ScopeUniversity)
	}
	diff := results[0].Score - results[1].Score
	if math.Abs(diff-0.3) > 1e-9 {
		t.Errorf("department boost = %v, want 0.3", diff)
	}
}

func TestSearchBoostCanOvertake(t *testing.T) {
	// A weaker department entry must outrank a stronger university-wide one
	// once boosted.
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Title: "course registration deadline", Content: "closes in october", Priority: 5, IsActive: true},
		{ID: 2, UniversityID: 1, DepartmentID: int64Ptr(10), Title: "registration", Content: "registration help desk", Priority: 5, IsActive: true},
	}
	svc := newTestService(t, store)

	results, err := svc.Search(context.Background(), "course registration deadline", 1, int64Ptr(10), DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Entry.ID != 2 {
		t.Errorf("top result = entry %d, want boosted department entry 2", results[0].Entry.ID)
	}
}

func TestSearchExcludesOtherDepartments(t *testing.T) {
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, DepartmentID: int64Ptr(99), Title: "tuition fees", Content: "tuition fees", Priority: 5, IsActive: true},
	}
	svc := newTestService(t, store)

	for _, dept := range []*int64{nil, int64Ptr(10)} {
		results, err := svc.Search(context.Background(), "tuition fees", 1, dept, DefaultSearchLimit)
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Search() returned %d results for foreign department entry, want 0", len(results))
		}
	}
}

func TestSearchScoreThreshold(t *testing.T) {
	// No textual overlap at all: only the priority component contributes
	// (10/10 * 0.1 = 0.1), which is below the floor.
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Title: "zzz", Content: "zzz", Priority: 10, IsActive: true},
	}
	svc := newTestService(t, store)

	results, err := svc.Search(context.Background(), "tuition fees", 1, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() returned %d results below threshold, want 0", len(results))
	}
}

func TestSearchLimit(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 6; i++ {
		store.entries = append(store.entries, Entry{
			ID: int64(i + 1), UniversityID: 1,
			Title: "tuition fees", Content: "tuition fees",
			Priority: 5, IsActive: true,
		})
	}
	svc := newTestService(t, store)

	tests := []struct {
		limit int
		want  int
	}{
		{limit: 2, want: 2},
		{limit: 10, want: 6},
		{limit: 0, want: 0},
		{limit: -1, want: 0},
	}
	for _, tt := range tests {
		results, err := svc.Search(context.Background(), "tuition fees", 1, nil, tt.limit)
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}
		if len(results) != tt.want {
			t.Errorf("Search() with limit %d returned %d results, want %d", tt.limit, len(results), tt.want)
		}
	}
}

func TestSearchResultsSortedDescending(t *testing.T) {
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Title: "library opening hours", Content: "the library is open daily", Priority: 5, IsActive: true},
		{ID: 2, UniversityID: 1, Title: "tuition fees", Content: "tuition fees", Priority: 5, IsActive: true},
		{ID: 3, UniversityID: 1, Title: "tuition fees schedule", Content: "fees are due each semester", Priority: 5, IsActive: true},
	}
	svc := newTestService(t, store)

	results, err := svc.Search(context.Background(), "tuition fees", 1, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted: score[%d]=%v > score[%d]=%v", i, results[i].Score, i-1, results[i-1].Score)
		}
	}
	if len(results) == 0 || results[0].Entry.ID != 2 {
		t.Errorf("top result should be the exact title match, got %+v", results)
	}
}

func TestSearchCachesEntrySet(t *testing.T) {
	store := newFakeStore()
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Title: "tuition fees", Content: "tuition fees", Priority: 5, IsActive: true},
	}
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.Search(ctx, "tuition fees", 1, nil, DefaultSearchLimit); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if _, err := svc.Search(ctx, "tuition fees", 1, nil, DefaultSearchLimit); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if store.listCalls != 1 {
		t.Errorf("store reads after two searches = %d, want 1", store.listCalls)
	}

	if _, err := svc.CreateEntry(ctx, activeEntry(1, nil, "exam schedule", "exams start in january")); err != nil {
		t.Fatalf("CreateEntry() error: %v", err)
	}
	results, err := svc.Search(ctx, "exam schedule", 1, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("store reads after write = %d, want 2", store.listCalls)
	}
	found := false
	for _, r := range results {
		if r.Entry.Title == "exam schedule" {
			found = true
		}
	}
	if !found {
		t.Errorf("newly created entry not visible after write, results: %+v", results)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	store := newFakeStore()
	store.departments[10] = Department{ID: 10, UniversityID: 1, Name: "Computer Science", Code: "CS"}
	store.departments[20] = Department{ID: 20, UniversityID: 2, Name: "Mathematics", Code: "MATH"}
	svc := newTestService(t, store)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry Entry
	}{
		{name: "missing_university", entry: Entry{Title: "t", Content: "c"}},
		{name: "missing_title", entry: Entry{UniversityID: 1, Content: "c"}},
		{name: "missing_content", entry: Entry{UniversityID: 1, Title: "t"}},
		{name: "priority_too_high", entry: Entry{UniversityID: 1, Title: "t", Content: "c", Priority: 11}},
		{name: "priority_negative", entry: Entry{UniversityID: 1, Title: "t", Content: "c", Priority: -1}},
		{name: "foreign_department", entry: Entry{UniversityID: 1, DepartmentID: int64Ptr(20), Title: "t", Content: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(ctx, tt.entry)
			if !apperrors.IsInvalidInput(err) {
				t.Errorf("CreateEntry() error = %v, want invalid input", err)
			}
		})
	}

	created, err := svc.CreateEntry(ctx, Entry{UniversityID: 1, DepartmentID: int64Ptr(10), Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("CreateEntry() error: %v", err)
	}
	if created.Priority != 5 {
		t.Errorf("default priority = %d, want 5", created.Priority)
	}
	if !created.IsActive {
		t.Error("created entry is not active")
	}
}

func TestDeleteEntryHidesFromSearch(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, activeEntry(1, nil, "tuition fees", "tuition fees"))
	if err != nil {
		t.Fatalf("CreateEntry() error: %v", err)
	}
	if err := svc.DeleteEntry(ctx, created.ID); err != nil {
		t.Fatalf("DeleteEntry() error: %v", err)
	}

	results, err := svc.Search(ctx, "tuition fees", 1, nil, DefaultSearchLimit)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("deactivated entry still returned: %+v", results)
	}
}

func TestTenantSummary(t *testing.T) {
	store := newFakeStore()
	store.universities[1] = University{
		ID: 1, Name: "University of Algiers", NameAr: "جامعة الجزائر",
		City: "Algiers", Website: "https://univ-alger.dz",
	}
	store.entries = []Entry{
		{ID: 1, UniversityID: 1, Category: "fees", IsActive: true, Title: "t", Content: "c"},
		{ID: 2, UniversityID: 1, Category: "registration", IsActive: true, Title: "t", Content: "c"},
	}
	svc := newTestService(t, store)

	summary := svc.TenantSummary(context.Background(), 1)
	for _, want := range []string{
		"University: University of Algiers (جامعة الجزائر)",
		"Location: Algiers",
		"Website: https://univ-alger.dz",
		"Available information categories: fees, registration",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	if got := svc.TenantSummary(context.Background(), 42); got != "" {
		t.Errorf("summary for unknown university = %q, want empty", got)
	}
}

func TestDepartmentSummary(t *testing.T) {
	store := newFakeStore()
	store.departments[10] = Department{
		ID: 10, UniversityID: 1, Name: "Computer Science", Code: "CS",
		Building: "Block B",
	}
	svc := newTestService(t, store)

	summary := svc.DepartmentSummary(context.Background(), 10, 1)
	for _, want := range []string{
		"Department: Computer Science",
		"Department Code: CS",
		"Building: Block B",
		"Official Website: Not available",
		"Description: No description available",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	if got := svc.DepartmentSummary(context.Background(), 10, 2); got != "" {
		t.Errorf("summary for foreign university = %q, want empty", got)
	}
}
