package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "campus-agent/errors"
	"campus-agent/knowledge"
)

const entryColumns = `id, university_id, department_id, title, content, content_ar,
	category, tags, source_url, priority, is_active, created_at, updated_at, created_by`

func scanEntry(row interface{ Scan(...any) error }) (knowledge.Entry, error) {
	var e knowledge.Entry
	var departmentID, createdBy sql.NullInt64
	err := row.Scan(
		&e.ID,
		&e.UniversityID,
		&departmentID,
		&e.Title,
		&e.Content,
		&e.ContentAr,
		&e.Category,
		&e.Tags,
		&e.SourceURL,
		&e.Priority,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
		&createdBy,
	)
	if err != nil {
		return knowledge.Entry{}, err
	}
	if departmentID.Valid {
		e.DepartmentID = &departmentID.Int64
	}
	if createdBy.Valid {
		e.CreatedBy = &createdBy.Int64
	}
	return e, nil
}

// Entry returns one knowledge entry by id, active or not.
func (s *PostgresStore) Entry(ctx context.Context, id int64) (knowledge.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM knowledge_base WHERE id = $1`

	entry, err := scanEntry(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.Entry{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "knowledge entry %d", id)
	}
	if err != nil {
		return knowledge.Entry{}, apperrors.WrapError(err, "failed to load knowledge entry")
	}
	return entry, nil
}

// ActiveEntriesByUniversity returns every active entry owned by the given
// university, in insertion order. The tenant filter lives in the query
// itself: rows from other universities are unreachable.
func (s *PostgresStore) ActiveEntriesByUniversity(ctx context.Context, universityID int64) ([]knowledge.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM knowledge_base
		WHERE university_id = $1 AND is_active = TRUE
		ORDER BY id`

	rows, err := s.DB.QueryContext(ctx, query, universityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []knowledge.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EntriesByCategory returns a university's active entries in one category,
// most authoritative first.
func (s *PostgresStore) EntriesByCategory(ctx context.Context, universityID int64, category string) ([]knowledge.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM knowledge_base
		WHERE university_id = $1 AND category = $2 AND is_active = TRUE
		ORDER BY priority DESC, id`

	rows, err := s.DB.QueryContext(ctx, query, universityID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge entries by category: %w", err)
	}
	defer rows.Close()

	var entries []knowledge.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DistinctCategories returns the distinct non-empty category labels of a
// university's active entries.
func (s *PostgresStore) DistinctCategories(ctx context.Context, universityID int64) ([]string, error) {
	query := `SELECT DISTINCT category FROM knowledge_base
		WHERE university_id = $1 AND is_active = TRUE AND category <> ''
		ORDER BY category`

	rows, err := s.DB.QueryContext(ctx, query, universityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateEntry inserts a new knowledge entry and returns it with its
// database-assigned id and timestamps.
func (s *PostgresStore) CreateEntry(ctx context.Context, entry knowledge.Entry) (knowledge.Entry, error) {
	query := `INSERT INTO knowledge_base
		(university_id, department_id, title, content, content_ar, category, tags, source_url, priority, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + entryColumns

	created, err := scanEntry(s.DB.QueryRowContext(ctx, query,
		entry.UniversityID,
		nullInt64(entry.DepartmentID),
		entry.Title,
		entry.Content,
		entry.ContentAr,
		entry.Category,
		entry.Tags,
		entry.SourceURL,
		entry.Priority,
		entry.IsActive,
		nullInt64(entry.CreatedBy),
	))
	if err != nil {
		return knowledge.Entry{}, apperrors.WrapError(err, "failed to create knowledge entry")
	}
	return created, nil
}

// UpdateEntry applies a partial update built from the explicit field set in
// EntryUpdate. A nil field leaves the column untouched.
func (s *PostgresStore) UpdateEntry(ctx context.Context, id int64, update knowledge.EntryUpdate) (knowledge.Entry, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Content != nil {
		add("content", *update.Content)
	}
	if update.ContentAr != nil {
		add("content_ar", *update.ContentAr)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Tags != nil {
		add("tags", *update.Tags)
	}
	if update.SourceURL != nil {
		add("source_url", *update.SourceURL)
	}
	if update.Priority != nil {
		add("priority", *update.Priority)
	}
	if update.IsActive != nil {
		add("is_active", *update.IsActive)
	}

	query := `UPDATE knowledge_base SET ` + strings.Join(set, ", ") +
		` WHERE id = $1 RETURNING ` + entryColumns

	updated, err := scanEntry(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.Entry{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "knowledge entry %d", id)
	}
	if err != nil {
		return knowledge.Entry{}, apperrors.WrapError(err, "failed to update knowledge entry")
	}
	return updated, nil
}

// DeactivateEntry soft-deletes an entry and returns its final state.
func (s *PostgresStore) DeactivateEntry(ctx context.Context, id int64) (knowledge.Entry, error) {
	query := `UPDATE knowledge_base SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 RETURNING ` + entryColumns

	entry, err := scanEntry(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.Entry{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "knowledge entry %d", id)
	}
	if err != nil {
		return knowledge.Entry{}, apperrors.WrapError(err, "failed to deactivate knowledge entry")
	}
	return entry, nil
}

// University returns one university by id.
func (s *PostgresStore) University(ctx context.Context, id int64) (knowledge.University, error) {
	query := `SELECT id, name, name_ar, code, city, province, website, email, phone,
		address, description, is_active, created_at, updated_at
		FROM universities WHERE id = $1`

	var u knowledge.University
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.NameAr, &u.Code, &u.City, &u.Province, &u.Website,
		&u.Email, &u.Phone, &u.Address, &u.Description, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.University{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "university %d", id)
	}
	if err != nil {
		return knowledge.University{}, apperrors.WrapError(err, "failed to load university")
	}
	return u, nil
}

// Department returns one department by id.
func (s *PostgresStore) Department(ctx context.Context, id int64) (knowledge.Department, error) {
	query := `SELECT id, university_id, name, name_ar, name_fr, code, official_website,
		email, phone, building, description, head_of_department, is_active, created_at, updated_at
		FROM departments WHERE id = $1`

	var d knowledge.Department
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.UniversityID, &d.Name, &d.NameAr, &d.NameFr, &d.Code,
		&d.OfficialWebsite, &d.Email, &d.Phone, &d.Building, &d.Description,
		&d.HeadOfDepartment, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return knowledge.Department{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "department %d", id)
	}
	if err != nil {
		return knowledge.Department{}, apperrors.WrapError(err, "failed to load department")
	}
	return d, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
