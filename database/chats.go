package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "campus-agent/errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Chat is one conversation owned by a user, bound to that user's university
// and optional department at creation time.
type Chat struct {
	ID           uuid.UUID
	UserID       *int64
	UniversityID *int64
	DepartmentID *int64
	Title        string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is one chat turn. Sources lists the titles of the knowledge
// entries injected into the prompt for an assistant turn; empty otherwise.
type Message struct {
	ID         uuid.UUID
	ChatID     uuid.UUID
	Role       string
	Content    string
	Model      string
	TokenCount int
	Sources    []string
	CreatedAt  time.Time
}

func (s *PostgresStore) CreateChat(ctx context.Context, chat Chat) (Chat, error) {
	query := `INSERT INTO chats (id, user_id, university_id, department_id, title)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, university_id, department_id, title, is_active, created_at, updated_at`

	created, err := scanChat(s.DB.QueryRowContext(ctx, query,
		chat.ID, nullInt64(chat.UserID), nullInt64(chat.UniversityID), nullInt64(chat.DepartmentID), chat.Title))
	if err != nil {
		return Chat{}, apperrors.WrapError(err, "failed to create chat")
	}
	return created, nil
}

func (s *PostgresStore) Chat(ctx context.Context, id uuid.UUID) (Chat, error) {
	query := `SELECT id, user_id, university_id, department_id, title, is_active, created_at, updated_at
		FROM chats WHERE id = $1 AND is_active = TRUE`

	chat, err := scanChat(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Chat{}, apperrors.WrapErrorf(apperrors.ErrNotFound, "chat %s", id)
	}
	if err != nil {
		return Chat{}, apperrors.WrapError(err, "failed to load chat")
	}
	return chat, nil
}

// ChatsByUser returns a user's active chats, most recently touched first.
func (s *PostgresStore) ChatsByUser(ctx context.Context, userID int64) ([]Chat, error) {
	query := `SELECT id, user_id, university_id, department_id, title, is_active, created_at, updated_at
		FROM chats WHERE user_id = $1 AND is_active = TRUE
		ORDER BY updated_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

func (s *PostgresStore) RenameChat(ctx context.Context, id uuid.UUID, title string) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE chats SET title = $2, updated_at = NOW() WHERE id = $1 AND is_active = TRUE`, id, title)
	if err != nil {
		return apperrors.WrapError(err, "failed to rename chat")
	}
	return requireRow(result, id)
}

// DeactivateChat soft-deletes a chat; its messages stay behind the flag.
func (s *PostgresStore) DeactivateChat(ctx context.Context, id uuid.UUID) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE chats SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return apperrors.WrapError(err, "failed to deactivate chat")
	}
	return requireRow(result, id)
}

func (s *PostgresStore) TouchChat(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx, `UPDATE chats SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) CreateMessage(ctx context.Context, msg Message) error {
	query := `INSERT INTO messages (id, chat_id, role, content, model, token_count, sources)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.DB.ExecContext(ctx, query,
		msg.ID, msg.ChatID, msg.Role, msg.Content, msg.Model, msg.TokenCount, pq.Array(msg.Sources))
	if err != nil {
		return apperrors.WrapError(err, "failed to create message")
	}
	return nil
}

// MessagesByChat returns a chat's messages in conversation order.
func (s *PostgresStore) MessagesByChat(ctx context.Context, chatID uuid.UUID) ([]Message, error) {
	query := `SELECT id, chat_id, role, content, model, token_count, sources, created_at
		FROM messages WHERE chat_id = $1 ORDER BY created_at, id`

	rows, err := s.DB.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.Model,
			&m.TokenCount, pq.Array(&m.Sources), &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MessageCount returns the number of messages already stored for a chat.
func (s *PostgresStore) MessageCount(ctx context.Context, chatID uuid.UUID) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func scanChat(row interface{ Scan(...any) error }) (Chat, error) {
	var c Chat
	var userID, universityID, departmentID sql.NullInt64
	err := row.Scan(&c.ID, &userID, &universityID, &departmentID, &c.Title,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Chat{}, err
	}
	if userID.Valid {
		c.UserID = &userID.Int64
	}
	if universityID.Valid {
		c.UniversityID = &universityID.Int64
	}
	if departmentID.Valid {
		c.DepartmentID = &departmentID.Int64
	}
	return c, nil
}

func requireRow(result sql.Result, id uuid.UUID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.WrapErrorf(apperrors.ErrNotFound, "chat %s", id)
	}
	return nil
}
