package database

import (
	"context"
	"database/sql"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	log.Println("Successfully connected to the database")
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS universities (
            id SERIAL PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            name_ar TEXT DEFAULT '',
            code TEXT UNIQUE NOT NULL,
            city TEXT DEFAULT '',
            province TEXT DEFAULT '',
            website TEXT DEFAULT '',
            email TEXT DEFAULT '',
            phone TEXT DEFAULT '',
            address TEXT DEFAULT '',
            description TEXT DEFAULT '',
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS departments (
            id SERIAL PRIMARY KEY,
            university_id INTEGER NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            name_ar TEXT DEFAULT '',
            name_fr TEXT DEFAULT '',
            code TEXT NOT NULL,
            official_website TEXT DEFAULT '',
            email TEXT DEFAULT '',
            phone TEXT DEFAULT '',
            building TEXT DEFAULT '',
            description TEXT DEFAULT '',
            head_of_department TEXT DEFAULT '',
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_departments_university_id ON departments(university_id)`,
		`CREATE TABLE IF NOT EXISTS knowledge_base (
            id SERIAL PRIMARY KEY,
            university_id INTEGER NOT NULL REFERENCES universities(id) ON DELETE CASCADE,
            department_id INTEGER REFERENCES departments(id),
            title TEXT NOT NULL,
            content TEXT NOT NULL,
            content_ar TEXT DEFAULT '',
            category TEXT DEFAULT '',
            tags TEXT DEFAULT '',
            source_url TEXT DEFAULT '',
            priority INTEGER DEFAULT 5,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW(),
            created_by INTEGER
        )`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_university_active ON knowledge_base(university_id, is_active)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_department_id ON knowledge_base(department_id)`,
		`CREATE TABLE IF NOT EXISTS chats (
            id UUID PRIMARY KEY,
            user_id INTEGER,
            university_id INTEGER REFERENCES universities(id),
            department_id INTEGER REFERENCES departments(id),
            title TEXT DEFAULT '',
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            updated_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_updated_at ON chats(updated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            chat_id UUID REFERENCES chats(id) ON DELETE CASCADE,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            model TEXT DEFAULT '',
            token_count INTEGER DEFAULT 0,
            sources TEXT[] DEFAULT '{}'::TEXT[],
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON messages(chat_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
