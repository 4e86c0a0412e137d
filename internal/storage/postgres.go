package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/xaenox/calbot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

// GetOrCreateChat inserts-if-absent and then reads back, so two racing
// webhook deliveries for a brand-new chat both land on the same row.
func (s *PostgresStorage) GetOrCreateChat(ctx context.Context, chatID string) (*models.Chat, error) {
	insert := `
		INSERT INTO chats (chat_id)
		VALUES ($1)
		ON CONFLICT (chat_id) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, insert, chatID); err != nil {
		return nil, fmt.Errorf("error creating chat: %w", err)
	}

	query := `SELECT messages, status FROM chats WHERE chat_id = $1`

	var (
		rawMessages []byte
		status      string
	)
	if err := s.db.QueryRowContext(ctx, query, chatID).Scan(&rawMessages, &status); err != nil {
		return nil, fmt.Errorf("error querying chat: %w", err)
	}

	chat := &models.Chat{
		ChatID: chatID,
		Status: models.ChatStatus(status),
	}
	if err := json.Unmarshal(rawMessages, &chat.Messages); err != nil {
		return nil, fmt.Errorf("error decoding chat messages: %w", err)
	}

	return chat, nil
}

func (s *PostgresStorage) SaveChat(ctx context.Context, chat *models.Chat) error {
	rawMessages, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("error encoding chat messages: %w", err)
	}

	query := `
		UPDATE chats
		SET messages = $2, status = $3, updated_at = $4
		WHERE chat_id = $1`

	result, err := s.db.ExecContext(ctx, query, chat.ChatID, rawMessages, string(chat.Status), time.Now())
	if err != nil {
		return fmt.Errorf("error saving chat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) SaveFile(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, content_type, data)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query, file.ID, file.ContentType, file.Data).
		Scan(&file.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetFile(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT id, content_type, data, created_at FROM files WHERE id = $1`

	file := &models.File{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&file.ID, &file.ContentType, &file.Data, &file.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying file: %w", err)
	}

	return file, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
