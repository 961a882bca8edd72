package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id    INTEGER NOT NULL,
	sender_id  INTEGER NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages (room_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages (sender_id);
`

// New creates a new SQLite store and ensures the schema exists.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after the
// schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMessage persists a message and fills in its assigned ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (room_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.RoomID, msg.SenderID, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// ListByRoom returns all messages of a room, oldest first.
func (s *SQLiteStore) ListByRoom(ctx context.Context, roomID int64) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at ASC
	`
	return s.queryMessages(ctx, query, roomID)
}

// ListByRoomDesc returns all messages of a room, newest first.
func (s *SQLiteStore) ListByRoomDesc(ctx context.Context, roomID int64) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC
	`
	return s.queryMessages(ctx, query, roomID)
}

// ListAfter returns messages of a room strictly after ts, oldest first.
func (s *SQLiteStore) ListAfter(ctx context.Context, roomID int64, ts time.Time) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ? AND created_at > ?
		ORDER BY created_at ASC
	`
	return s.queryMessages(ctx, query, roomID, ts)
}

// ListBefore returns messages of a room strictly before ts, newest first.
func (s *SQLiteStore) ListBefore(ctx context.Context, roomID int64, ts time.Time) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ? AND created_at < ?
		ORDER BY created_at DESC
	`
	return s.queryMessages(ctx, query, roomID, ts)
}

// CountByRoom returns the number of messages in a room.
func (s *SQLiteStore) CountByRoom(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE room_id = ?`, roomID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// ListBySender returns all messages a user sent, across all rooms.
func (s *SQLiteStore) ListBySender(ctx context.Context, senderID int64) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE sender_id = ?
		ORDER BY created_at ASC
	`
	return s.queryMessages(ctx, query, senderID)
}

// ListBySenderInRoom returns all messages a user sent in one room.
func (s *SQLiteStore) ListBySenderInRoom(ctx context.Context, roomID, senderID int64) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ? AND sender_id = ?
		ORDER BY created_at ASC
	`
	return s.queryMessages(ctx, query, roomID, senderID)
}

// SearchInRoom returns messages of a room containing keyword as a substring.
func (s *SQLiteStore) SearchInRoom(ctx context.Context, roomID int64, keyword string) ([]*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ? AND instr(content, ?) > 0
		ORDER BY created_at ASC
	`
	return s.queryMessages(ctx, query, roomID, keyword)
}

// LatestInRoom returns the most recent message of a room, or nil if none.
func (s *SQLiteStore) LatestInRoom(ctx context.Context, roomID int64) (*store.Message, error) {
	query := `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, roomID).Scan(
		&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest message: %w", err)
	}
	return &msg, nil
}

// DeleteBySenderInRoom deletes all messages a user sent in one room.
func (s *SQLiteStore) DeleteBySenderInRoom(ctx context.Context, roomID, senderID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE room_id = ? AND sender_id = ?`, roomID, senderID,
	)
	if err != nil {
		return fmt.Errorf("delete messages by sender: %w", err)
	}
	return nil
}

// DeleteByRoom deletes all messages of a room.
func (s *SQLiteStore) DeleteByRoom(ctx context.Context, roomID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE room_id = ?`, roomID)
	if err != nil {
		return fmt.Errorf("delete messages by room: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
