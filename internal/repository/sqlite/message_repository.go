package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	FOREIGN KEY (sender_id) REFERENCES users (id),
	FOREIGN KEY (recipient_id) REFERENCES users (id)
);
`

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createMessagesTable); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO messages (id, sender_id, recipient_id, content, timestamp)
VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.SenderID,
		msg.RecipientID,
		msg.Content,
		msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, sender_id, recipient_id, content, timestamp
FROM messages
WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
ORDER BY timestamp ASC`,
		userA, userB, userB, userA,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.RecipientID,
			&msg.Content,
			&msg.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) LastBetween(ctx context.Context, userA, userB string) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, sender_id, recipient_id, content, timestamp
FROM messages
WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
ORDER BY timestamp DESC
LIMIT 1`,
		userA, userB, userB, userA,
	)

	var msg domain.Message
	if err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.RecipientID,
		&msg.Content,
		&msg.Timestamp,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan last message: %w", err)
	}
	return &msg, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, senderID, recipientID string) (int, error) {
	// "not yet replied to" heuristic, not a read receipt
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM messages
WHERE sender_id = ? AND recipient_id = ? AND id NOT IN (
	SELECT id FROM messages WHERE sender_id = ? AND recipient_id = ?
)`,
		senderID, recipientID, recipientID, senderID,
	)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM messages WHERE sender_id = ? OR recipient_id = ?`,
		userID, userID,
	)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
