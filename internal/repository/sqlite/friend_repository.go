package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/repository"
)

const createFriendsTable = `
CREATE TABLE IF NOT EXISTS friends (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	friend_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id),
	FOREIGN KEY (friend_id) REFERENCES users (id)
);
`

type FriendRepository struct {
	db *sql.DB
}

func NewFriendRepository(db *sql.DB) repository.FriendRepository {
	return &FriendRepository{db: db}
}

func (r *FriendRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFriendsTable); err != nil {
		return fmt.Errorf("create friends table: %w", err)
	}
	return nil
}

func (r *FriendRepository) Create(ctx context.Context, link *domain.Friend) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO friends (id, user_id, friend_id, created_at)
VALUES (?, ?, ?, ?)`,
		link.ID,
		link.UserID,
		link.FriendID,
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert friend link: %w", err)
	}
	return nil
}

func (r *FriendRepository) ListFriends(ctx context.Context, ownerID string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.name, u.email, u.password_hash, u.bio, u.created_at
FROM users u
INNER JOIN friends f ON u.id = f.friend_id
WHERE f.user_id = ?`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var friends []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Bio,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		friends = append(friends, user)
	}
	return friends, rows.Err()
}

func (r *FriendRepository) Exists(ctx context.Context, ownerID, friendID string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM friends
WHERE user_id = ? AND friend_id = ?`,
		ownerID,
		friendID,
	)

	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check friend link: %w", err)
	}
	return count > 0, nil
}

func (r *FriendRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM friends WHERE user_id = ?`,
		ownerID,
	)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count friends: %w", err)
	}
	return count, nil
}
