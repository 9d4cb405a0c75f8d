package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresConfig configures the bun-backed conversation store.
type PostgresConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

type messageRow struct {
	bun.BaseModel `bun:"table:conversation_messages,alias:cm"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id,notnull"`
	Position  int       `bun:"position,notnull"`
	Role      string    `bun:"role,notnull"`
	Content   string    `bun:"content,notnull"`
	Timestamp time.Time `bun:"ts,notnull"`
}

// BunStore persists conversations in Postgres, one row per message.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

func NewBunStore(cfg PostgresConfig) (*BunStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &BunStore{db: db}, nil
}

// Init creates the backing table when it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*messageRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create conversation table: %w", err)
	}
	return nil
}

func (s *BunStore) Load(ctx context.Context, userID string) (*Conversation, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil, ErrInvalidUser
	}

	var rows []messageRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", trimmed).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrConversationNotFound
	}

	conv := &Conversation{Messages: make([]Message, 0, len(rows))}
	for _, row := range rows {
		conv.Messages = append(conv.Messages, Message{
			ID:        row.ID,
			Role:      Role(row.Role),
			Content:   row.Content,
			Timestamp: row.Timestamp,
		})
	}
	return conv, nil
}

// Save replaces the user's stored history with the given conversation.
func (s *BunStore) Save(ctx context.Context, userID string, conv *Conversation) error {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return ErrInvalidUser
	}
	if conv == nil {
		return errors.New("conversation is nil")
	}

	rows := make([]messageRow, 0, len(conv.Messages))
	for i, msg := range conv.Messages {
		rows = append(rows, messageRow{
			ID:        msg.ID,
			UserID:    trimmed,
			Position:  i,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*messageRow)(nil)).
			Where("user_id = ?", trimmed).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear conversation: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}
		return nil
	})
}

func (s *BunStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	err := s.db.NewSelect().
		Model((*messageRow)(nil)).
		ColumnExpr("DISTINCT user_id").
		Scan(ctx, &users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *BunStore) Close() error {
	return s.db.Close()
}
