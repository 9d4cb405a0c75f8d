package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidUser          = errors.New("user id is empty")
)

// Store is the conversation persistence contract: load-on-login,
// save-on-append.
type Store interface {
	Load(ctx context.Context, userID string) (*Conversation, error)
	Save(ctx context.Context, userID string, conv *Conversation) error
	Users(ctx context.Context) ([]string, error)
}

// FileStore keeps one JSON file per user under a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, errors.New("conversation directory is required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create conversation directory: %w", err)
	}
	return &FileStore{dir: trimmed}, nil
}

func (s *FileStore) Load(ctx context.Context, userID string) (*Conversation, error) {
	path, err := s.path(userID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}

func (s *FileStore) Save(ctx context.Context, userID string, conv *Conversation) error {
	if conv == nil {
		return errors.New("conversation is nil")
	}
	path, err := s.path(userID)
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write conversation: %w", err)
	}

	log.Debug().Str("user", userID).Int("messages", len(conv.Messages)).Msg("conversation saved")
	return nil
}

// Users lists user ids with a saved conversation.
func (s *FileStore) Users(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	var users []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		users = append(users, strings.TrimSuffix(name, ".json"))
	}
	return users, nil
}

func (s *FileStore) path(userID string) (string, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return "", ErrInvalidUser
	}
	// Keep user ids filename-safe; the CLI login is free-form text.
	if strings.ContainsAny(trimmed, `/\`) {
		return "", fmt.Errorf("%w: invalid characters", ErrInvalidUser)
	}
	return filepath.Join(s.dir, trimmed+".json"), nil
}
