// Package sqlstore persists users, conversations, messages and orders through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// Store implements the conversation store and message log on a relational database.
type Store struct {
	db *gorm.DB
}

// Open connects to the database named by driver ("sqlite" or "mysql").
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		// sqlite allows a single writer; one connection avoids SQLITE_BUSY under concurrent appends.
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&userRow{}, &conversationRow{}, &messageRow{}, &orderRow{}); err != nil {
		return storageError("migrate", err)
	}
	return nil
}

// SeedUsers inserts users that are not present yet.
func (s *Store) SeedUsers(ctx context.Context, users []chat.User) error {
	if len(users) == 0 {
		return nil
	}
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return storageError("seed users", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FindUser retrieves a user by identifier.
func (s *Store) FindUser(ctx context.Context, id int64) (chat.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.User{}, chat.ErrUserNotFound
		}
		return chat.User{}, storageError("find user", err)
	}
	return row.toModel(), nil
}

// CreateConversation inserts a conversation owned by owner.
func (s *Store) CreateConversation(ctx context.Context, owner chat.User, title string) (chat.Conversation, error) {
	row := conversationRow{UserID: owner.ID, Title: title}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return chat.Conversation{}, storageError("create conversation", err)
	}
	return row.toModel(), nil
}

// FindConversation retrieves a conversation by identifier.
func (s *Store) FindConversation(ctx context.Context, id int64) (chat.Conversation, error) {
	var row conversationRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, chat.ErrConversationNotFound
		}
		return chat.Conversation{}, storageError("find conversation", err)
	}
	return row.toModel(), nil
}

// ListConversations returns the user's conversations, newest first.
func (s *Store) ListConversations(ctx context.Context, userID int64) ([]chat.Conversation, error) {
	if _, err := s.FindUser(ctx, userID); err != nil {
		return nil, err
	}

	var rows []conversationRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, storageError("list conversations", err)
	}

	out := make([]chat.Conversation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// Append inserts a message after confirming its conversation exists, in one transaction.
func (s *Store) Append(ctx context.Context, conv chat.Conversation, role chat.Role, content, turnID string) (chat.Message, error) {
	if !role.Valid() {
		return chat.Message{}, chat.ErrInvalidRole
	}

	row := messageRow{
		ConversationID: conv.ID,
		Role:           string(role),
		Content:        content,
		TurnID:         turnID,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing conversationRow
		if err := tx.Select("id").First(&existing, conv.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return chat.ErrConversationNotFound
			}
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return chat.Message{}, err
		}
		return chat.Message{}, storageError("append message", err)
	}
	return row.toModel(), nil
}

// ListMessages returns the conversation's messages in insertion order.
func (s *Store) ListMessages(ctx context.Context, conversationID int64) ([]chat.Message, error) {
	if _, err := s.FindConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	var rows []messageRow
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, storageError("list messages", err)
	}

	out := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func storageError(op string, err error) error {
	return &chat.StorageError{Op: op, Err: err}
}
