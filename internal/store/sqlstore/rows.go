package sqlstore

import (
	"time"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
)

type userRow struct {
	ID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Email string `gorm:"size:255;uniqueIndex"`
	Name  string `gorm:"size:255"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toModel() chat.User {
	return chat.User{ID: r.ID, Email: r.Email, Name: r.Name}
}

type conversationRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;index"`
	Title     string    `gorm:"size:200"`
	CreatedAt time.Time `gorm:"not null"`
}

func (conversationRow) TableName() string { return "conversations" }

func (r conversationRow) toModel() chat.Conversation {
	return chat.Conversation{ID: r.ID, UserID: r.UserID, Title: r.Title, CreatedAt: r.CreatedAt}
}

type messageRow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	ConversationID int64     `gorm:"not null;index"`
	Role           string    `gorm:"size:16;not null"`
	// size above 16 MiB maps to longtext on mysql and text on sqlite
	Content        string    `gorm:"size:1073741824;not null"`
	TurnID         string    `gorm:"size:36;index"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (messageRow) TableName() string { return "messages" }

func (r messageRow) toModel() chat.Message {
	return chat.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		Role:           chat.Role(r.Role),
		Content:        r.Content,
		TurnID:         r.TurnID,
		CreatedAt:      r.CreatedAt,
	}
}

type orderRow struct {
	OrderID   string `gorm:"primaryKey;size:64"`
	UserEmail string `gorm:"size:255;index"`
	Status    string `gorm:"size:32"`
}

func (orderRow) TableName() string { return "orders" }

func (r orderRow) toModel() order.Order {
	return order.Order{OrderID: r.OrderID, UserEmail: r.UserEmail, Status: r.Status}
}
