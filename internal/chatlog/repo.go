package chatlog

import (
	"context"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Open connects the archive database. The default DSN is an in-memory
// sqlite database, so nothing survives a restart unless an operator points
// CHATLOG_DSN at a file.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Message{}); err != nil {
		return nil, err
	}
	return db, nil
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, conversationID, role, content string) error {
	return r.db.WithContext(ctx).Create(&Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}).Error
}

// ListRecent returns the newest messages first.
func (r *Repo) ListRecent(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}
