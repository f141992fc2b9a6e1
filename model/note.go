package model

import (
	"time"

	"github.com/lib/pq"
)

type Note struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Title     string         `db:"title" json:"title" binding:"required"`
	Content   string         `db:"content" json:"content" binding:"required"`
	Category  string         `db:"category" json:"category"`
	Tags      pq.StringArray `db:"tags" json:"tags"`
	Pinned    bool           `db:"pinned" json:"pinned"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
