package entities

import (
	"time"
)

// Article statuses as stored in the articles table.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
	ArticleStatusArchived  = "archived"
)

// Article represents a patient-education article. Identity is the slug;
// view events reference articles by slug, not by id.
type Article struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Title     string    `json:"title" db:"title"`
	Category  string    `json:"category" db:"category"`
	Content   string    `json:"content,omitempty" db:"content"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ArticleView is one row of the append-only view log.
type ArticleView struct {
	ID          string    `json:"id" db:"id"`
	ArticleSlug string    `json:"article_slug" db:"article_slug"`
	SessionID   string    `json:"session_id,omitempty" db:"session_id"`
	ViewedAt    time.Time `json:"viewed_at" db:"viewed_at"`
}
