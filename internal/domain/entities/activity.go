package entities

import (
	"time"
)

// ChatSession is one row of the chat session log.
type ChatSession struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SessionActivity is a chat session joined with its owner's profile, as shown
// in the recent-activity panel.
type SessionActivity struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"userEmail"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
}

// WebSearch is one row of the site search log.
type WebSearch struct {
	ID        string    `json:"id" db:"id"`
	Query     string    `json:"query" db:"query"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ActivityLog is one row of the generic page/resource activity log.
type ActivityLog struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceID   string    `json:"resource_id" db:"resource_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
