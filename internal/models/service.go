package models

import "time"

type Service struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	AuthorID    int64     `db:"author_id" json:"authorId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	Author *Author `db:"-" json:"author,omitempty"`
}
