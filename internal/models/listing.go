package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

type Listing struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Price       float64        `db:"price" json:"price"`
	Category    string         `db:"category" json:"category"`
	ImagePath   sql.NullString `db:"image_path" json:"-"`
	IsActive    bool           `db:"is_active" json:"isActive"`
	AuthorID    int64          `db:"author_id" json:"authorId"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`

	Author *Author `db:"-" json:"author,omitempty"`
}

// listingJSON exists so ImagePath serializes as a plain string or null
// instead of sql.NullString's wrapper object.
type listingJSON struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImagePath   *string   `json:"imagePath"`
	IsActive    bool      `json:"isActive"`
	AuthorID    int64     `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      *Author   `json:"author,omitempty"`
}

func (l Listing) MarshalJSON() ([]byte, error) {
	out := listingJSON{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		IsActive:    l.IsActive,
		AuthorID:    l.AuthorID,
		CreatedAt:   l.CreatedAt,
		Author:      l.Author,
	}
	if l.ImagePath.Valid {
		out.ImagePath = &l.ImagePath.String
	}
	return json.Marshal(out)
}
