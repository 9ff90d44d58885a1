package models

import "time"

type User struct {
	ID            int64     `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	Password      string    `db:"password_hash" json:"-"`
	DisplayName   string    `db:"display_name" json:"displayName"`
	IsUcfVerified bool      `db:"is_ucf_verified" json:"isUcfVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// Author is the public slice of a User joined into post/listing/service
// responses.
type Author struct {
	ID            int64  `json:"id"`
	DisplayName   string `json:"displayName"`
	IsUcfVerified bool   `json:"isUcfVerified"`
}
