package models

import "time"

// Place is a cached nearby business sourced from the Yelp search API. YelpID
// is the upsert key; rows are written once by the refresh flow and read-only
// afterwards.
type Place struct {
	ID          int64     `db:"id" json:"id"`
	YelpID      string    `db:"yelp_id" json:"yelpId"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	Rating      float64   `db:"rating" json:"rating"`
	ReviewCount int       `db:"review_count" json:"reviewCount"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
