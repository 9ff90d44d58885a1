package places

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/knighthaven/api/internal/models"
)

// SQLStore backs the place cache with the places table.
type SQLStore struct {
	DB *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) CountPlaces(ctx context.Context) (int, error) {
	var n int
	err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM places`)
	return n, err
}

func (s *SQLStore) UpsertPlace(ctx context.Context, p models.Place) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO places (yelp_id, name, category, rating, review_count, address, city, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (yelp_id) DO UPDATE SET
			name=EXCLUDED.name,
			category=EXCLUDED.category,
			rating=EXCLUDED.rating,
			review_count=EXCLUDED.review_count,
			address=EXCLUDED.address,
			city=EXCLUDED.city,
			latitude=EXCLUDED.latitude,
			longitude=EXCLUDED.longitude
	`, p.YelpID, p.Name, p.Category, p.Rating, p.ReviewCount, p.Address, p.City, p.Latitude, p.Longitude)
	return err
}

// ListByRating returns every cached place, best rated first.
func (s *SQLStore) ListByRating(ctx context.Context) ([]models.Place, error) {
	places := []models.Place{}
	err := s.DB.SelectContext(ctx, &places, `
		SELECT * FROM places ORDER BY rating DESC, review_count DESC
	`)
	return places, err
}
