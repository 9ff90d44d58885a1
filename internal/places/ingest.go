// Package places fills and serves the cached Place table. The cache is
// populated once from Yelp and never refreshed: the row-count guard makes
// every later invocation a no-op network-wise.
package places

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/yelp"
)

// Fixed search anchor: UCF main campus, 10km radius.
const (
	anchorLatitude  = 28.6024
	anchorLongitude = -81.2001
	searchRadius    = 10000
	maxPlaces       = 50
)

var categories = []string{
	"restaurants",
	"coffee",
	"bars",
	"gyms",
	"shopping",
	"beautysvc",
	"auto",
	"homeservices",
}

type Searcher interface {
	Search(ctx context.Context, p yelp.SearchParams) ([]yelp.Business, error)
}

type Store interface {
	CountPlaces(ctx context.Context) (int, error)
	UpsertPlace(ctx context.Context, p models.Place) error
}

// Summary reports what a refresh run did.
type Summary struct {
	Stored     int      `json:"stored"`
	Total      int      `json:"total"`
	Categories []string `json:"categories"`
}

type Ingestor struct {
	store  Store
	search Searcher
	log    *zap.Logger

	// serializes concurrent first runs so only one fetches; the others get
	// the same summary back
	group singleflight.Group
}

func NewIngestor(store Store, search Searcher, log *zap.Logger) *Ingestor {
	return &Ingestor{store: store, search: search, log: log}
}

// Refresh fills the place cache when it is empty and reports the pre-existing
// count otherwise. An optional city term replaces the anchor coordinates in
// the upstream query; categories, radius and cap stay fixed.
func (i *Ingestor) Refresh(ctx context.Context, city string) (Summary, error) {
	v, err, _ := i.group.Do("places", func() (interface{}, error) {
		return i.refresh(ctx, city)
	})
	if err != nil {
		return Summary{}, err
	}
	return v.(Summary), nil
}

func (i *Ingestor) refresh(ctx context.Context, city string) (Summary, error) {
	existing, err := i.store.CountPlaces(ctx)
	if err != nil {
		return Summary{}, err
	}
	if existing > 0 {
		i.log.Info("place cache already populated, skipping fetch",
			zap.Int("existing", existing))
		return Summary{Stored: existing, Total: existing, Categories: categories}, nil
	}

	perCategory := (maxPlaces + len(categories) - 1) / len(categories)

	var candidates []yelp.Business
	for _, cat := range categories {
		params := yelp.SearchParams{
			Latitude:  anchorLatitude,
			Longitude: anchorLongitude,
			Radius:    searchRadius,
			Category:  cat,
			Limit:     perCategory,
			Location:  city,
		}

		found, err := i.search.Search(ctx, params)
		if err != nil {
			// partial results are acceptable, keep going
			i.log.Warn("category search failed",
				zap.String("category", cat), zap.Error(err))
			continue
		}
		candidates = append(candidates, found...)
	}

	// Shuffle before capping so no category dominates the stored set.
	rand.Shuffle(len(candidates), func(a, b int) {
		candidates[a], candidates[b] = candidates[b], candidates[a]
	})

	stored := 0
	for _, b := range candidates {
		if stored >= maxPlaces {
			break
		}

		place := models.Place{
			YelpID:      b.ID,
			Name:        b.Name,
			Category:    b.CategoryTitle(),
			Rating:      b.Rating,
			ReviewCount: b.ReviewCount,
			Address:     b.Address(),
			City:        b.Location.City,
			Latitude:    b.Coordinates.Latitude,
			Longitude:   b.Coordinates.Longitude,
		}

		if err := i.store.UpsertPlace(ctx, place); err != nil {
			i.log.Warn("failed to store place",
				zap.String("yelpId", b.ID), zap.Error(err))
			continue
		}
		stored++
	}

	i.log.Info("place cache filled",
		zap.Int("stored", stored), zap.Int("candidates", len(candidates)))

	return Summary{Stored: stored, Total: len(candidates), Categories: categories}, nil
}
