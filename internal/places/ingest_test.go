package places

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/knighthaven/api/internal/models"
	"github.com/knighthaven/api/internal/yelp"
)

type fakeStore struct {
	count    int
	countErr error
	failIDs  map[string]bool
	saved    []models.Place
}

func (s *fakeStore) CountPlaces(ctx context.Context) (int, error) {
	return s.count, s.countErr
}

func (s *fakeStore) UpsertPlace(ctx context.Context, p models.Place) error {
	if s.failIDs[p.YelpID] {
		return fmt.Errorf("store rejected %s", p.YelpID)
	}
	s.saved = append(s.saved, p)
	return nil
}

type fakeSearcher struct {
	calls   int
	perCall func(p yelp.SearchParams) ([]yelp.Business, error)
}

func (s *fakeSearcher) Search(ctx context.Context, p yelp.SearchParams) ([]yelp.Business, error) {
	s.calls++
	return s.perCall(p)
}

func businesses(category string, n int) []yelp.Business {
	out := make([]yelp.Business, n)
	for i := range out {
		out[i].ID = fmt.Sprintf("%s-%d", category, i)
		out[i].Name = fmt.Sprintf("%s business %d", category, i)
		out[i].Rating = 4
	}
	return out
}

func TestRefreshSkipsFetchWhenPopulated(t *testing.T) {
	store := &fakeStore{count: 37}
	search := &fakeSearcher{perCall: func(p yelp.SearchParams) ([]yelp.Business, error) {
		t.Fatal("search must not be called when the cache is populated")
		return nil, nil
	}}

	ing := NewIngestor(store, search, zap.NewNop())

	summary, err := ing.Refresh(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 37, summary.Stored)
	assert.Equal(t, 37, summary.Total)
	assert.Equal(t, 0, search.calls)
	assert.Empty(t, store.saved)
}

func TestRefreshCapsStoredRows(t *testing.T) {
	store := &fakeStore{}
	search := &fakeSearcher{perCall: func(p yelp.SearchParams) ([]yelp.Business, error) {
		return businesses(p.Category, p.Limit), nil
	}}

	ing := NewIngestor(store, search, zap.NewNop())

	summary, err := ing.Refresh(context.Background(), "")
	require.NoError(t, err)

	// 8 categories x ceil(50/8)=7 results = 56 candidates, capped at 50
	assert.Equal(t, len(categories), search.calls)
	assert.Equal(t, 56, summary.Total)
	assert.Equal(t, maxPlaces, summary.Stored)
	assert.Len(t, store.saved, maxPlaces)

	// the stored set must be a subset of the candidate pool, no duplicates;
	// exact membership depends on the shuffle and is deliberately not pinned
	seen := map[string]bool{}
	for _, p := range store.saved {
		assert.False(t, seen[p.YelpID], "duplicate row %s", p.YelpID)
		seen[p.YelpID] = true
		assert.NotEmpty(t, p.Name)
	}
}

func TestRefreshToleratesCategoryFailures(t *testing.T) {
	store := &fakeStore{}
	search := &fakeSearcher{perCall: func(p yelp.SearchParams) ([]yelp.Business, error) {
		switch p.Category {
		case "coffee", "bars":
			return nil, fmt.Errorf("upstream 500")
		case "gyms":
			return nil, nil // empty result, silently skipped
		default:
			return businesses(p.Category, 3), nil
		}
	}}

	ing := NewIngestor(store, search, zap.NewNop())

	summary, err := ing.Refresh(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, len(categories), search.calls)
	assert.Equal(t, 15, summary.Total) // 5 healthy categories x 3
	assert.Equal(t, 15, summary.Stored)
}

func TestRefreshToleratesRowFailures(t *testing.T) {
	store := &fakeStore{failIDs: map[string]bool{
		"restaurants-0": true,
		"restaurants-1": true,
	}}
	search := &fakeSearcher{perCall: func(p yelp.SearchParams) ([]yelp.Business, error) {
		if p.Category != "restaurants" {
			return nil, nil
		}
		return businesses(p.Category, 5), nil
	}}

	ing := NewIngestor(store, search, zap.NewNop())

	summary, err := ing.Refresh(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 3, summary.Stored)
	assert.Len(t, store.saved, 3)
}

func TestRefreshSecondRunIsNoOp(t *testing.T) {
	store := &fakeStore{}
	search := &fakeSearcher{perCall: func(p yelp.SearchParams) ([]yelp.Business, error) {
		return businesses(p.Category, 2), nil
	}}

	ing := NewIngestor(store, search, zap.NewNop())

	first, err := ing.Refresh(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 16, first.Stored)

	callsAfterFirst := search.calls
	store.count = len(store.saved)

	second, err := ing.Refresh(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, search.calls, "second run must not hit the network")
	assert.Equal(t, 16, second.Stored)
}

func TestRefreshPassesCityOverride(t *testing.T) {
	store := &fakeStore{}
	search := &fakeSearcher{perCall: func(p yelp.SearchParams) ([]yelp.Business, error) {
		assert.Equal(t, "Orlando", p.Location)
		assert.Equal(t, searchRadius, p.Radius)
		return nil, nil
	}}

	ing := NewIngestor(store, search, zap.NewNop())

	_, err := ing.Refresh(context.Background(), "Orlando")
	require.NoError(t, err)
	assert.Equal(t, len(categories), search.calls)
}
