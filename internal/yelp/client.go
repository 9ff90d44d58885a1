// Package yelp is a minimal client for the Yelp Fusion business search
// endpoint. Only the fields the places cache persists are decoded.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultBaseURL = "https://api.yelp.com/v3"

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    http.DefaultClient,
	}
}

// NewClientWithBaseURL points the client at a different host, used by tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

type SearchParams struct {
	Latitude  float64
	Longitude float64
	Radius    int
	Category  string
	Limit     int

	// Location, when set, replaces the coordinate pair with a free-text
	// location term ("Orlando, FL").
	Location string
}

type Business struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Location struct {
		City           string   `json:"city"`
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
	Categories []struct {
		Alias string `json:"alias"`
		Title string `json:"title"`
	} `json:"categories"`
}

// Address joins the display address into one line.
func (b Business) Address() string {
	return strings.Join(b.Location.DisplayAddress, ", ")
}

// CategoryTitle returns the first category label, empty when Yelp sent none.
func (b Business) CategoryTitle() string {
	if len(b.Categories) == 0 {
		return ""
	}
	return b.Categories[0].Title
}

type searchResponse struct {
	Businesses []Business `json:"businesses"`
	Total      int        `json:"total"`
}

func (c *Client) Search(ctx context.Context, p SearchParams) ([]Business, error) {
	q := url.Values{}
	if p.Location != "" {
		q.Set("location", p.Location)
	} else {
		q.Set("latitude", strconv.FormatFloat(p.Latitude, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(p.Longitude, 'f', -1, 64))
	}
	if p.Radius > 0 {
		q.Set("radius", strconv.Itoa(p.Radius))
	}
	if p.Category != "" {
		q.Set("categories", p.Category)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/businesses/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("yelp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yelp: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yelp: search returned %s", resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("yelp: decode response: %w", err)
	}

	return out.Businesses, nil
}
