package poster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fixed placeholder URLs, one for a missing API key and one for a failed or
// empty lookup.
const (
	PlaceholderNoKey   = "https://via.placeholder.com/300x450.png?text=No+Image+Key"
	PlaceholderNoImage = "https://via.placeholder.com/300x450.png?text=No+Image"
)

// Client resolves a movie id to a poster image URL. Implementations never
// fail: any lookup problem yields a placeholder URL.
type Client interface {
	Fetch(ctx context.Context, movieID int) string
}

// TMDBClient fetches poster paths from The Movie Database.
type TMDBClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewTMDBClient(apiKey string) *TMDBClient {
	return &TMDBClient{
		BaseURL: "https://api.themoviedb.org/3",
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type movieDetailsResponse struct {
	PosterPath string `json:"poster_path"`
}

func (c *TMDBClient) Fetch(ctx context.Context, movieID int) string {
	if c.APIKey == "" {
		return PlaceholderNoKey
	}

	endpoint := fmt.Sprintf("%s/movie/%d?api_key=%s&language=en-US", c.BaseURL, movieID, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return PlaceholderNoImage
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return PlaceholderNoImage
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return PlaceholderNoImage
	}

	var details movieDetailsResponse
	if err := json.Unmarshal(bodyBytes, &details); err != nil || details.PosterPath == "" {
		return PlaceholderNoImage
	}
	return fmt.Sprintf("https://image.tmdb.org/t/p/w500%s", details.PosterPath)
}
