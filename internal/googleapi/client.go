// Package googleapi is a minimal client for the Google Places and YouTube
// Data REST APIs, used for lead sourcing and ad-creative inspiration.
package googleapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultPlacesBaseURL  = "https://maps.googleapis.com/maps/api"
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

	// detailFields is the fixed Places Details field mask.
	detailFields = "name,formatted_address,formatted_phone_number,website,rating,user_ratings_total,opening_hours,reviews"
)

// Place is one text-search result.
type Place struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// PlaceDetails is the detail record for one place.
type PlaceDetails struct {
	Name                 string  `json:"name"`
	FormattedAddress     string  `json:"formatted_address"`
	FormattedPhoneNumber string  `json:"formatted_phone_number"`
	Website              string  `json:"website"`
	Rating               float64 `json:"rating"`
	UserRatingsTotal     int     `json:"user_ratings_total"`
	OpeningHours         *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Reviews []PlaceReview `json:"reviews"`
}

// PlaceReview is one customer review on a place.
type PlaceReview struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
}

// Video is one YouTube search hit, optionally enriched with statistics.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
	Duration     string `json:"duration"`
	PublishedAt  string `json:"publishedAt"`
}

// VideoStats carries the statistics and content details for one video.
type VideoStats struct {
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// KeyStatus reports whether the configured key is usable.
type KeyStatus struct {
	Valid        bool   `json:"valid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Client calls the Places and YouTube APIs with one shared key.
type Client struct {
	apiKey     string
	httpClient *http.Client

	// Base URLs are overridable so tests can point at mock servers.
	PlacesBaseURL  string
	YouTubeBaseURL string
}

// NewClient builds a client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		PlacesBaseURL:  defaultPlacesBaseURL,
		YouTubeBaseURL: defaultYouTubeBaseURL,
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("request creation error: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api rejected request (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("response decoding error: %w", err)
	}
	return nil
}

// SearchBusinesses runs a Places text search scoped to establishments.
// location is an optional "lat,lng" that adds a 50km radius bias.
func (c *Client) SearchBusinesses(ctx context.Context, query, location string) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	params.Set("type", "establishment")
	if location != "" {
		params.Set("location", location)
		params.Set("radius", "50000")
	}

	var result struct {
		Results []Place `json:"results"`
		Status  string  `json:"status"`
	}
	u := fmt.Sprintf("%s/place/textsearch/json?%s", c.PlacesBaseURL, params.Encode())
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// BusinessDetails fetches the contact-level detail record for a place.
func (c *Client) BusinessDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", c.apiKey)
	params.Set("fields", detailFields)

	var result struct {
		Result *PlaceDetails `json:"result"`
		Status string        `json:"status"`
	}
	u := fmt.Sprintf("%s/place/details/json?%s", c.PlacesBaseURL, params.Encode())
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	if result.Result == nil {
		return nil, fmt.Errorf("no details for place %s (status %s)", placeID, result.Status)
	}
	return result.Result, nil
}

// SearchVideos runs a YouTube relevance-ordered video search.
func (c *Client) SearchVideos(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("type", "video")
	params.Set("order", "relevance")

	var result struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				PublishedAt string `json:"publishedAt"`
				Thumbnails  struct {
					High struct {
						URL string `json:"url"`
					} `json:"high"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}
	u := fmt.Sprintf("%s/search?%s", c.YouTubeBaseURL, params.Encode())
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(result.Items))
	for _, item := range result.Items {
		videos = append(videos, Video{
			ID:          item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   item.Snippet.Thumbnails.High.URL,
			ViewCount:   "0",
			Duration:    "0",
			PublishedAt: item.Snippet.PublishedAt,
		})
	}
	return videos, nil
}

// VideoStats fetches statistics and content details for one video.
func (c *Client) VideoStats(ctx context.Context, videoID string) (*VideoStats, error) {
	params := url.Values{}
	params.Set("part", "statistics,contentDetails")
	params.Set("id", videoID)
	params.Set("key", c.apiKey)

	var result struct {
		Items []VideoStats `json:"items"`
	}
	u := fmt.Sprintf("%s/videos?%s", c.YouTubeBaseURL, params.Encode())
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("no stats for video %s", videoID)
	}
	return &result.Items[0], nil
}

// AdInspiration searches marketing videos for the industry and enriches each
// hit with view, like, and comment counts. A failed stats call leaves the
// placeholder zeros in place.
func (c *Client) AdInspiration(ctx context.Context, industry string, keywords []string) ([]Video, error) {
	query := industry
	for _, k := range keywords {
		query += " " + k
	}
	query += " marketing advertising"

	videos, err := c.SearchVideos(ctx, query, 5)
	if err != nil {
		return nil, err
	}

	for i := range videos {
		stats, err := c.VideoStats(ctx, videos[i].ID)
		if err != nil {
			continue
		}
		videos[i].ViewCount = stats.Statistics.ViewCount
		videos[i].LikeCount = stats.Statistics.LikeCount
		videos[i].CommentCount = stats.Statistics.CommentCount
		videos[i].Duration = stats.ContentDetails.Duration
	}
	return videos, nil
}

// ValidateKey probes the Places API with a trivial query and reports the
// upstream status verbatim.
func (c *Client) ValidateKey(ctx context.Context) KeyStatus {
	params := url.Values{}
	params.Set("query", "test")
	params.Set("key", c.apiKey)

	var result struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	u := fmt.Sprintf("%s/place/textsearch/json?%s", c.PlacesBaseURL, params.Encode())
	if err := c.getJSON(ctx, u, &result); err != nil {
		return KeyStatus{Valid: false, ErrorMessage: err.Error()}
	}
	return KeyStatus{
		Valid:        result.Status == "OK" || result.Status == "ZERO_RESULTS",
		Status:       result.Status,
		ErrorMessage: result.ErrorMessage,
	}
}
