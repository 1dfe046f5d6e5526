// Package catalog fetches podcast listings from the directory service,
// falling back to a built-in fixture set when the service is unreachable.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/podly-fm/podly/internal/core"
)

const (
	// Retry configuration for transient errors
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Sort orders podcast listings.
type Sort string

const (
	SortNewest   Sort = "newest"
	SortPopular  Sort = "popular"
	SortDuration Sort = "duration"
)

// Filter narrows a podcast listing.
type Filter struct {
	Category string
	Sort     Sort
	Search   string
}

// Client is a podcast directory client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// New creates a directory client. An empty baseURL means offline mode: all
// calls answer from the fixture set.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type request struct {
	Action string            `json:"action"`
	Params map[string]string `json:"params,omitempty"`
	ID     string            `json:"id,omitempty"`
}

// wirePodcast is the directory's record shape. Normalized into core.Track
// at this boundary so the rest of the app never branches on wire formats.
type wirePodcast struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	Author       string `json:"author"`
	AudioURL     string `json:"audioUrl,omitempty"`
	Duration     string `json:"duration"`
	Category     string `json:"category"`
	PublishedAt  string `json:"publishedAt"`
	EpisodeCount int    `json:"episodeCount,omitempty"`
}

func (w *wirePodcast) normalize() core.Track {
	return core.Track{
		ID:           w.ID,
		Title:        w.Title,
		Description:  w.Description,
		CreatorName:  w.Author,
		ThumbnailURL: w.ImageURL,
		SourceURL:    w.AudioURL,
		Duration:     w.Duration,
		Category:     w.Category,
		PublishedAt:  w.PublishedAt,
		EpisodeCount: w.EpisodeCount,
	}
}

// ListPodcasts returns podcasts matching the filter. Directory failures are
// logged and answered from fixtures rather than surfaced to the caller.
func (c *Client) ListPodcasts(ctx context.Context, f Filter) ([]core.Track, error) {
	if c.baseURL == "" {
		return FixturePodcasts(f), nil
	}

	params := map[string]string{}
	if f.Category != "" {
		params["category"] = f.Category
	}
	if f.Sort != "" {
		params["sort"] = string(f.Sort)
	}
	if f.Search != "" {
		params["search"] = f.Search
	}

	var wire []wirePodcast
	if err := c.do(ctx, request{Action: "get-podcasts", Params: params}, &wire); err != nil {
		c.logger.Warn("directory unavailable, using built-in listings", "error", err)
		return FixturePodcasts(f), nil
	}

	tracks := make([]core.Track, 0, len(wire))
	for i := range wire {
		tracks = append(tracks, wire[i].normalize())
	}
	return tracks, nil
}

// GetPodcast returns details for one podcast.
func (c *Client) GetPodcast(ctx context.Context, id string) (*core.Track, error) {
	if c.baseURL == "" {
		return FixturePodcast(id)
	}

	var wire wirePodcast
	if err := c.do(ctx, request{Action: "get-podcast-details", ID: id}, &wire); err != nil {
		c.logger.Warn("directory unavailable, using built-in details", "id", id, "error", err)
		return FixturePodcast(id)
	}
	t := wire.normalize()
	return &t, nil
}

// GetEpisodes returns the episodes of a podcast.
func (c *Client) GetEpisodes(ctx context.Context, id string) ([]core.Episode, error) {
	if c.baseURL == "" {
		return FixtureEpisodes(id), nil
	}

	var episodes []core.Episode
	if err := c.do(ctx, request{Action: "get-podcast-episodes", ID: id}, &episodes); err != nil {
		c.logger.Warn("directory unavailable, using built-in episodes", "id", id, "error", err)
		return FixtureEpisodes(id), nil
	}
	return episodes, nil
}

// do posts one action to the directory and decodes the response, retrying
// transient failures with exponential backoff.
func (c *Client) do(ctx context.Context, req request, v any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(data, v); err != nil {
				return fmt.Errorf("decoding %s response: %w", req.Action, err)
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("directory returned %d", resp.StatusCode)
			continue
		default:
			return fmt.Errorf("directory returned %d: %s", resp.StatusCode, string(data))
		}
	}
	return lastErr
}
