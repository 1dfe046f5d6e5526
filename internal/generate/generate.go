// Package generate produces podcast scripts and thumbnail art, either
// through a remote generation service or a built-in template filler.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// Client generates podcast content. An empty baseURL means every call is
// answered locally from the template filler.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// New creates a generation client.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type generateRequest struct {
	Action   string `json:"action"`
	Prompt   string `json:"prompt,omitempty"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// GenerateScript returns a podcast script for the given prompt.
func (c *Client) GenerateScript(ctx context.Context, prompt, title, category string) (string, error) {
	if c.baseURL == "" {
		return templateScript(prompt, title, category), nil
	}

	var resp struct {
		Script string `json:"script"`
	}
	err := c.do(ctx, generateRequest{Action: "generate-script", Prompt: prompt, Title: title, Category: category}, &resp)
	if err != nil {
		c.logger.Warn("script generation service unavailable, using template", "error", err)
		return templateScript(prompt, title, category), nil
	}
	return resp.Script, nil
}

// GenerateThumbnail returns cover art for the podcast. The local fallback
// picks from a category-keyed stock pool.
func (c *Client) GenerateThumbnail(ctx context.Context, prompt, title, category string) (string, error) {
	if c.baseURL == "" {
		return stockThumbnail(prompt, title, category), nil
	}

	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	err := c.do(ctx, generateRequest{Action: "generate-thumbnail", Prompt: prompt, Title: title, Category: category}, &resp)
	if err != nil {
		c.logger.Warn("thumbnail generation service unavailable, using stock art", "error", err)
		return stockThumbnail(prompt, title, category), nil
	}
	return resp.ImageURL, nil
}

func (c *Client) do(ctx context.Context, req generateRequest, v any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
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
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation service returned %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, v)
}

var scriptIntros = []string{
	"Welcome to this episode of our podcast! Today, we're diving deep into a fascinating topic.",
	"Hello listeners! I'm excited to explore a subject that's been on many people's minds lately.",
	"Thank you for joining us for another enlightening discussion. In this episode, we're covering something truly special.",
}

var scriptOutros = []string{
	"Thank you for listening to our exploration of this fascinating topic. We hope you've gained new insights and perspectives.",
	"As we conclude this episode, remember that these ideas are just the beginning. There's so much more to discover and understand.",
	"That brings us to the end of today's discussion. Join us next time as we continue to explore thought-provoking subjects that shape our world.",
}

// templateScript fills the built-in script template. Variant selection
// hashes the inputs so regenerating the same podcast yields the same text.
func templateScript(prompt, title, category string) string {
	if title == "" {
		title = "Untitled Podcast"
	}
	intro := scriptIntros[stablePick(prompt+title, len(scriptIntros))]
	outro := scriptOutros[stablePick(title+prompt, len(scriptOutros))]

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString(intro)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Let's talk about %s. This is a subject that touches many aspects of our lives. When we consider the implications, we see that it influences how we work, how we interact with others, and even how we think about ourselves.\n\n", prompt)
	fmt.Fprintf(&b, "When we dive deeper into %s, we discover fascinating connections to other areas of %s. These connections help us understand the broader context and significance of this topic.\n\n", prompt, category)
	fmt.Fprintf(&b, "Experts in %s often highlight how %s is changing traditional assumptions. This shift requires us to reconsider established practices and develop new approaches that better address current realities.\n\n", category, prompt)
	b.WriteString(outro)
	return b.String()
}

// stockThumbnails maps lowercase categories to cover-art pools.
var stockThumbnails = map[string][]string{
	"technology": {
		"https://images.unsplash.com/photo-1550751827-4bd374c3f58b",
		"https://images.unsplash.com/photo-1518770660439-4636190af475",
		"https://images.unsplash.com/photo-1531297484001-80022131f5a1",
		"https://images.unsplash.com/photo-1488590528505-98d2b5aba04b",
	},
	"business": {
		"https://images.unsplash.com/photo-1460925895917-afdab827c52f",
		"https://images.unsplash.com/photo-1507679799987-c73779587ccf",
		"https://images.unsplash.com/photo-1611095973763-414019e72400",
		"https://images.unsplash.com/photo-1486406146926-c627a92ad1ab",
	},
	"health": {
		"https://images.unsplash.com/photo-1505576399279-565b52d4ac71",
		"https://images.unsplash.com/photo-1506126613408-eca07ce68773",
		"https://images.unsplash.com/photo-1498837167922-ddd27525d352",
		"https://images.unsplash.com/photo-1535914254981-b5012eebbd15",
	},
	"education": {
		"https://images.unsplash.com/photo-1503676260728-1c00da094a0b",
		"https://images.unsplash.com/photo-1523050854058-8df90110c9f1",
		"https://images.unsplash.com/photo-1488190211105-8b0e65b80b4e",
	},
	"entertainment": {
		"https://images.unsplash.com/photo-1603739903239-8b6e64c3b185",
		"https://images.unsplash.com/photo-1514525253161-7a46d19cd819",
		"https://images.unsplash.com/photo-1499364615650-ec38552f4f34",
	},
	"science": {
		"https://images.unsplash.com/photo-1532094349884-543bc11b234d",
		"https://images.unsplash.com/photo-1564325724739-bae0bd08762c",
		"https://images.unsplash.com/photo-1507413245164-6160d8298b31",
	},
	"finance": {
		"https://images.unsplash.com/photo-1559526324-4b87b5e36e44",
		"https://images.unsplash.com/photo-1638913974023-cef988e81629",
		"https://images.unsplash.com/photo-1579170053380-58828d4e3f1f",
	},
}

const defaultThumbnail = "https://images.unsplash.com/photo-1478737270239-2f02b77fc618"

// stockThumbnail picks deterministic cover art for the category.
func stockThumbnail(prompt, title, category string) string {
	pool, ok := stockThumbnails[strings.ToLower(category)]
	if !ok || len(pool) == 0 {
		return defaultThumbnail
	}
	return pool[stablePick(prompt+title+category, len(pool))]
}

func stablePick(seed string, n int) int {
	h, err := hashstructure.Hash(seed, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return int(h % uint64(n))
}
