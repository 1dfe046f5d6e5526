package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/errors"
)

// fixturePodcasts is the built-in listing used when the directory service
// is unreachable or unconfigured.
var fixturePodcasts = []core.Track{
	{
		ID:           "1",
		Title:        "The Future of AI in Business",
		Description:  "Exploring how artificial intelligence is transforming business operations and strategy.",
		ThumbnailURL: "https://images.unsplash.com/photo-1620712943543-bcc4688e7485?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Tech Innovators",
		Duration:     "32 min",
		Category:     "Business",
		PublishedAt:  "2023-05-15",
		EpisodeCount: 12,
	},
	{
		ID:           "2",
		Title:        "Mindfulness in the Digital Age",
		Description:  "How to maintain focus and mental health in our constantly connected world.",
		ThumbnailURL: "https://images.unsplash.com/photo-1593697821028-7cc59cfd7399?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Wellness Collective",
		Duration:     "45 min",
		Category:     "Health",
		PublishedAt:  "2023-06-22",
		EpisodeCount: 8,
	},
	{
		ID:           "3",
		Title:        "Sustainable Living: A Practical Guide",
		Description:  "Simple steps to reduce your carbon footprint and live more sustainably.",
		ThumbnailURL: "https://images.unsplash.com/photo-1542601906990-b4d3fb778b09?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "EcoFriendly",
		Duration:     "28 min",
		Category:     "Education",
		PublishedAt:  "2023-04-10",
		EpisodeCount: 15,
	},
	{
		ID:           "4",
		Title:        "Modern Architecture Trends",
		Description:  "Examining the latest innovations and designs in contemporary architecture.",
		ThumbnailURL: "https://images.unsplash.com/photo-1516450360452-9312f5e86fc7?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Design Masters",
		Duration:     "37 min",
		Category:     "Art",
		PublishedAt:  "2023-07-05",
		EpisodeCount: 6,
	},
	{
		ID:           "5",
		Title:        "Space Exploration: New Frontiers",
		Description:  "The latest discoveries and future missions in our journey through space.",
		ThumbnailURL: "https://images.unsplash.com/photo-1446776811953-b23d57bd21aa?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Cosmic Ventures",
		Duration:     "52 min",
		Category:     "Science",
		PublishedAt:  "2023-03-18",
		EpisodeCount: 9,
	},
	{
		ID:           "6",
		Title:        "Financial Freedom After 40",
		Description:  "Investment strategies and financial planning for mid-life prosperity.",
		ThumbnailURL: "https://images.unsplash.com/photo-1567427017947-545c5f8d16ad?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Wealth Builders",
		Duration:     "41 min",
		Category:     "Finance",
		PublishedAt:  "2023-08-30",
		EpisodeCount: 11,
	},
	{
		ID:           "7",
		Title:        "Technology Trends for 2023",
		Description:  "A deep dive into upcoming tech innovations that will shape our future.",
		ThumbnailURL: "https://images.unsplash.com/photo-1519389950473-47ba0277781c?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Future Tech Now",
		Duration:     "39 min",
		Category:     "Technology",
		PublishedAt:  "2023-01-05",
		EpisodeCount: 7,
	},
	{
		ID:           "8",
		Title:        "The Art of Storytelling",
		Description:  "How master storytellers captivate audiences and create memorable narratives.",
		ThumbnailURL: "https://images.unsplash.com/photo-1528458909336-e7a0adfed0a5?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Creative Minds",
		Duration:     "33 min",
		Category:     "Entertainment",
		PublishedAt:  "2023-02-12",
		EpisodeCount: 14,
	},
	{
		ID:           "9",
		Title:        "Nutrition Myths Debunked",
		Description:  "Separating fact from fiction in the world of nutrition and diet advice.",
		ThumbnailURL: "https://images.unsplash.com/photo-1490818387583-1baba5e638af?auto=format&fit=crop&q=80&w=400&h=225",
		CreatorName:  "Health Science",
		Duration:     "46 min",
		Category:     "Health",
		PublishedAt:  "2023-05-25",
		EpisodeCount: 10,
	},
}

// FixturePodcasts returns the built-in listing with the filter applied.
func FixturePodcasts(f Filter) []core.Track {
	podcasts := make([]core.Track, len(fixturePodcasts))
	copy(podcasts, fixturePodcasts)

	if f.Category != "" && f.Category != "All" {
		filtered := podcasts[:0]
		for _, p := range podcasts {
			if p.Category == f.Category {
				filtered = append(filtered, p)
			}
		}
		podcasts = filtered
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		filtered := podcasts[:0]
		for _, p := range podcasts {
			if strings.Contains(strings.ToLower(p.Title), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle) ||
				strings.Contains(strings.ToLower(p.CreatorName), needle) {
				filtered = append(filtered, p)
			}
		}
		podcasts = filtered
	}

	switch f.Sort {
	case SortNewest:
		sort.SliceStable(podcasts, func(i, j int) bool {
			return podcasts[i].PublishedAt > podcasts[j].PublishedAt
		})
	case SortPopular:
		sort.SliceStable(podcasts, func(i, j int) bool {
			return podcasts[i].EpisodeCount > podcasts[j].EpisodeCount
		})
	case SortDuration:
		sort.SliceStable(podcasts, func(i, j int) bool {
			return durationMinutes(podcasts[i].Duration) < durationMinutes(podcasts[j].Duration)
		})
	}

	return podcasts
}

// FixturePodcast returns details for one built-in podcast.
func FixturePodcast(id string) (*core.Track, error) {
	for _, p := range fixturePodcasts {
		if p.ID == id {
			// The details view shows a longer description.
			p.Description = strings.TrimSpace(strings.Repeat(p.Description+" ", 3))
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: podcast %s not found", errors.ErrCatalog, id)
}

// FixtureEpisodes generates five episodes for any podcast id, with weekly
// publish dates counting back from today.
func FixtureEpisodes(podcastID string) []core.Episode {
	episodes := make([]core.Episode, 0, 5)
	for i := 1; i <= 5; i++ {
		published := time.Now().AddDate(0, 0, -7*(i-1)).Format("2006-01-02")
		episodes = append(episodes, core.Episode{
			ID:          fmt.Sprintf("%s-ep-%d", podcastID, i),
			PodcastID:   podcastID,
			Title:       fmt.Sprintf("Episode %d: The Journey Continues", i),
			Description: fmt.Sprintf("This is episode %d of the podcast series. Join us as we explore more fascinating topics and insights.", i),
			Duration:    fmt.Sprintf("%d min", 20+(i*7)%40),
			PublishedAt: published,
		})
	}
	return episodes
}

// durationMinutes parses the leading number from a "NN min" string.
func durationMinutes(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
