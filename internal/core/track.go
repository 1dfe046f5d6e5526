package core

// Track represents a playable podcast with display metadata.
//
// A Track is immutable once constructed: switching what is playing always
// replaces the session's current track with a new value, never mutates one
// in place. SourceURL may be a remote URL, an embedded data: payload, or
// empty — an empty source is resolved to a playable URL before loading.
type Track struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreatorName  string `json:"creatorName"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SourceURL    string `json:"audioUrl,omitempty"`
	Category     string `json:"category"`
	Duration     string `json:"duration"`
	PublishedAt  string `json:"publishedAt"`
	EpisodeCount int    `json:"episodeCount,omitempty"`
}

// Episode represents a single episode belonging to a podcast.
type Episode struct {
	ID          string `json:"id"`
	PodcastID   string `json:"podcastId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AudioURL    string `json:"audioUrl"`
	Duration    string `json:"duration"`
	PublishedAt string `json:"publishedAt"`
}

// AsTrack converts an episode into a playable Track, carrying over the
// parent podcast's creator and thumbnail for display.
func (e *Episode) AsTrack(parent *Track) Track {
	t := Track{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		SourceURL:   e.AudioURL,
		Duration:    e.Duration,
		PublishedAt: e.PublishedAt,
	}
	if parent != nil {
		t.CreatorName = parent.CreatorName
		t.ThumbnailURL = parent.ThumbnailURL
		t.Category = parent.Category
	}
	return t
}
