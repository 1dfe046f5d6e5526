// Package speech turns podcast scripts into audio through the ElevenLabs
// text-to-speech API. Output is an embedded data: payload that track
// resolution passes straight to the playback device.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/podly-fm/podly/internal/errors"
)

const (
	// DefaultBaseURL is the ElevenLabs API root.
	DefaultBaseURL = "https://api.elevenlabs.io"

	// MaxChars caps the submitted text; the API rejects very long inputs.
	MaxChars = 4000

	modelID = "eleven_monolingual_v1"
)

// voiceIDs maps friendly voice types to ElevenLabs voice ids.
var voiceIDs = map[string]string{
	"male":    "pNInz6obpgDQGcFmaJgB", // Adam
	"female":  "EXAVITQu4vr4xnSDxMaL", // Sarah
	"robotic": "XrExE9yKIg1WjnnlVkGX", // Matilda
}

const defaultVoiceID = "pNInz6obpgDQGcFmaJgB"

// Client synthesizes speech.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxChars   int
	logger     *slog.Logger
}

// New creates a speech client. baseURL is overridable for tests; empty
// means the public API.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxChars:   MaxChars,
		logger:     logger,
	}
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to speech and returns it as a
// data:audio/mpeg;base64 payload. voiceType is one of male, female,
// robotic; anything else uses the default voice.
func (c *Client) Synthesize(ctx context.Context, text, voiceType string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("text content is required")
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: ElevenLabs API key", errors.ErrNotConfigured)
	}

	if len(text) > c.maxChars {
		text = text[:c.maxChars]
	}

	voiceID, ok := voiceIDs[voiceType]
	if !ok {
		voiceID = defaultVoiceID
	}

	body, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: modelID,
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	c.logger.Debug("synthesizing speech", "voice", voiceID, "chars", len(text))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling text-to-speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading audio response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text-to-speech returned %d: %s", resp.StatusCode, string(audio))
	}

	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio), nil
}
