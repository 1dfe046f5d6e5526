package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrPlayback          = errors.New("playback failed")
	ErrUnresolvedSource  = errors.New("no playable source")
	ErrSubscriptionScope = errors.New("playback hub used outside its scope")
	ErrCatalog           = errors.New("podcast directory unavailable")
	ErrNotConfigured     = errors.New("service not configured")
	ErrNetworkError      = errors.New("network error")
	ErrTimeout           = errors.New("request timeout")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// PodlyError wraps an error with a user-friendly suggestion.
type PodlyError struct {
	Err        error
	Suggestion string
}

func (e *PodlyError) Error() string {
	return e.Err.Error()
}

func (e *PodlyError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &PodlyError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already a PodlyError with suggestion
	var podlyErr *PodlyError
	if errors.As(err, &podlyErr) && podlyErr.Suggestion != "" {
		return podlyErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Playback errors
	if errors.Is(err, ErrPlayback) || strings.Contains(errStr, "mpv") ||
		strings.Contains(errStr, "decode") {
		return "Try another podcast, or check that mpv is installed and on your PATH"
	}

	if errors.Is(err, ErrUnresolvedSource) {
		return "This podcast has no audio source. Disable playback.strict_sources to use sample audio"
	}

	if errors.Is(err, ErrSubscriptionScope) {
		return "Playback must be accessed through the hub installed by the application root"
	}

	// Directory / service errors
	if errors.Is(err, ErrCatalog) || strings.Contains(errStr, "directory") {
		return "The podcast directory is unreachable; built-in listings will be used"
	}

	if errors.Is(err, ErrNotConfigured) || strings.Contains(errStr, "api key") {
		return "Run 'podly config init' to set up API keys"
	}

	// Rate limiting
	if strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || strings.Contains(errStr, "config") {
		return "Run 'podly config init' to create a configuration file"
	}

	// Server errors
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "server error") {
		return "The service is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
