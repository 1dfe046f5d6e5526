package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/podly-fm/podly/internal/core"
	"github.com/podly-fm/podly/internal/generate"
	"github.com/podly-fm/podly/internal/speech"
)

var createCategories = []string{
	"Technology", "Business", "Health", "Education",
	"Entertainment", "Science", "Finance",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a podcast episode from a prompt",
	Long: `Create a new podcast episode interactively.

You describe the episode, a script is generated from your prompt, and the
script is narrated via text-to-speech. The result can be played immediately.`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var (
		title       string
		description string
		category    string
		voice       = cfg.Speech.Voice
		prompt      string
		playNow     = true
	)

	var categoryOptions []huh.Option[string]
	for _, c := range createCategories {
		categoryOptions = append(categoryOptions, huh.NewOption(c, c))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("The episode title").
				Value(&title).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Description("A one-line summary").
				Value(&description),
			huh.NewSelect[string]().
				Title("Category").
				Options(categoryOptions...).
				Value(&category),
			huh.NewSelect[string]().
				Title("Voice").
				Options(
					huh.NewOption("Male (Adam)", "male"),
					huh.NewOption("Female (Sarah)", "female"),
					huh.NewOption("Robotic (Matilda)", "robotic"),
				).
				Value(&voice),
			huh.NewText().
				Title("Prompt").
				Description("What should this episode be about?").
				Value(&prompt).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("prompt is required")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Play when ready?").
				Value(&playNow),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("creation cancelled: %w", err)
	}

	gen := generate.New(cfg.Generation.BaseURL, cfg.Generation.APIKey, log)

	fmt.Println("Generating script...")
	script, err := gen.GenerateScript(ctx, prompt, title, category)
	if err != nil {
		return fmt.Errorf("failed to generate script: %w", err)
	}

	thumbnail, err := gen.GenerateThumbnail(ctx, prompt, title, category)
	if err != nil {
		return fmt.Errorf("failed to generate thumbnail: %w", err)
	}

	fmt.Println("Synthesizing audio...")
	tts := speech.New(cfg.Speech.BaseURL, cfg.Speech.APIKey, log)
	audio, err := tts.Synthesize(ctx, script, voice)
	if err != nil {
		return fmt.Errorf("failed to synthesize audio: %w", err)
	}

	track := core.Track{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		CreatorName:  "You",
		ThumbnailURL: thumbnail,
		SourceURL:    audio,
		Category:     category,
		PublishedAt:  time.Now().Format("2006-01-02"),
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(track)
	}

	fmt.Printf("Created episode: %s\n", track.Title)

	if playNow {
		return playTrack(ctx, &track)
	}
	return nil
}
