package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podly-fm/podly/internal/catalog"
)

var showCmd = &cobra.Command{
	Use:   "show <podcast-id>",
	Short: "Show podcast details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	c := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, log)

	podcast, err := c.GetPodcast(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get podcast: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(podcast)
	}

	fmt.Println(podcast.Title)
	fmt.Printf("  by %s\n", podcast.CreatorName)
	fmt.Println()
	fmt.Printf("  Category:  %s\n", podcast.Category)
	fmt.Printf("  Episodes:  %d\n", podcast.EpisodeCount)
	fmt.Printf("  Published: %s\n", podcast.PublishedAt)
	fmt.Println()
	fmt.Println(podcast.Description)

	return nil
}
