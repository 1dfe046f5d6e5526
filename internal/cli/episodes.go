package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podly-fm/podly/internal/catalog"
)

var episodesCmd = &cobra.Command{
	Use:     "episodes <podcast-id>",
	Aliases: []string{"eps"},
	Short:   "List episodes of a podcast",
	Args:    cobra.ExactArgs(1),
	RunE:    runEpisodes,
}

func init() {
	rootCmd.AddCommand(episodesCmd)
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	c := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, log)

	episodes, err := c.GetEpisodes(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get episodes: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(episodes)
	}

	if len(episodes) == 0 {
		fmt.Println("No episodes found")
		return nil
	}

	t := NewTable("ID", "TITLE", "DURATION", "PUBLISHED")
	for _, e := range episodes {
		t.Row(
			e.ID,
			TruncateString(e.Title, 50),
			e.Duration,
			e.PublishedAt,
		)
	}
	t.Flush()

	return nil
}
