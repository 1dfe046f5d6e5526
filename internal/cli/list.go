package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podly-fm/podly/internal/catalog"
)

var (
	listCategory string
	listSearch   string
	listSort     string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "browse"},
	Short:   "List podcasts from the directory",
	Long: `List podcasts from the directory, with optional filtering.

Examples:
  podly list                        # All podcasts
  podly list --category Technology  # Only Technology podcasts
  podly list --search "history"     # Title/description/creator search
  podly list --sort popular         # Sort by episode count`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "search titles, descriptions, and creators")
	listCmd.Flags().StringVar(&listSort, "sort", "newest", "sort order (newest, popular, duration)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	c := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, log)

	podcasts, err := c.ListPodcasts(cmd.Context(), catalog.Filter{
		Category: listCategory,
		Search:   listSearch,
		Sort:     catalog.Sort(listSort),
	})
	if err != nil {
		return fmt.Errorf("failed to list podcasts: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(podcasts)
	}

	if len(podcasts) == 0 {
		fmt.Println("No podcasts found")
		return nil
	}

	t := NewTable("ID", "TITLE", "CREATOR", "CATEGORY", "EPISODES", "PUBLISHED")
	for _, p := range podcasts {
		t.Row(
			p.ID,
			TruncateString(p.Title, 40),
			TruncateString(p.CreatorName, 24),
			p.Category,
			fmt.Sprintf("%d", p.EpisodeCount),
			p.PublishedAt,
		)
	}
	t.Flush()

	return nil
}
