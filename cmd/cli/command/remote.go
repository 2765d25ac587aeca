package command

import (
	"fmt"
	"text/tabwriter"

	"anilog/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API server and its database are up",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client.NewHTTPClient(apiURL).Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is %s\n", apiURL, resp.Status)
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the top-rated anime of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		cards, err := client.NewHTTPClient(apiURL).TopRated(cmd.Context(), limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTITLE\tTIER\tRATING\tREVIEWS")
		for i, c := range cards {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%d\n", i+1, c.Title, c.Tier, c.Rating, c.ReviewCount)
		}
		return w.Flush()
	},
}

func init() {
	topCmd.Flags().IntP("limit", "n", 10, "number of anime to show")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(topCmd)
}
