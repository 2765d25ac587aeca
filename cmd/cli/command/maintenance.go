package command

import (
	"fmt"

	"anilog/internal/cache"
	"anilog/internal/jobs"
	"anilog/internal/microservices/http-api/repository"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Refresh token maintenance",
}

var tokensCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired refresh tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		janitor := jobs.NewJanitor(repository.NewRefreshTokenRepository(e.db), nil, nil, nil, jobs.Intervals{}, e.logger)
		n, err := janitor.PurgeTokens(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ removed %d expired tokens\n", n)
		return nil
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Top-rated ranking maintenance",
}

var rankingRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every anime aggregate into the redis ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.cfg.RedisEnabled() {
			return fmt.Errorf("REDIS_URL is not set")
		}
		rdb, err := cache.NewRedisClient(e.cfg.RedisURL, e.cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()

		ranking := cache.NewAnimeCache(rdb, e.cfg.CacheTTL, e.logger)
		janitor := jobs.NewJanitor(nil, nil, repository.NewReviewRepository(e.db), ranking, jobs.Intervals{}, e.logger)
		if err := janitor.RebuildRanking(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ ranking rebuilt")
		return nil
	},
}

func init() {
	tokensCmd.AddCommand(tokensCleanupCmd)
	rankingCmd.AddCommand(rankingRebuildCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(rankingCmd)
}
