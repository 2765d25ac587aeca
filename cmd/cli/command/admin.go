package command

import (
	"errors"
	"fmt"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/microservices/http-api/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// adminCmd groups role management. The API refuses self-demotion, so the
// first admin is always created here.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Grant or revoke the admin role",
}

var grantCmd = &cobra.Command{
	Use:   "grant <username>",
	Short: "Make a user an admin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], models.RoleAdmin)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <username>",
	Short: "Demote an admin to a regular user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], models.RoleUser)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print user, anime, review and comment counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		admin := service.NewAdminService(
			repository.NewUserRepository(e.db),
			repository.NewAnimeRepository(e.db),
			repository.NewReviewRepository(e.db),
			repository.NewCommentRepository(e.db),
			nil,
			e.logger,
		)
		stats, err := admin.Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "users     %d\n", stats.UserCount)
		fmt.Fprintf(out, "anime     %d\n", stats.AnimeCount)
		fmt.Fprintf(out, "reviews   %d\n", stats.ReviewCount)
		fmt.Fprintf(out, "comments  %d\n", stats.CommentCount)
		return nil
	},
}

func setRole(cmd *cobra.Command, username, role string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	users := repository.NewUserRepository(e.db)
	user, err := users.FindByUsername(cmd.Context(), username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return err
	}
	if err := users.SetRole(cmd.Context(), user.ID, role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", username, role)
	return nil
}

func init() {
	adminCmd.AddCommand(grantCmd)
	adminCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(statsCmd)
}
