package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matrimony-backend/internal/config"
	"matrimony-backend/internal/repository"
	"matrimony-backend/internal/services"
)

// Execute runs the command line
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "matrimony-backend",
		Short:        "Matrimony profile builder API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the YAML config file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return Run(cfg)
			},
		},
		newMigrateCommand(load),
		newTokenCommand(load),
	)
	return root
}

func newMigrateCommand(load func() (*config.Config, error)) *cobra.Command {
	var steps int
	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			setupLogger(cfg.Log.Level)

			n := steps
			if args[0] == "down" {
				if n <= 0 {
					n = 1
				}
				n = -n
			}
			if err := repository.Migrate(cfg.Database.URL(), n); err != nil {
				return err
			}
			log.Info().Str("direction", args[0]).Int("steps", n).Msg("Migrations finished")
			return nil
		},
	}
	migrateCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to apply (0 = all for up, 1 for down)")
	return migrateCmd
}

func newTokenCommand(load func() (*config.Config, error)) *cobra.Command {
	var (
		claims services.Claims
		ttl    time.Duration
	)
	tokenCmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a development session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			claims.RegisteredClaims = jwt.RegisteredClaims{Subject: args[0]}
			token, err := services.NewUserService(nil, cfg.JWT.Secret).GenerateJWT(claims, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	f := tokenCmd.Flags()
	f.StringVar(&claims.Email, "email", "", "Email claim")
	f.StringVar(&claims.Name, "name", "", "Name claim")
	f.StringVar(&claims.Role, "role", "", "Role claim (moderator)")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return tokenCmd
}
