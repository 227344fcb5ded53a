package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yigit/lms/internal/bootstrap"
	"github.com/yigit/lms/internal/config"
	"github.com/yigit/lms/internal/db"
	"github.com/yigit/lms/internal/server"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lms",
		Short: "LMS enrollment API",
		Long: `Serves the enrollment API for users, courses and enrollments.

Running without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate, optionally seed, and start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations and exit",
			Args:  cobra.NoArgs,
			RunE:  runMigrate,
		},
		newSeedCmd(),
	)
	return cmd
}

func newSeedCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, courses and enrollments",
		Long: `Loads the CSV files from seed.dir (or the embedded demo data).
Users and courses are only inserted into an empty database.
With --reset every enrollment is deleted and enrollments.csv is loaded again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(cfgFile)
			if err != nil {
				return err
			}
			database, err := bootstrap.SetupDatabase(cmd.Context(), cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()

			result, err := bootstrap.SeedDatabase(cmd.Context(), cfg, database, lgr, reset || cfg.Seed.Reset)
			if err != nil {
				return err
			}
			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "Database already contains users, nothing to seed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d courses, %d enrollments (%d cleared, %d skipped)\n",
				result.UsersInserted, result.CoursesInserted, result.EnrollmentsCreated,
				result.EnrollmentsCleared, result.EnrollmentsSkipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all enrollments before loading")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(cfgFile)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(cmd.Context(), cfg, lgr)
	if err != nil {
		return err
	}
	if err := srv.Run(); err != nil {
		return err
	}
	lgr.Info().Msg("Application finished gracefully.")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(cfgFile)
	if err != nil {
		return err
	}
	database, err := db.Open(cmd.Context(), db.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	defer database.Close()

	return bootstrap.RunMigrations(cmd.Context(), database, lgr)
}
