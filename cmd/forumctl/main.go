package main

import (
	"os"

	"phreddit/internal/config"
	"phreddit/internal/db"
	"phreddit/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "forumctl",
		Short:        "Maintenance commands for the phreddit database",
		SilenceUsage: true,
	}
	root.AddCommand(newSeedCmd(), newDedupeCmd(), newMigrateCmd())
	return root
}

// open loads configuration and connects to the configured database.
func open() (*services.Services, *logrus.Logger, error) {
	cfg := config.Load()
	log := config.NewLogger(cfg)
	store, err := db.Init(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	return services.New(store, log), log, nil
}

func newSeedCmd() *cobra.Command {
	var admin services.AdminAccount
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the administrator and sample communities, posts and comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, log, err := open()
			if err != nil {
				return err
			}
			if err := svc.Maintenance.Seed(cmd.Context(), admin); err != nil {
				return err
			}
			log.Infof("Admin user created: %s (%s)", admin.DisplayName, admin.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&admin.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&admin.DisplayName, "display-name", "", "admin display name")
	cmd.Flags().StringVar(&admin.Password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("display-name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newDedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Delete communities and posts whose name or title repeats an older one",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, log, err := open()
			if err != nil {
				return err
			}
			report, err := svc.Maintenance.RemoveDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"communities": report.Communities, "posts": report.Posts}).Info("dedupe finished")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, err := open()
			if err != nil {
				return err
			}
			log.Info("migration finished")
			return nil
		},
	}
}
