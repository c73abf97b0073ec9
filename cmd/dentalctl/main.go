package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/dental-api/internal/app"
	"github.com/jwalitptl/dental-api/internal/config"
	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/repository/postgres"
	"github.com/jwalitptl/dental-api/pkg/logger"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "dentalctl",
		Short:        "Operator tooling for the dental clinic API",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("DENTAL_CONFIG_FILE"), "path to config file")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(initAdminCmd())
	rootCmd.AddCommand(resetPasswordCmd())
	rootCmd.AddCommand(seedServicesCmd())
	rootCmd.AddCommand(seedPatientsCmd())
	rootCmd.AddCommand(sendRemindersCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp loads configuration, builds the application and closes it once
// fn returns. Metrics go to a private registry.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log.ToLoggerConfig())

	a, err := app.New(ctx, cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				applied, err := postgres.Migrate(cmd.Context(), a.DB)
				for _, name := range applied {
					cmd.Printf("applied %s\n", name)
				}
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					cmd.Println("database is up to date")
				}
				return nil
			})
		},
	}
}

func initAdminCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "init-admin",
		Short: "Create the first admin account",
		Long:  "Create an admin account. Email and password default to ADMIN_USERNAME and ADMIN_PASSWORD from the environment or .env.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if email == "" {
					email = os.Getenv("ADMIN_USERNAME")
				}
				if password == "" {
					password = os.Getenv("ADMIN_PASSWORD")
				}
				if email == "" || password == "" {
					return errors.New("email and password are required")
				}

				existing, err := a.Repos.Users.GetByEmail(cmd.Context(), email)
				switch {
				case err == nil:
					cmd.Printf("user %s already exists (role %s)\n", existing.Email, existing.Role)
					return nil
				case !errors.Is(err, repository.ErrNotFound):
					return err
				}

				admin, err := a.Services.Users.CreateUser(cmd.Context(), model.UserInput{
					Email:    email,
					Password: password,
					Name:     name,
					Role:     model.RoleAdmin,
				})
				if err != nil {
					return err
				}
				cmd.Printf("admin %s created (%s)\n", admin.Email, admin.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&name, "name", "System Administrator", "display name")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email> <new-password>",
		Short: "Replace the password of an existing account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				user, err := a.Services.Users.ResetPassword(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				cmd.Printf("password updated for %s (%s)\n", user.Email, user.Role)
				return nil
			})
		},
	}
}

func sendRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-reminders",
		Short: "Enqueue reminders for tomorrow's appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				start, _ := a.Services.Reminders.Window()
				sent, err := a.Services.Reminders.Run(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("%d reminders enqueued for %s\n", sent, start.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print notification events published by the worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app.App) error {
				if a.Broker == nil {
					return errors.New("redis.url is not configured")
				}
				messages, err := a.Broker.Subscribe(ctx, a.Config.Redis.Channel)
				if err != nil {
					return err
				}
				cmd.Printf("listening on %s\n", a.Config.Redis.Channel)
				for msg := range messages {
					fmt.Fprintln(cmd.OutOrStdout(), string(msg))
				}
				return nil
			})
		},
	}
}
