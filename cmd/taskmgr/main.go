package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"taskmanager/internal/app"
	"taskmanager/internal/config"
	"taskmanager/internal/models"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "taskmgr",
	Short:        "Task management API server",
	Long:         `Users, tasks, sub-tasks, activities and notifications over a JSON HTTP API backed by MongoDB.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := build(ctx)
		if err != nil {
			return err
		}
		defer closeApp(a)
		return a.Serve(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(a)
		return a.Migrate(cmd.Context())
	},
}

var admin models.RegisterRequest

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(admin.Email) == "" || len(admin.Password) < 6 {
			return fmt.Errorf("--email and --password (min 6 chars) are required")
		}
		a, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.Migrate(cmd.Context()); err != nil {
			return err
		}
		u, err := a.CreateAdmin(cmd.Context(), admin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin created: %s (%s)\n", u.Email, u.ID.Hex())
		return nil
	},
}

func build(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.Close(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", config.DefaultPath), "path to the YAML config file")

	createAdminCmd.Flags().StringVar(&admin.Name, "name", "Admin", "display name")
	createAdminCmd.Flags().StringVar(&admin.Email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&admin.Password, "password", "", "initial password")
	createAdminCmd.Flags().StringVar(&admin.Title, "title", "Administrator", "job title")
	createAdminCmd.Flags().StringVar(&admin.Role, "role", "Admin", "role label")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
