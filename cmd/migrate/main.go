package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/meatlab/lims-api/internal/config"
	"github.com/meatlab/lims-api/migrations"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// migrationsDir is where create writes new files; applied migrations are embedded
const migrationsDir = "./migrations"

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the LIMS database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: withDB(func(db *sql.DB, _ []string) error {
		if err := goose.Up(db, "."); err != nil {
			return fmt.Errorf("failed to run up migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")
		return nil
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: withDB(func(db *sql.DB, _ []string) error {
		if err := goose.Down(db, "."); err != nil {
			return fmt.Errorf("failed to run down migration: %w", err)
		}
		fmt.Println("Migration rolled back successfully")
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: withDB(func(db *sql.DB, _ []string) error {
		return goose.Status(db, ".")
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: withDB(func(db *sql.DB, _ []string) error {
		return goose.Version(db, ".")
	}),
}

var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new SQL migration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		goose.SetBaseFS(nil)
		if err := goose.Create(nil, migrationsDir, args[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		fmt.Printf("Migration created: %s\n", args[0])
		return nil
	},
}

var (
	seedLabName    string
	seedAdminID    string
	seedAdminEmail string
	seedAdminName  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert default lab settings and the first admin when missing",
	RunE: withDB(func(db *sql.DB, _ []string) error {
		res, err := db.Exec(`
			INSERT INTO lab_settings (lab_name)
			SELECT $1
			WHERE NOT EXISTS (SELECT 1 FROM lab_settings)`, seedLabName)
		if err != nil {
			return fmt.Errorf("failed to seed lab settings: %w", err)
		}
		n, _ := res.RowsAffected()
		fmt.Printf("Seeded %d lab settings row(s)\n", n)

		if seedAdminID == "" {
			return nil
		}
		adminID, err := uuid.Parse(seedAdminID)
		if err != nil {
			return fmt.Errorf("invalid --admin-id: %w", err)
		}
		res, err = db.Exec(`
			INSERT INTO profiles (id, full_name, email, role)
			VALUES ($1, $2, $3, 'admin')
			ON CONFLICT (id) DO UPDATE SET role = 'admin', updated_at = CURRENT_TIMESTAMP`,
			adminID, seedAdminName, seedAdminEmail)
		if err != nil {
			return fmt.Errorf("failed to seed admin profile: %w", err)
		}
		n, _ = res.RowsAffected()
		fmt.Printf("Seeded %d admin profile(s)\n", n)
		return nil
	}),
}

func init() {
	seedCmd.Flags().StringVar(&seedLabName, "lab-name", "Meat Lab", "lab name printed on reports")
	seedCmd.Flags().StringVar(&seedAdminID, "admin-id", "", "auth user id to grant the admin role")
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "email stored on the admin profile")
	seedCmd.Flags().StringVar(&seedAdminName, "admin-name", "Lab Admin", "display name of the admin profile")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd, versionCmd, createCmd, seedCmd)
}

// withDB opens the configured database for a command
func withDB(fn func(db *sql.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.ConnectionString())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}

		return fn(db, args)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}
