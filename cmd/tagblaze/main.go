package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/tagblaze/tagblaze/internal/auth"
	"github.com/tagblaze/tagblaze/internal/config"
	"github.com/tagblaze/tagblaze/internal/database"
	"github.com/tagblaze/tagblaze/internal/repository"
	"github.com/tagblaze/tagblaze/internal/seed"
	"github.com/tagblaze/tagblaze/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tagblaze",
	Short: "TagBlaze CLI - ticket and tag service management tool",
	Long: `TagBlaze Command Line Interface

Utilities for managing a TagBlaze installation: password hashing for
manual user setup and database seeding for development environments.`,
	Version: version.String(),
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Println(string(hash))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and load development fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "."
		}
		if err := config.Load(configPath); err != nil {
			return err
		}
		cfg := config.Get()

		db, err := database.Open(
			cfg.Database.Driver,
			cfg.Database.GetDSN(),
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}

		hasher := auth.NewPasswordHasher(cfg.Auth.Password.BcryptCost)
		seeder := seed.NewService(
			db,
			repository.NewUserRepository(db),
			repository.NewTicketRepository(db),
			repository.NewTagRepository(db),
			repository.NewTicketTagRepository(db),
			hasher,
		)

		summary, err := seeder.Reset()
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d users, %d tags, %d tickets, %d relations\n",
			summary.UsersSeeded, summary.TagsSeeded, summary.TicketsSeeded, summary.RelationsSeeded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
