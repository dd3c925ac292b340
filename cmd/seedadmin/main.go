// Command seedadmin creates the first admin account so a fresh deployment can log in.
// Usage: go run ./cmd/seedadmin --email owner@example.com --password secret --name "Shop Owner"
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"shopbill/internal/config"
	"shopbill/internal/domain"
	"shopbill/internal/logger"
	"shopbill/internal/repository/postgres"
)

const minPasswordLen = 8

var rootCmd = &cobra.Command{
	Use:   "seedadmin",
	Short: "Create an admin user in the billing database",
	Example: `  seedadmin --email owner@example.com --password s3cretpass --name "Shop Owner"
  seedadmin --email fert@example.com --password s3cretpass --name "Counter" --shop fertilizer`,
	RunE: run,
}

func init() {
	rootCmd.Flags().String("email", "", "login email (required)")
	rootCmd.Flags().String("password", "", "login password, at least 8 characters (required)")
	rootCmd.Flags().String("name", "Administrator", "display name")
	rootCmd.Flags().String("shop", string(domain.ShopTypeGrocery), "default shop: grocery or fertilizer")
	_ = rootCmd.MarkFlagRequired("email")
	_ = rootCmd.MarkFlagRequired("password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	shopRaw, _ := cmd.Flags().GetString("shop")

	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	shop, err := domain.ParseShopType(shopRaw)
	if err != nil {
		return err
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if _, err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         domain.RoleAdmin,
		ActiveShop:   shop,
		IsActive:     true,
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := postgres.NewUserRepo(db).Create(ctx, user); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Str("shop", string(shop)).Msg("admin created")
	return nil
}
