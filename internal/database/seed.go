package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Demo account created by Seed in development.
const (
	SeedEmail    = "demo@blogapi.local"
	SeedPassword = "Dem0!Passw0rd"
)

var seedCategories = []struct {
	name        string
	description string
}{
	{"General", "Posts that do not fit anywhere else"},
	{"Engineering", "Notes on building software"},
}

// Seed populates an empty database with a demo user, its profile and a
// couple of categories. It does nothing once any user exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		SeedEmail, string(hash),
	).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (name, lastname, email, user_id) VALUES ($1, $2, $3, $4)`,
		"Demo", "Author", SeedEmail, userID,
	)
	if err != nil {
		return fmt.Errorf("seed insert profile: %w", err)
	}

	for _, c := range seedCategories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			c.name, c.description,
		)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo user", "email", SeedEmail)
	return nil
}
