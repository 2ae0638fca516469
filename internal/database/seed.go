package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a couple of demo categories with content. It is a no-op
// when any users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@catadmin.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Demo categories with a few content items so the admin UI has
	// something to show.
	var newsID, guidesID string
	err = db.QueryRow(`
		INSERT INTO categories (name, description, position)
		VALUES ('News', 'Demo category', 1)
		RETURNING id
	`).Scan(&newsID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}
	err = db.QueryRow(`
		INSERT INTO categories (name, description, position)
		VALUES ('Guides', 'Demo category', 2)
		RETURNING id
	`).Scan(&guidesID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	for i, categoryID := range []string{newsID, guidesID, newsID, guidesID, newsID} {
		_, err = db.Exec(`
			INSERT INTO contents (title, category_id) VALUES ($1, $2)
		`, fmt.Sprintf("Demo %d", i+1), categoryID)
		if err != nil {
			return fmt.Errorf("seed insert content: %w", err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@catadmin.local",
		"password", "admin",
	)

	return nil
}
