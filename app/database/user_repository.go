package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// userRepository handles database operations for users and their
// profile references
type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) UserRepository {
	return &userRepository{db: db}
}

// UpsertUser inserts or updates a user by its configuration name and
// returns the database id
func (r *userRepository) UpsertUser(user User) (string, error) {
	existing, err := r.GetUserByName(user.Name)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}

	if existing != nil {
		_, err = r.db.Exec(`
			UPDATE users
			SET email = ?, language = ?, facebook_language = ?, scrape_interval = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, user.Email, user.Language, user.FacebookLanguage, user.ScrapeInterval, existing.ID)
		if err != nil {
			return "", fmt.Errorf("failed to update user: %w", err)
		}
		return existing.ID, nil
	}

	id := uuid.NewString()
	_, err = r.db.Exec(`
		INSERT INTO users (id, name, email, language, facebook_language, scrape_interval)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, user.Name, user.Email, user.Language, user.FacebookLanguage, user.ScrapeInterval)
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	return id, nil
}

func (r *userRepository) GetUserByName(name string) (*User, error) {
	var user User
	err := r.db.QueryRow(`
		SELECT id, name, email, language, facebook_language, scrape_interval,
		       last_scraped_at, created_at, updated_at
		FROM users
		WHERE name = ?
	`, name).Scan(
		&user.ID, &user.Name, &user.Email, &user.Language, &user.FacebookLanguage,
		&user.ScrapeInterval, &user.LastScrapedAt, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUsers() ([]User, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, language, facebook_language, scrape_interval,
		       last_scraped_at, created_at, updated_at
		FROM users
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Language, &user.FacebookLanguage,
			&user.ScrapeInterval, &user.LastScrapedAt, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (r *userRepository) GetUserCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get user count: %w", err)
	}
	return count, nil
}

func (r *userRepository) UpdateLastScrapedAt(userID string, scrapedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET last_scraped_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, scrapedAt.UTC(), userID)

	if err != nil {
		return fmt.Errorf("failed to update last scraped time: %w", err)
	}

	return nil
}

// ReplaceProfileRefs swaps the full reference set for one user and
// source in a single transaction
func (r *userRepository) ReplaceProfileRefs(userID, source string, refs []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM profile_refs WHERE user_id = ? AND source = ?", userID, source)
	if err != nil {
		return fmt.Errorf("failed to delete profile refs: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO profile_refs (id, user_id, source, ref)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, source, ref) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ref := range refs {
		if _, err := stmt.Exec(uuid.NewString(), userID, source, ref); err != nil {
			return fmt.Errorf("failed to insert profile ref: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile refs: %w", err)
	}

	return nil
}

func (r *userRepository) GetProfileRefs(userID, source string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT ref FROM profile_refs
		WHERE user_id = ? AND source = ?
		ORDER BY rowid
	`, userID, source)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile refs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan profile ref row: %w", err)
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile ref rows: %w", err)
	}

	return refs, nil
}
