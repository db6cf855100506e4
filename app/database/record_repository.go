package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/socialpress/socialpress/app/ingest"
)

// recordRepository handles database operations for ingested records
type recordRepository struct {
	db *DB
}

func NewRecordRepository(db *DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) HasRecord(userID, source, nativeID string) (bool, error) {
	var one int
	err := r.db.QueryRow(`
		SELECT 1 FROM records
		WHERE user_id = ? AND source = ? AND native_id = ?
	`, userID, source, nativeID).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}

	return true, nil
}

// InsertRecords stores a batch of records in a single transaction and
// returns how many rows were actually inserted. Records that already
// exist for the same user, source and native id are left untouched.
func (r *recordRepository) InsertRecords(records []ingest.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO records (
			id, user_id, source, native_id, author_name, author_handle,
			text, lang, url, media_url, profile_image_url,
			likes, replies, reposts, quotes, posted_at, title, summary
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, source, native_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		result, err := stmt.Exec(
			uuid.NewString(), rec.UserID, rec.Source, rec.NativeID,
			rec.AuthorName, rec.AuthorHandle, rec.Text, rec.Lang,
			rec.URL, rec.MediaURL, rec.ProfileImageURL,
			rec.Likes, rec.Replies, rec.Reposts, rec.Quotes,
			rec.PostedAt.UTC(), rec.Title, rec.Summary,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read insert result: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit records: %w", err)
	}

	return inserted, nil
}

// UpdateEnrichments applies titles and summaries to stored records in a
// single transaction and returns how many rows were updated
func (r *recordRepository) UpdateEnrichments(userID, source string, updates []ingest.EnrichmentUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE records
		SET title = ?, summary = ?, enriched_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND source = ? AND native_id = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for _, update := range updates {
		result, err := stmt.Exec(update.Title, update.Summary, userID, source, update.NativeID)
		if err != nil {
			return 0, fmt.Errorf("failed to update record: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read update result: %w", err)
		}
		updated += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit enrichments: %w", err)
	}

	return updated, nil
}

func (r *recordRepository) GetRecordCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get record count: %w", err)
	}
	return count, nil
}

// GetRecordStats returns the total and enriched record counts for a user
func (r *recordRepository) GetRecordStats(userID string) (int, int, error) {
	var total, enriched int
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN enriched_at IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM records
		WHERE user_id = ?
	`, userID).Scan(&total, &enriched)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get record stats: %w", err)
	}
	return total, enriched, nil
}

func (r *recordRepository) GetRecentRecords(userID string, limit int) ([]Record, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, source, native_id, author_name, author_handle,
		       text, lang, url, media_url, profile_image_url,
		       likes, replies, reposts, quotes, posted_at,
		       title, summary, enriched_at, created_at
		FROM records
		WHERE user_id = ?
		ORDER BY posted_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Source, &rec.NativeID,
			&rec.AuthorName, &rec.AuthorHandle, &rec.Text, &rec.Lang,
			&rec.URL, &rec.MediaURL, &rec.ProfileImageURL,
			&rec.Likes, &rec.Replies, &rec.Reposts, &rec.Quotes,
			&rec.PostedAt, &rec.Title, &rec.Summary,
			&rec.EnrichedAt, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return records, nil
}
