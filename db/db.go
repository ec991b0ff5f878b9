// Package db provides PostgreSQL persistence for saved content
// records, with versioned migrations applied on startup.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/zombar/linksaver/models"
)

// DB wraps the database connection and provides data access methods.
type DB struct {
	conn *sql.DB
}

// Config contains database configuration.
type Config struct {
	DSN string // PostgreSQL connection string
}

// ListFilter narrows a content listing. Zero values mean no filter;
// Limit 0 falls back to the default page size.
type ListFilter struct {
	Category models.Category
	Search   string
	Skip     int
	Limit    int
}

const defaultListLimit = 50

// New opens a connection pool and brings the schema up to date.
func New(config Config) (*DB, error) {
	conn, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DB returns the underlying connection for metrics collection.
func (db *DB) DB() *sql.DB {
	return db.conn
}

const recordColumns = `id, user_phone, url, platform, title, description, category, tags, ai_summary, media_url, thumbnail_url, snapshot_path, created_at, updated_at`

// Create inserts a new content record.
func (db *DB) Create(ctx context.Context, record *models.ContentRecord) error {
	tagsJSON, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO contents (id, user_phone, url, platform, title, description, category, tags, ai_summary, media_url, thumbnail_url, snapshot_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = db.conn.ExecContext(ctx, query,
		record.ID,
		record.UserPhone,
		record.URL,
		string(record.Platform),
		record.Title,
		record.Description,
		string(record.Category),
		string(tagsJSON),
		record.AISummary,
		nullable(record.MediaURL),
		nullable(record.ThumbnailURL),
		record.SnapshotPath,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// GetByID returns a single record, or nil when it does not exist.
func (db *DB) GetByID(ctx context.Context, id string) (*models.ContentRecord, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM contents WHERE id = $1", id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// ListByUser returns a user's records newest first. Search matches
// title, description, summary and category case-insensitively.
func (db *DB) ListByUser(ctx context.Context, userPhone string, filter ListFilter) ([]*models.ContentRecord, error) {
	conditions := []string{"user_phone = $1"}
	args := []interface{}{userPhone}

	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR ai_summary ILIKE $%d OR category ILIKE $%d)",
			n, n, n, n))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, filter.Skip)

	query := fmt.Sprintf(
		"SELECT %s FROM contents WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		recordColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*models.ContentRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Update applies a partial update and returns the updated record, or
// nil when the id does not exist.
func (db *DB) Update(ctx context.Context, id string, update models.ContentUpdate) (*models.ContentRecord, error) {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", string(*update.Category))
	}
	if update.Tags != nil {
		tagsJSON, err := json.Marshal(update.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tags: %w", err)
		}
		add("tags", string(tagsJSON))
	}
	if update.AISummary != nil {
		add("ai_summary", *update.AISummary)
	}
	if len(sets) == 0 {
		return db.GetByID(ctx, id)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE contents SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return db.GetByID(ctx, id)
}

// Delete removes a record. Returns false when the id does not exist.
func (db *DB) Delete(ctx context.Context, id string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM contents WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
}

// Count returns the total number of saved records.
func (db *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(id) FROM contents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Stats returns a user's total saved count and per-category counts.
func (db *DB) Stats(ctx context.Context, userPhone string) (*models.UserStats, error) {
	stats := &models.UserStats{CategoryCounts: map[models.Category]int{}}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT category, COUNT(id) FROM contents WHERE user_phone = $1 GROUP BY category",
		userPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.CategoryCounts[models.Category(category)] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*models.ContentRecord, error) {
	var record models.ContentRecord
	var tagsJSON string
	var mediaURL, thumbnailURL sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&record.ID,
		&record.UserPhone,
		&record.URL,
		&record.Platform,
		&record.Title,
		&record.Description,
		&record.Category,
		&tagsJSON,
		&record.AISummary,
		&mediaURL,
		&thumbnailURL,
		&record.SnapshotPath,
		&record.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &record.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	record.MediaURL = mediaURL.String
	record.ThumbnailURL = thumbnailURL.String
	if updatedAt.Valid {
		t := updatedAt.Time
		record.UpdatedAt = &t
	}
	return &record, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
