package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/clauseease/clauseease/internal/domain"
)

// HistoryRepository persists per-user analysis runs
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert records one analysis run for a user.
func (r *HistoryRepository) Insert(ctx context.Context, userID int64, entry *domain.HistoryEntry) error {
	query := `
		INSERT INTO analysis_history (user_id, text_preview, flesch_score, fog_score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	res, err := r.db.SQL.ExecContext(ctx, query,
		userID,
		entry.TextPreview,
		entry.FleschScore,
		entry.FogScore,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByEmail returns a user's runs, newest first.
func (r *HistoryRepository) ListByEmail(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT h.id, h.text_preview, h.flesch_score, h.fog_score, h.created_at
		FROM analysis_history h
		JOIN users u ON h.user_id = u.id
		WHERE u.email = ?
		ORDER BY h.created_at DESC
	`
	rows, err := r.db.SQL.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.TextPreview,
			&e.FleschScore,
			&e.FogScore,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}
