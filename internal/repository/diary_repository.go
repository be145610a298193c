package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/internship-api/internal/models"
)

// DiaryRepository provides database access for internship diary entries.
type DiaryRepository struct {
	db *sqlx.DB
}

// NewDiaryRepository creates a new instance of DiaryRepository.
func NewDiaryRepository(db *sqlx.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

// Create appends a diary entry. Entries are never overwritten, even for a repeated day number.
func (r *DiaryRepository) Create(ctx context.Context, entry *models.DiaryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = models.DiaryDraft
	}
	now := time.Now().UTC()
	entry.CreatedAt, entry.UpdatedAt = now, now

	const query = `INSERT INTO internship_diaries (id, internship_id, day_number, content, date, status, created_at, updated_at)
VALUES (:id, :internship_id, :day_number, :content, :date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create diary entry: %w", err)
	}
	return nil
}

// ListByInternship returns the diary of an internship ordered by day.
func (r *DiaryRepository) ListByInternship(ctx context.Context, internshipID string) ([]models.DiaryEntry, error) {
	const query = `SELECT id, internship_id, day_number, content, date, status, created_at, updated_at
FROM internship_diaries WHERE internship_id = $1 ORDER BY day_number, created_at`
	var entries []models.DiaryEntry
	if err := r.db.SelectContext(ctx, &entries, query, internshipID); err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	return entries, nil
}
