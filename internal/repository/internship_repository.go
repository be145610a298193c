package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/internship-api/internal/models"
)

const internshipColumns = `id, student_id, company_id, topic, description, start_date, end_date, status, working_days, created_at, updated_at`

// InternshipRepository provides database access for internship records.
type InternshipRepository struct {
	db *sqlx.DB
}

// NewInternshipRepository creates a new instance of InternshipRepository.
func NewInternshipRepository(db *sqlx.DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

// Create inserts an internship. An empty status defaults to pending.
func (r *InternshipRepository) Create(ctx context.Context, in *models.Internship) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Status == "" {
		in.Status = models.InternshipPending
	}
	now := time.Now().UTC()
	in.CreatedAt, in.UpdatedAt = now, now

	const query = `INSERT INTO internships (` + internshipColumns + `)
VALUES (:id, :student_id, :company_id, :topic, :description, :start_date, :end_date, :status, :working_days, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, in); err != nil {
		return fmt.Errorf("create internship: %w", err)
	}
	return nil
}

// FindByID returns an internship by identifier.
func (r *InternshipRepository) FindByID(ctx context.Context, id string) (*models.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE id = $1 LIMIT 1`
	var in models.Internship
	if err := r.db.GetContext(ctx, &in, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find internship: %w", err)
	}
	return &in, nil
}

// ListByParticipant returns internships where userID is the student or the company.
// A single predicate keeps each row at most once.
func (r *InternshipRepository) ListByParticipant(ctx context.Context, userID string) ([]models.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE student_id = $1 OR company_id = $1 ORDER BY start_date DESC, created_at DESC`
	var items []models.Internship
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list internships by participant: %w", err)
	}
	return items, nil
}
