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

const evaluationColumns = `id, internship_id, attendance, performance, adaptation, technical_skills, communication_skills, teamwork, comment, average_rating, is_approved, created_at, updated_at`

// EvaluationRepository provides database access for internship evaluations.
// Every write recomputes average_rating from the sub-scores it persists.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository creates a new instance of EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts an evaluation.
func (r *EvaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	if eval.ID == "" {
		eval.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	eval.CreatedAt, eval.UpdatedAt = now, now
	eval.ComputeAverage()

	const query = `INSERT INTO evaluations (` + evaluationColumns + `)
VALUES (:id, :internship_id, :attendance, :performance, :adaptation, :technical_skills, :communication_skills, :teamwork, :comment, :average_rating, :is_approved, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, eval); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// Update rewrites scores and comment. Returns sql.ErrNoRows when the evaluation is gone.
func (r *EvaluationRepository) Update(ctx context.Context, eval *models.Evaluation) error {
	eval.UpdatedAt = time.Now().UTC()
	eval.ComputeAverage()

	const query = `UPDATE evaluations SET attendance = :attendance, performance = :performance, adaptation = :adaptation,
technical_skills = :technical_skills, communication_skills = :communication_skills, teamwork = :teamwork,
comment = :comment, average_rating = :average_rating, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, eval)
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetApproved flips the approval flag.
func (r *EvaluationRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	const query = `UPDATE evaluations SET is_approved = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, approved, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("approve evaluation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve evaluation: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindByID returns an evaluation by identifier.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1 LIMIT 1`
	var eval models.Evaluation
	if err := r.db.GetContext(ctx, &eval, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find evaluation: %w", err)
	}
	return &eval, nil
}

// ListByInternship returns the evaluations of an internship, oldest first.
func (r *EvaluationRepository) ListByInternship(ctx context.Context, internshipID string) ([]models.Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE internship_id = $1 ORDER BY created_at`
	var evals []models.Evaluation
	if err := r.db.SelectContext(ctx, &evals, query, internshipID); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}
