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

const (
	studentColumns = `id, user_id, first_name, last_name, student_number, department, faculty, phone, address, created_at, updated_at`
	companyColumns = `id, user_id, name, address, phone, contact_person, website, tax_number, is_approved, approved_at, created_at, updated_at`
)

// ProfileRepository provides database access for student and company profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindStudentByUserID returns the student profile linked to a user.
func (r *ProfileRepository) FindStudentByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	query := `SELECT ` + studentColumns + ` FROM student_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	return &profile, nil
}

// FindCompanyByUserID returns the company profile linked to a user.
func (r *ProfileRepository) FindCompanyByUserID(ctx context.Context, userID string) (*models.CompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM company_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.CompanyProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find company profile by user: %w", err)
	}
	return &profile, nil
}

// FindCompanyByID returns a company profile by its own identifier.
func (r *ProfileRepository) FindCompanyByID(ctx context.Context, id string) (*models.CompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM company_profiles WHERE id = $1 LIMIT 1`
	var profile models.CompanyProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find company profile: %w", err)
	}
	return &profile, nil
}

// CreateStudent inserts a student profile.
func (r *ProfileRepository) CreateStudent(ctx context.Context, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	const query = `INSERT INTO student_profiles (` + studentColumns + `)
VALUES (:id, :user_id, :first_name, :last_name, :student_number, :department, :faculty, :phone, :address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// CreateCompany inserts a company profile.
func (r *ProfileRepository) CreateCompany(ctx context.Context, profile *models.CompanyProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	const query = `INSERT INTO company_profiles (` + companyColumns + `)
VALUES (:id, :user_id, :name, :address, :phone, :contact_person, :website, :tax_number, :is_approved, :approved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create company profile: %w", err)
	}
	return nil
}

// UpdateStudent writes the mutable contact fields of a student profile.
func (r *ProfileRepository) UpdateStudent(ctx context.Context, profile *models.StudentProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_profiles SET first_name = :first_name, last_name = :last_name, phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// ApproveCompany marks a company profile approved.
func (r *ProfileRepository) ApproveCompany(ctx context.Context, id string, approvedAt time.Time) error {
	const query = `UPDATE company_profiles SET is_approved = TRUE, approved_at = $2, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, approvedAt)
	if err != nil {
		return fmt.Errorf("approve company: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve company: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
