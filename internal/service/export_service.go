package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
	"github.com/noah-isme/internship-api/pkg/export"
	"github.com/noah-isme/internship-api/pkg/storage"
)

type diaryBookSource interface {
	GetInternship(ctx context.Context, caller *models.Caller, internshipID string) (*models.Internship, error)
	ListDiaries(ctx context.Context, caller *models.Caller, internshipID string) ([]models.DiaryEntry, error)
}

type participantProfiles interface {
	FindStudentByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	FindCompanyByUserID(ctx context.Context, userID string) (*models.CompanyProfile, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (io.ReadCloser, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type urlSigner interface {
	Generate(id, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, relPath string, expiresAt time.Time, err error)
}

// ExportConfig controls download URLs and retention of rendered files.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders internship diary books and hands out signed download links.
type ExportService struct {
	source    diaryBookSource
	profiles  participantProfiles
	storage   fileStorage
	signer    urlSigner
	renderers map[models.ExportFormat]export.Renderer
	metrics   *MetricsService
	config    ExportConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the csv and pdf renderers.
func NewExportService(source diaryBookSource, profiles participantProfiles, store fileStorage, signer urlSigner, metrics *MetricsService, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		source:   source,
		profiles: profiles,
		storage:  store,
		signer:   signer,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportFormatCSV: export.NewCSVExporter(),
			models.ExportFormatPDF: export.NewPDFExporter(),
		},
		metrics:   metrics,
		config:    cfg,
		validator: validate,
		logger:    logger,
	}
}

// ExportDiary renders the diary book of an internship the caller may read.
func (s *ExportService) ExportDiary(ctx context.Context, caller *models.Caller, req dto.ExportDiaryRequest) (*models.ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid export payload")
	}
	format := models.ExportFormat(req.Format)
	if format == "" {
		format = models.ExportFormatPDF
	}
	renderer := s.renderers[format]

	internship, err := s.source.GetInternship(ctx, caller, req.InternshipID)
	if err != nil {
		return nil, err
	}
	entries, err := s.source.ListDiaries(ctx, caller, internship.ID)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(s.diaryDocument(ctx, internship, entries))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render diary book")
	}

	id := uuid.NewString()
	relPath, err := s.storage.Save(path.Join("diaries", internship.ID, id+"."+renderer.Extension()), data)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store diary book")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}

	s.metrics.RecordExport(string(format))
	s.logger.Info("diary book exported",
		zap.String("internship_id", internship.ID),
		zap.String("format", string(format)),
		zap.Int("entries", len(entries)),
	)
	return &models.ExportResult{
		ID:        id,
		Format:    format,
		URL:       s.config.APIPrefix + "/export/" + token,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// Resolve validates a download token and opens the stored file.
func (s *ExportService) Resolve(token string) (*models.ExportFile, io.ReadCloser, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "download link is invalid")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export file not found")
	}
	info := &models.ExportFile{Name: path.Base(relPath), Path: relPath, ContentType: "application/octet-stream"}
	for _, r := range s.renderers {
		if path.Ext(relPath) == "."+r.Extension() {
			info.ContentType = r.ContentType()
		}
	}
	return info, file, nil
}

// Cleanup removes rendered files older than the configured retention.
func (s *ExportService) Cleanup() ([]string, error) {
	removed, err := s.storage.CleanupOlderThan(s.config.ResultTTL)
	if err != nil {
		return nil, fmt.Errorf("cleanup exports: %w", err)
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func (s *ExportService) diaryDocument(ctx context.Context, internship *models.Internship, entries []models.DiaryEntry) export.Document {
	doc := export.Document{
		Title: "Internship Diary",
		Details: [][2]string{
			{"Student", s.studentName(ctx, internship.StudentID)},
			{"Company", s.companyName(ctx, internship.CompanyID)},
			{"Topic", internship.Topic},
			{"Period", internship.StartDate.Format(dto.DateLayout) + " - " + internship.EndDate.Format(dto.DateLayout)},
			{"Status", string(internship.Status)},
		},
		Columns: []export.Column{
			{Key: "day", Header: "Day", Width: 1},
			{Key: "date", Header: "Date", Width: 2},
			{Key: "status", Header: "Status", Width: 1.5},
			{Key: "content", Header: "Content", Width: 7},
		},
		Rows: make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		doc.Rows = append(doc.Rows, map[string]string{
			"day":     strconv.Itoa(entry.DayNumber),
			"date":    entry.Date.Format(dto.DateLayout),
			"status":  string(entry.Status),
			"content": entry.Content,
		})
	}
	return doc
}

func (s *ExportService) studentName(ctx context.Context, userID string) string {
	profile, err := s.profiles.FindStudentByUserID(ctx, userID)
	if err != nil {
		return userID
	}
	return profile.FullName()
}

func (s *ExportService) companyName(ctx context.Context, userID string) string {
	profile, err := s.profiles.FindCompanyByUserID(ctx, userID)
	if err != nil {
		return userID
	}
	return profile.Name
}
