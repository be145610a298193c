package models

import "time"

// ExportFormat selects the diary book renderer.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult points at a rendered diary book.
type ExportResult struct {
	ID        string       `json:"id"`
	Format    ExportFormat `json:"format"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ExportFile is a stored export resolved from a download token.
type ExportFile struct {
	Name        string
	ContentType string
	Path        string
}
