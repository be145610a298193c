package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/pkg/response"
)

type exportResolver interface {
	Resolve(token string) (*models.ExportFile, io.ReadCloser, error)
}

// ExportHandler serves rendered diary books behind signed links.
type ExportHandler struct {
	exports exportResolver
}

// NewExportHandler constructs the download handler.
func NewExportHandler(exports exportResolver) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Download godoc
// @Summary Download an exported diary book
// @Tags Exports
// @Produce application/pdf
// @Produce text/csv
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, reader, err := h.exports.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, file.ContentType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, file.Name),
		"Cache-Control":       "no-store",
	})
}
