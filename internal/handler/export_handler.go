package handler

import (
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tum-registrar/internal/service"
	"github.com/noah-isme/tum-registrar/pkg/response"
)

// ExportHandler serves rendered rosters.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Roster godoc
// @Summary Download a roster
// @Description The rendered file is streamed and not kept in the exports directory.
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Produce application/yaml
// @Param format query string false "csv, pdf or yaml" default(csv)
// @Param faculty query string false "Faculty abbreviation or name"
// @Param graduates query bool false "Export graduates instead of enrolled students"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	graduates, _ := strconv.ParseBool(c.DefaultQuery("graduates", "false"))
	result, err := h.exports.Generate(c.Request.Context(), service.ExportRequest{
		Format:    c.DefaultQuery("format", service.ExportFormatCSV),
		Faculty:   c.Query("faculty"),
		Graduates: graduates,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(result.RelativePath)))
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
	if err := h.exports.Delete(result.RelativePath); err != nil {
		_ = c.Error(err)
	}
}
