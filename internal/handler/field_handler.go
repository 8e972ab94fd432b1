package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tum-registrar/internal/models"
	"github.com/noah-isme/tum-registrar/pkg/response"
)

// FieldItem describes one study field.
type FieldItem struct {
	Ordinal int               `json:"ordinal"`
	Name    models.StudyField `json:"name"`
}

// ListFields godoc
// @Summary List study fields
// @Tags Fields
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fields [get]
func ListFields(c *gin.Context) {
	fields := models.StudyFields()
	items := make([]FieldItem, 0, len(fields))
	for _, f := range fields {
		items = append(items, FieldItem{Ordinal: int(f), Name: f})
	}
	response.JSON(c, http.StatusOK, items)
}
