package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tum-registrar/internal/service"
	"github.com/noah-isme/tum-registrar/pkg/response"
)

// StudentHandler exposes endpoints keyed by student email.
type StudentHandler struct {
	registry *service.RegistryService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(registry *service.RegistryService) *StudentHandler {
	return &StudentHandler{registry: registry}
}

// Faculty godoc
// @Summary Find the faculty a student is enrolled in
// @Tags Students
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{email}/faculty [get]
func (h *StudentHandler) Faculty(c *gin.Context) {
	item, err := h.registry.FindFacultyByStudentEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Graduate godoc
// @Summary Graduate a student
// @Tags Students
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{email}/graduate [post]
func (h *StudentHandler) Graduate(c *gin.Context) {
	result, err := h.registry.GraduateStudent(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
