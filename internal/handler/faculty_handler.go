package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tum-registrar/internal/models"
	"github.com/noah-isme/tum-registrar/internal/service"
	appErrors "github.com/noah-isme/tum-registrar/pkg/errors"
	"github.com/noah-isme/tum-registrar/pkg/response"
)

// FacultyHandler exposes faculty endpoints.
type FacultyHandler struct {
	registry *service.RegistryService
}

// NewFacultyHandler constructs FacultyHandler.
func NewFacultyHandler(registry *service.RegistryService) *FacultyHandler {
	return &FacultyHandler{registry: registry}
}

// enrollStudentBody is the POST payload; the faculty comes from the path.
type enrollStudentBody struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"`
}

// List godoc
// @Summary List faculties
// @Tags Faculties
// @Produce json
// @Param field query string false "Study field name or ordinal"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /faculties [get]
func (h *FacultyHandler) List(c *gin.Context) {
	var field *models.StudyField
	if raw := strings.TrimSpace(c.Query("field")); raw != "" {
		parsed, err := service.ParseStudyField(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		field = &parsed
	}
	items := h.registry.ListFaculties(c.Request.Context(), field)
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Create godoc
// @Summary Create faculty
// @Tags Faculties
// @Accept json
// @Produce json
// @Param payload body service.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /faculties [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req service.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.registry.CreateFaculty(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// ListStudents godoc
// @Summary List enrolled students of a faculty
// @Tags Faculties
// @Produce json
// @Param ref path string true "Faculty abbreviation or name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculties/{ref}/students [get]
func (h *FacultyHandler) ListStudents(c *gin.Context) {
	ref, err := facultyRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rosters, err := h.registry.ListStudents(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosters[0])
}

// ListGraduates godoc
// @Summary List graduates of a faculty
// @Tags Faculties
// @Produce json
// @Param ref path string true "Faculty abbreviation or name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculties/{ref}/graduates [get]
func (h *FacultyHandler) ListGraduates(c *gin.Context) {
	ref, err := facultyRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rosters, err := h.registry.ListGraduates(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosters[0])
}

// Enroll godoc
// @Summary Enroll a student in a faculty
// @Tags Faculties
// @Accept json
// @Produce json
// @Param ref path string true "Faculty abbreviation or name"
// @Param payload body enrollStudentBody true "Student payload, date_of_birth as YYYY-MM-DD"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /faculties/{ref}/students [post]
func (h *FacultyHandler) Enroll(c *gin.Context) {
	ref, err := facultyRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var body enrollStudentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.registry.EnrollStudent(c.Request.Context(), service.EnrollStudentRequest{
		Faculty:     ref,
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Email:       body.Email,
		DateOfBirth: body.DateOfBirth,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// BelongsTo godoc
// @Summary Check whether a student is enrolled in a faculty
// @Tags Faculties
// @Produce json
// @Param ref path string true "Faculty abbreviation or name"
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculties/{ref}/students/{email} [get]
func (h *FacultyHandler) BelongsTo(c *gin.Context) {
	ref, err := facultyRef(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.registry.BelongsTo(c.Request.Context(), ref, c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// facultyRef reads the :ref path value. A blank reference names no faculty.
func facultyRef(c *gin.Context) (string, error) {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		return "", appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	return ref, nil
}
