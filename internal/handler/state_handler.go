package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tum-registrar/internal/service"
	"github.com/noah-isme/tum-registrar/pkg/response"
)

// StateHandler exposes explicit save/load of the persisted snapshot.
type StateHandler struct {
	registry *service.RegistryService
}

// NewStateHandler constructs StateHandler.
func NewStateHandler(registry *service.RegistryService) *StateHandler {
	return &StateHandler{registry: registry}
}

// Save godoc
// @Summary Persist the current state
// @Tags State
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /state/save [post]
func (h *StateHandler) Save(c *gin.Context) {
	if err := h.registry.Save(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.registry.Summary(c.Request.Context()))
}

// Load godoc
// @Summary Replace the in-memory state with the persisted snapshot
// @Description A missing snapshot yields an empty registry. An unreadable one is reported as STATE_CORRUPT and the in-memory state is kept.
// @Tags State
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /state/load [post]
func (h *StateHandler) Load(c *gin.Context) {
	result := h.registry.Load(c.Request.Context())
	if result.Failure != nil {
		response.Error(c, result.Failure)
		return
	}
	response.JSON(c, http.StatusOK, h.registry.Summary(c.Request.Context()), map[string]interface{}{
		"restored":  result.Restored,
		"defaulted": result.Defaulted,
	})
}
