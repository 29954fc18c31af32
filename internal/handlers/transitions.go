package handlers

import (
	"net/http"

	"controlling_vacuums/internal/models"

	"github.com/gin-gonic/gin"
)

// scheduleRequest is the payload for a one-shot scheduled transition.
type scheduleRequest struct {
	VacuumID int64  `json:"vacuum_id" binding:"required"`
	Action   string `json:"action" binding:"required"`            // START | STOP | DISCHARGE
	When     string `json:"scheduled_date_time" binding:"required"` // MM/dd/yyyy HH:mm
}

// @Summary      Request transition
// @Description  Accepts or rejects synchronously; the actuation runs in the background. Observe completion by re-reading the vacuum.
// @Tags         vacuums
// @Produce      json
// @Param        id      path  int     true  "Vacuum id"
// @Param        action  path  string  true  "Action"  Enums(start,stop,discharge)
// @Success      202  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string  "canonical rejection reason"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/vacuums/{id}/actions/{action} [put]
// @Security     BearerAuth
func (h *Handler) requestTransition(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := parseVacuumID(c)
	if !ok {
		return
	}
	action, ok := models.ParseAction(c.Param("action"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + c.Param("action")})
		return
	}

	if err := h.services.Transitions.RequestTransition(c.Request.Context(), id, action, userID); err != nil {
		h.respondServiceError(c, err, "transition_request_failed")
		return
	}

	// Accepted: terminal state is observed later via GET /vacuums/{id}.
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// @Summary      Schedule transition
// @Description  Registers a one-shot transition at the given local time (MM/dd/yyyy HH:mm).
// @Tags         vacuums
// @Accept       json
// @Produce      json
// @Param        body  body  scheduleRequest  true  "Schedule payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/vacuums/schedule [post]
// @Security     BearerAuth
func (h *Handler) scheduleTransition(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req scheduleRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	action, ok := models.ParseAction(req.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}

	if err := h.services.Scheduler.ScheduleTransition(req.VacuumID, action, req.When, userID); err != nil {
		h.respondServiceError(c, err, "transition_schedule_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "scheduled"})
}
