package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List audit records
// @Description  Rejected and failed transition attempts for the caller's vacuums, oldest first.
// @Tags         errors
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, errors"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/errors [get]
// @Security     BearerAuth
func (h *Handler) listErrors(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	records, err := h.services.Audit.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load audit records", "errors_list_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(records),
		"errors": records,
	})
}
