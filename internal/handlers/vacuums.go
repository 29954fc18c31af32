package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"
	"controlling_vacuums/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errListVacuums  = "failed to list vacuums"
	errCreateVacuum = "failed to create vacuum"
	errGetVacuum    = "failed to load vacuum"

	layoutDate = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondServiceError maps service errors onto status codes: missing
// vacuum → 404, rejection → 403 with its canonical reason, rest → 500.
func (h *Handler) respondServiceError(c *gin.Context, err error, logKey string) {
	var rej *service.Rejection
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "vacuum not found"})
	case errors.As(err, &rej):
		c.JSON(http.StatusForbidden, gin.H{"error": rej.Reason})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "internal error", logKey, err)
	}
}

func parseVacuumID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vacuum id"})
		return 0, false
	}
	return id, true
}

// Request DTO for creating/renaming a vacuum.
type vacuumRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List vacuums
// @Description  Lists the caller's vacuums. With any of name/statuses/date_from/date_to the listing becomes a filtered search.
// @Tags         vacuums
// @Produce      json
// @Param        name       query  string  false  "Name substring"
// @Param        statuses   query  string  false  "Comma-separated statuses"  example(STOPPED,RUNNING)
// @Param        date_from  query  string  false  "Created from (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Created to (YYYY-MM-DD), end of day inclusive"
// @Success      200  {object}  map[string]interface{}  "count, vacuums"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/vacuums [get]
// @Security     BearerAuth
func (h *Handler) listVacuums(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	ctx := c.Request.Context()

	filter, filtered, err := parseSearchFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vacuums []models.Vacuum
	if filtered {
		vacuums, err = h.services.Vacuums.Search(ctx, userID, filter)
	} else {
		vacuums, err = h.services.Vacuums.ListOwned(ctx, userID)
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListVacuums, "vacuums_list_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(vacuums),
		"vacuums": vacuums,
	})
}

// parseSearchFilter reads the optional query filters. The second return is
// false when no filter was supplied at all.
func parseSearchFilter(c *gin.Context) (service.SearchFilter, bool, error) {
	var (
		f        service.SearchFilter
		filtered bool
	)

	if name := strings.TrimSpace(c.Query("name")); name != "" {
		f.Name = name
		filtered = true
	}
	if raw := strings.TrimSpace(c.Query("statuses")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s := models.Status(strings.ToUpper(strings.TrimSpace(part)))
			if !models.KnownStatus(s) {
				return service.SearchFilter{}, false, errors.New("unknown status: " + string(s))
			}
			f.Statuses = append(f.Statuses, s)
		}
		filtered = true
	}
	if qs := c.Query("date_from"); qs != "" {
		t, err := time.Parse(layoutDate, qs)
		if err != nil {
			return service.SearchFilter{}, false, errors.New("invalid 'date_from'; use YYYY-MM-DD")
		}
		f.From = t.UTC()
		filtered = true
	}
	if qs := c.Query("date_to"); qs != "" {
		t, err := time.Parse(layoutDate, qs)
		if err != nil {
			return service.SearchFilter{}, false, errors.New("invalid 'date_to'; use YYYY-MM-DD")
		}
		// Date-only upper bound is end-of-day inclusive.
		f.To = t.Add(24*time.Hour - time.Nanosecond).UTC()
		filtered = true
	}

	return f, filtered, nil
}

// @Summary      Create vacuum
// @Tags         vacuums
// @Accept       json
// @Produce      json
// @Param        body  body  vacuumRequest  true  "Vacuum payload"
// @Success      200   {object}  models.Vacuum
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/vacuums [post]
// @Security     BearerAuth
func (h *Handler) createVacuum(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req vacuumRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	v, err := h.services.Vacuums.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errCreateVacuum, "vacuum_create_failed", err, "name", req.Name)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Get vacuum
// @Tags         vacuums
// @Produce      json
// @Param        id  path  int  true  "Vacuum id"
// @Success      200  {object}  models.Vacuum
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/vacuums/{id} [get]
// @Security     BearerAuth
func (h *Handler) getVacuum(c *gin.Context) {
	id, ok := parseVacuumID(c)
	if !ok {
		return
	}
	v, err := h.services.Vacuums.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "vacuum not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetVacuum, "vacuum_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Rename vacuum
// @Tags         vacuums
// @Accept       json
// @Produce      json
// @Param        id    path  int            true  "Vacuum id"
// @Param        body  body  vacuumRequest  true  "New name"
// @Success      200   {object}  models.Vacuum
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/vacuums/{id} [put]
// @Security     BearerAuth
func (h *Handler) renameVacuum(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := parseVacuumID(c)
	if !ok {
		return
	}

	var req vacuumRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	v, err := h.services.Vacuums.Rename(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		h.respondServiceError(c, err, "vacuum_rename_failed")
		return
	}
	c.JSON(http.StatusOK, v)
}

// @Summary      Delete vacuum
// @Description  Deactivates the vacuum. Only a STOPPED vacuum may be removed.
// @Tags         vacuums
// @Produce      json
// @Param        id  path  int  true  "Vacuum id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/vacuums/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteVacuum(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, ok := parseVacuumID(c)
	if !ok {
		return
	}

	if err := h.services.Vacuums.Deactivate(c.Request.Context(), userID, id); err != nil {
		h.respondServiceError(c, err, "vacuum_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}
