package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tawidapp/tawid-backend/internal/database"
	"github.com/tawidapp/tawid-backend/internal/middleware"
	"github.com/tawidapp/tawid-backend/internal/models"
	"github.com/tawidapp/tawid-backend/internal/services"
)

// ScheduleFeed is the read path for schedule listings: the mirror's
// last-known snapshot plus a push subscription for streaming consumers.
type ScheduleFeed interface {
	Records() []models.ScheduleRecord
	Subscribe(onChange func([]models.ScheduleRecord), onError func(error)) func()
}

// ScheduleHandler serves the schedule directory and its admin mutations
type ScheduleHandler struct {
	scheduleRepo *database.ScheduleRepository
	feed         ScheduleFeed
	logger       *logrus.Logger
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleRepo *database.ScheduleRepository, feed ScheduleFeed, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleRepo: scheduleRepo,
		feed:         feed,
		logger:       logger,
	}
}

// GetSchedules returns the filtered schedule list from the mirror snapshot.
// GET /api/v1/schedules?search=&boat_type=&status=&price_min=&price_max=&day=&sort=
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
	filters := parseFilters(c)
	searchText := c.Query("search")

	records := services.ApplyFilters(h.feed.Records(), searchText, filters)

	if c.Query("sort") == "departure" {
		records = services.SortByDeparture(records)
	}

	if c.Query("group") == "boat_type" {
		fastcraft, roro := services.GroupByBoatType(records)
		c.JSON(http.StatusOK, gin.H{
			"fastcraft": fastcraft,
			"roro":      roro,
		})
		return
	}

	c.JSON(http.StatusOK, records)
}

// StreamSchedules pushes the complete snapshot to the client on every
// change, as server-sent events. One mirror subscription per connection,
// released when the client disconnects.
// GET /api/v1/schedules/stream
func (h *ScheduleHandler) StreamSchedules(c *gin.Context) {
	updates := make(chan []models.ScheduleRecord, 1)
	errs := make(chan error, 1)

	onChange := func(records []models.ScheduleRecord) {
		// Coalesce: a newer snapshot supersedes any undelivered one.
		for {
			select {
			case updates <- records:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	}
	onError := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}

	unsubscribe := h.feed.Subscribe(onChange, onError)
	defer unsubscribe()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case err := <-errs:
			c.SSEvent("error", gin.H{"message": "schedule updates interrupted", "detail": err.Error()})
			return false
		case records := <-updates:
			c.SSEvent("snapshot", records)
			return true
		}
	})
}

// GetScheduleByID retrieves a single schedule straight from the store
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetScheduleByID(c *gin.Context) {
	record, err := h.scheduleRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// CreateSchedule creates a new schedule from the admin form
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var form models.ScheduleForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Required fields are checked on the raw strings, before numeric
	// coercion can turn garbage into a present-looking zero.
	if verr := form.Validate(); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          verr.Error(),
			"missing_fields": verr.MissingFields,
		})
		return
	}

	draft := form.ToDraft()
	record, err := h.scheduleRepo.Create(&draft, userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to create schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedule"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// UpdateSchedule overwrites an existing schedule with the submitted form
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	var form models.ScheduleForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if verr := form.Validate(); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          verr.Error(),
			"missing_fields": verr.MissingFields,
		})
		return
	}

	draft := form.ToDraft()
	if err := h.scheduleRepo.Update(c.Param("id"), &draft); err != nil {
		var werr *models.WriteError
		if errors.As(err, &werr) && werr.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule updated"})
}

// DeleteSchedule removes a schedule by id. Deleting an already-deleted
// schedule succeeds.
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	if err := h.scheduleRepo.Delete(c.Param("id")); err != nil {
		h.logger.WithError(err).Error("Failed to delete schedule")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

// parseFilters builds a FilterState from query parameters, falling back to
// the unrestricted defaults on anything absent or unparsable.
func parseFilters(c *gin.Context) models.FilterState {
	filters := models.DefaultFilterState()

	if boatTypes := c.QueryArray("boat_type"); len(boatTypes) > 0 {
		filters.BoatTypes = boatTypes
	}
	if statuses := c.QueryArray("status"); len(statuses) > 0 {
		filters.Statuses = statuses
	}
	if days := c.QueryArray("day"); len(days) > 0 {
		filters.Days = days
	}
	if minStr := c.Query("price_min"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			filters.PriceRange.Min = min
		}
	}
	if maxStr := c.Query("price_max"); maxStr != "" {
		if max, err := strconv.ParseFloat(maxStr, 64); err == nil {
			filters.PriceRange.Max = max
		}
	}

	return filters
}
