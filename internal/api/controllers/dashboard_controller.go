package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"memoria/internal/models/response_models"
	"memoria/internal/services"
	"memoria/pkg/utils"
)

const defaultDashboardDays = 30

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// GetDashboard godoc
// @Summary Admin overview
// @Description Account and memorial totals, recurring revenue, plan mix, sign-up series and latest billing events
// @Tags Admin
// @Produce json
// @Param last_days query int    false "Look back this many days (cannot be combined with start/end)"
// @Param start     query string false "Window start, RFC3339"
// @Param end       query string false "Window end, RFC3339"
// @Param interval  query string false "Series bucket: day, week or month"
// @Param tz        query string false "IANA zone the buckets are cut in"
// @Success 200 {object} utils.APIResponse{data=response_models.DashboardReport}
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (d *DashboardController) GetDashboard(c *gin.Context) {
	window, err := dashboardWindow(c, time.Now().UTC())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	report, err := d.dashboardService.BuildDashboard(c.Request.Context(), window)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Dashboard fetched successfully")
}

// dashboardWindow reads the reporting window from the query string. Either
// last_days or a start/end pair may be given; missing bounds fall back to
// the last defaultDashboardDays days ending now.
func dashboardWindow(c *gin.Context, now time.Time) (response_models.TimeRange, error) {
	window := response_models.TimeRange{
		Interval: c.DefaultQuery("interval", "day"),
		Timezone: c.DefaultQuery("tz", "UTC"),
	}
	switch window.Interval {
	case "day", "week", "month":
	default:
		return window, utils.NewValidationError("interval", "Interval must be day, week or month")
	}

	rawDays, rawStart, rawEnd := c.Query("last_days"), c.Query("start"), c.Query("end")
	if rawDays != "" {
		if rawStart != "" || rawEnd != "" {
			return window, utils.NewValidationError("last_days", "Use last_days or start/end, not both")
		}
		days, err := strconv.Atoi(rawDays)
		if err != nil || days <= 0 {
			return window, utils.NewValidationError("last_days", "last_days must be a positive number")
		}
		window.End = now
		window.Start = now.AddDate(0, 0, -days)
		return window, nil
	}

	for _, bound := range []struct {
		field string
		raw   string
		dst   *time.Time
	}{{"start", rawStart, &window.Start}, {"end", rawEnd, &window.End}} {
		if bound.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, bound.raw)
		if err != nil {
			return window, utils.NewValidationError(bound.field, "Expected an RFC3339 timestamp")
		}
		*bound.dst = t
	}

	if window.End.IsZero() {
		window.End = now
	}
	if window.Start.IsZero() {
		window.Start = window.End.AddDate(0, 0, -defaultDashboardDays)
	}
	if window.Start.After(window.End) {
		window.Start, window.End = window.End, window.Start
	}
	return window, nil
}
