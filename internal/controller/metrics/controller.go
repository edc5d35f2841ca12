// Package metrics provides the dashboard aggregate endpoint.
package metrics

import (
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/matching"
	"benchtrack-backend/internal/model"
	"benchtrack-backend/internal/utilities"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetricsController handles dashboard metric endpoints
type MetricsController struct {
	DB *database.DBinstanceStruct
}

// NewMetricsController creates a new instance of MetricsController
func NewMetricsController(db *database.DBinstanceStruct) *MetricsController {
	return &MetricsController{
		DB: db,
	}
}

type dashboardMetrics struct {
	TotalConsultants  int64                  `json:"total_consultants"`
	BenchConsultants  int64                  `json:"bench_consultants"`
	OpenOpportunities int64                  `json:"open_opportunities"`
	FillRate          float64                `json:"fill_rate"`
	SuccessRate       float64                `json:"success_rate"`
	SkillsInDemand    []matching.SkillDemand `json:"skills_in_demand"`
}

// GetDashboardMetrics aggregates bench and opportunity figures for the
// dashboard.
// @Summary Get dashboard metrics
// @Description Only admin can access this endpoint
// @Tags Metrics
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} dashboardMetrics "Aggregated bench and opportunity figures"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /dashboard/metrics [get]
func (mc *MetricsController) GetDashboardMetrics(c *gin.Context) {
	var out dashboardMetrics

	if err := mc.DB.Model(&model.Consultant{}).Count(&out.TotalConsultants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count consultants: %s", err.Error()),
		})
		return
	}

	if err := mc.DB.Model(&model.Consultant{}).
		Where("availability_status = ?", model.AvailabilityAvailable).
		Count(&out.BenchConsultants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count bench consultants: %s", err.Error()),
		})
		return
	}

	var opportunities []model.Opportunity
	if err := mc.DB.Find(&opportunities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch opportunities: %s", err.Error()),
		})
		return
	}

	for _, o := range opportunities {
		if o.Status == model.OpportunityStatusOpen {
			out.OpenOpportunities++
		}
	}

	var applications []model.Application
	if err := mc.DB.Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}

	out.FillRate = matching.FillRate(opportunities)
	out.SuccessRate = matching.SuccessRate(applications)
	out.SkillsInDemand = matching.SkillsInDemand(opportunities)

	c.JSON(http.StatusOK, out)
}
