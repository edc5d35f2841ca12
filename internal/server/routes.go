// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"benchtrack-backend/internal/auth"
	"benchtrack-backend/internal/controller/application"
	"benchtrack-backend/internal/controller/consultant"
	"benchtrack-backend/internal/controller/metrics"
	"benchtrack-backend/internal/controller/opportunity"
	"benchtrack-backend/internal/middleware"
	"benchtrack-backend/internal/model"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	// Load env
	_ "github.com/joho/godotenv/autoload"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrginsStr := os.Getenv("ALLOW_ORIGIN")
	allowOrgins := strings.Split(allowOrginsStr, ",")

	lAuth := auth.NewLocalAuthHandler(s.DB)
	consultantCtl := consultant.NewConsultantController(s.DB, s.Sync)
	opportunityCtl := opportunity.NewOpportunityController(s.DB, s.Sync)
	applicationCtl := application.NewApplicationController(s.DB)
	metricsCtl := metrics.NewMetricsController(s.DB)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrgins, // Add your frontend URL
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Enable cookies/auth
	}))

	r.Use(middleware.EnvRateLimitMiddleware())

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		needAuth := v1.Group("")
		{
			needAuth.Use(middleware.RequireAuth(s.DB))

			consultantRoute := needAuth.Group("/consultants")
			{
				consultantRoute.GET(":id", consultantCtl.GetConsultantByID)
				consultantRoute.PATCH(":id", consultantCtl.EditConsultantProfile)
				consultantRoute.PUT(":id/availability", consultantCtl.SetAvailability)
				consultantRoute.PUT(":id/skills", middleware.SizeLimit(1<<20), consultantCtl.ReplaceSkills)
				consultantRoute.POST(":id/resume-skills", middleware.SizeLimit(1<<20), consultantCtl.IngestResumeSkills)
				consultantRoute.GET(":id/skills/synced", consultantCtl.GetSyncedSkills)

				consultantRoute.Use(middleware.CheckRole(model.RoleAdmin))
				consultantRoute.GET("", consultantCtl.GetConsultants)
				consultantRoute.POST("", consultantCtl.CreateConsultant)
			}

			opportunityRoute := needAuth.Group("/opportunities")
			{
				opportunityRoute.GET("", opportunityCtl.GetOpportunities)
				opportunityRoute.GET(":id", opportunityCtl.GetOpportunityByID)
				opportunityRoute.GET(":id/match", opportunityCtl.GetMatch)
				opportunityRoute.POST(":id/applications", middleware.CheckRole(model.RoleConsultant), applicationCtl.SubmitApplication)
				opportunityRoute.POST("", middleware.CheckRole(model.RoleAdmin), opportunityCtl.CreateOpportunity)
			}

			applicationRoute := needAuth.Group("/applications")
			{
				applicationRoute.GET("", applicationCtl.GetApplications)
				applicationRoute.POST(":id/transition", applicationCtl.TransitionApplication)
			}

			needAdmin := needAuth.Group("")
			{
				needAdmin.Use(middleware.CheckRole(model.RoleAdmin))
				needAdmin.GET("dashboard/metrics", metricsCtl.GetDashboardMetrics)
			}
		}
	}

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
