// Package application provides HTTP handlers for opportunity application
// submission and lifecycle transitions.
package application

import (
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/model"
	"benchtrack-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationController handles application related endpoints
type ApplicationController struct {
	DB *database.DBinstanceStruct
}

// NewApplicationController creates a new instance of ApplicationController with the provided database connection.
func NewApplicationController(db *database.DBinstanceStruct) *ApplicationController {
	return &ApplicationController{
		DB: db,
	}
}

type submitInfo struct {
	CoverNote string `json:"cover_note"`
}

// SubmitApplication handles the submission of a new application by a consultant.
// The match score is computed and stamped onto the application at submit time.
// @Summary Apply to an opportunity
// @Description Only consultant can access this endpoint. A consultant may hold at most one active application per opportunity
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of the opportunity to apply to"
// @Param Application body submitInfo false "Optional cover note"
// @Success 201 {object} model.Application "Successfully applied to opportunity"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or opportunity id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as consultant"
// @Failure 404 {object} utilities.ErrorResponse "Opportunity not found"
// @Failure 409 {object} utilities.ErrorResponse "Already holding an active application, or opportunity not accepting"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /opportunities/{id}/applications [post]
func (ac *ApplicationController) SubmitApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	opportunityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid opportunity id: %s", err.Error()),
		})
		return
	}

	// Cover note is optional; an empty body is fine
	var info submitInfo
	_ = c.ShouldBindJSON(&info)

	application, err := ac.DB.SubmitApplication(user.ID, uint(opportunityID), info.CoverNote)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Opportunity not found"})
		case errors.Is(err, model.ErrDuplicateApplication), errors.Is(err, model.ErrInvalidTransition):
			c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create application: %s", err.Error()),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, application)
}

type transitionInfo struct {
	Action string `json:"action" binding:"required"`
}

// TransitionApplication moves an application along its lifecycle. The actor
// is derived from the caller's role; consultants may only act on their own
// applications.
// @Summary Transition an application
// @Description Consultants accept or decline their own pending applications; admins additionally review and reject
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of the application"
// @Param Transition body transitionInfo true "Action: accept, review, decline or reject"
// @Success 200 {object} model.Application "Application after the transition"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, application id or action"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Acting on another consultant's application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Transition not allowed from the current state"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/transition [post]
func (ac *ApplicationController) TransitionApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid application id: %s", err.Error()),
		})
		return
	}

	var info transitionInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	actor := model.ActorConsultant
	if user.Role == model.RoleAdmin {
		actor = model.ActorAdmin
	}

	if actor == model.ActorConsultant {
		var existing model.Application
		if err := ac.DB.Where("id = ?", applicationID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve application: %s", err.Error()),
			})
			return
		}
		if existing.ConsultantID != user.ID {
			c.JSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "Consultants can only act on their own applications",
			})
			return
		}
	}

	application, err := ac.DB.TransitionApplication(uint(applicationID), info.Action, actor)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
		case errors.Is(err, model.ErrInvalidTransition):
			c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to transition application: %s", err.Error()),
			})
		}
		return
	}

	c.JSON(http.StatusOK, application)
}

// GetApplications lists applications. Consultants get their own; admins get
// everything, optionally narrowed to one opportunity.
// @Summary List applications
// @Description Consultants see their own applications; admins see all and may filter by opportunity_id
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param opportunity_id query integer false "Narrow to one opportunity (admin only)"
// @Param status query string false "Status field, must exactly match to get result"
// @Success 200 {array} model.Application "Return matching application(s)"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [get]
func (ac *ApplicationController) GetApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	result := ac.DB.Order("applied_at")

	if user.Role == model.RoleAdmin {
		if rawOpportunity := c.Query("opportunity_id"); rawOpportunity != "" {
			result = result.Where("opportunity_id = ?", rawOpportunity)
		}
	} else {
		result = result.Where("consultant_id = ?", user.ID)
	}

	if rawStatus := c.Query("status"); rawStatus != "" {
		result = result.Where("status = ?", rawStatus)
	}

	var applications []model.Application
	if err := result.Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, applications)
}
