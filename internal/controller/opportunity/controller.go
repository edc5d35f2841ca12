// Package opportunity provides HTTP handlers for client opportunity listings
// and match scoring.
package opportunity

import (
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/matching"
	"benchtrack-backend/internal/model"
	"benchtrack-backend/internal/skillsync"
	"benchtrack-backend/internal/utilities"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpportunityController handles opportunity related endpoints
type OpportunityController struct {
	DB   *database.DBinstanceStruct
	Sync *skillsync.Coordinator
}

// NewOpportunityController creates a new instance of OpportunityController
func NewOpportunityController(db *database.DBinstanceStruct, sync *skillsync.Coordinator) *OpportunityController {
	return &OpportunityController{
		DB:   db,
		Sync: sync,
	}
}

// CreateOpportunity handles the creation of a new opportunity by an admin.
// @Summary Create opportunity based on given json structure
// @Description Only admin can access this endpoint. Fill target defaults to 1
// @Tags Opportunity
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Opportunity body model.EditableOpportunityInfo true "Input opportunity information"
// @Success 201 {object} model.Opportunity "Successfully created opportunity"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or opportunity struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /opportunities [post]
func (oc *OpportunityController) CreateOpportunity(c *gin.Context) {
	opportunity := model.Opportunity{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&opportunity.EditableOpportunityInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if opportunity.FillTarget == 0 {
		opportunity.FillTarget = 1
	}

	if err := oc.DB.Create(&opportunity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to create opportunity: ", err),
		})
		return
	}

	c.JSON(http.StatusCreated, opportunity)
}

// annotationTarget decides which consultant the listing should be annotated
// for. Consultants always get their own annotation; admins may request one
// through the consultant_id query.
func (oc *OpportunityController) annotationTarget(c *gin.Context, user model.User) (*model.Consultant, error) {
	var id uuid.UUID

	switch user.Role {
	case model.RoleConsultant:
		id = user.ID
	case model.RoleAdmin:
		raw := c.Query("consultant_id")
		if raw == "" {
			return nil, nil
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid consultant_id: %w", err)
		}
		id = parsed
	default:
		return nil, nil
	}

	consultant, err := oc.DB.GetConsultant(id)
	if err != nil {
		return nil, err
	}
	return consultant, nil
}

// GetOpportunities fetches opportunities matching the query, optionally
// annotated with match scores for a consultant.
// @Summary Get opportunities based on query
// @Description Consultants get their own match score annotation; admins may request one via consultant_id
// @Tags Opportunity
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param status query string false "Status field, must exactly match to get result"
// @Param search query string false "Search from title, client name and required skills with substring matching and case insensitive"
// @Param sort query string false "Sort key: score, title, start_date or status"
// @Param desc query boolean false "Sort in descending order if true"
// @Param page query integer false "1-based page number"
// @Param page_size query integer false "Page size, default 20"
// @Param consultant_id query string false "Annotate scores for this consultant (admin only)"
// @Success 200 {array} model.OpportunityResponse "Return matching opportunities"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or query"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /opportunities [get]
func (oc *OpportunityController) GetOpportunities(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	consultant, err := oc.annotationTarget(c, user)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	rawStatus := c.Query("status")
	rawSearch := c.Query("search")

	result := oc.DB.Preload("Applications")

	if rawStatus != "" {
		result = result.Where("status = ?", rawStatus)
	}

	// Search narrows again in memory over required skills; the ILIKE here
	// keeps the scan small.
	if rawSearch != "" {
		pattern := "%" + rawSearch + "%"
		result = result.Where(
			"title ILIKE ? OR client_name ILIKE ? OR array_to_string(required_skills, ' ') ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var rawOpportunities []model.Opportunity
	if err := result.Find(&rawOpportunities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch opportunities: ", err.Error()),
		})
		return
	}

	views := make([]model.OpportunityResponse, 0, len(rawOpportunities))
	for i := range rawOpportunities {
		view := rawOpportunities[i].ToOpportunityResponse(consultant)
		if consultant != nil {
			snapshot, err := oc.Sync.ComputeMatch(c.Request.Context(), consultant.UserID, rawOpportunities[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: fmt.Sprint("Failed to score opportunity: ", err.Error()),
				})
				return
			}
			view.MatchScore = snapshot
		}
		views = append(views, view)
	}

	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	paged, total := matching.Rank(views, matching.Filter{
		Status:   rawStatus,
		Search:   rawSearch,
		SortBy:   c.Query("sort"),
		Desc:     strings.ToLower(c.Query("desc")) == "true",
		Page:     page,
		PageSize: pageSize,
	})

	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, paged)
}

// GetOpportunityByID fetches an opportunity by its ID.
// @Summary Get opportunity by ID
// @Description Retrieve a specific opportunity using its unique ID
// @Tags Opportunity
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired opportunity"
// @Success 200 {object} model.OpportunityResponse "Return the opportunity with the specified ID"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Opportunity not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /opportunities/{id} [get]
func (oc *OpportunityController) GetOpportunityByID(c *gin.Context) {
	id := c.Param("id")

	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	opportunity := model.Opportunity{}
	if err := oc.DB.
		Preload("Applications").
		Where("id = ?", id).
		First(&opportunity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Opportunity not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve opportunity: %s", err.Error()),
		})
		return
	}

	var consultant *model.Consultant
	if user.Role == model.RoleConsultant {
		consultant, err = oc.DB.GetConsultant(user.ID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve consultant: %s", err.Error()),
			})
			return
		}
	}

	c.JSON(http.StatusOK, opportunity.ToOpportunityResponse(consultant))
}

// GetMatch computes the match score between a consultant and an opportunity.
// @Summary Compute a consultant-opportunity match score
// @Description Consultants score themselves; admins must pass consultant_id
// @Tags Opportunity
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired opportunity"
// @Param consultant_id query string false "Consultant to score (admin only)"
// @Success 200 {object} model.MatchSnapshot "Match percentage with matched and missing skills"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, opportunity id or consultant_id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Opportunity or consultant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /opportunities/{id}/match [get]
func (oc *OpportunityController) GetMatch(c *gin.Context) {
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

	consultantID := user.ID
	if user.Role == model.RoleAdmin {
		raw := c.Query("consultant_id")
		if raw == "" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "Consultant_id query parameter must be provided",
			})
			return
		}
		consultantID, err = uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: fmt.Sprintf("Invalid consultant_id: %s", err.Error()),
			})
			return
		}
	}

	snapshot, err := oc.Sync.ComputeMatch(c.Request.Context(), consultantID, uint(opportunityID))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Opportunity or consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to compute match: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
