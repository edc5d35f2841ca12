// Package consultant provides HTTP handlers for bench consultant profiles
// and their skill sets.
package consultant

import (
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/model"
	"benchtrack-backend/internal/skillsync"
	"benchtrack-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsultantController handles consultant profile related endpoints
type ConsultantController struct {
	DB   *database.DBinstanceStruct
	Sync *skillsync.Coordinator
}

// NewConsultantController creates a new instance of ConsultantController
func NewConsultantController(db *database.DBinstanceStruct, sync *skillsync.Coordinator) *ConsultantController {
	return &ConsultantController{
		DB:   db,
		Sync: sync,
	}
}

// resolveConsultantID parses the path id and enforces that consultants only
// reach their own profile. Admins may reach any profile.
func resolveConsultantID(c *gin.Context, user model.User) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid consultant id: %s", err.Error()),
		})
		return uuid.Nil, false
	}

	if user.Role != model.RoleAdmin && user.ID != id {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "Consultants can only access their own profile",
		})
		return uuid.Nil, false
	}

	return id, true
}

// GetConsultants fetches consultant profiles matching the query.
// @Summary List consultant profiles based on query
// @Description Only admin can access this endpoint
// @Tags Consultant
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param availability query string false "Availability status, must exactly match to get result"
// @Param skill query string false "Search from skill names with substring matching and case insensitive"
// @Param search query string false "Search from consultant name with substring matching and case insensitive"
// @Success 200 {array} model.Consultant "Return matching consultant(s)"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /consultants [get]
func (cc *ConsultantController) GetConsultants(c *gin.Context) {
	rawAvailability := c.Query("availability")
	rawSkill := c.Query("skill")
	rawSearch := c.Query("search")

	result := cc.DB.Preload("User").Preload("Skills")

	if rawAvailability != "" {
		result = result.Where("availability_status = ?", rawAvailability)
	}

	if rawSearch != "" {
		result = result.Where("name ILIKE ?", "%"+rawSearch+"%")
	}

	if rawSkill != "" {
		result = result.
			Joins("JOIN skills ON skills.consultant_id = consultants.user_id").
			Where("skills.name ILIKE ?", "%"+rawSkill+"%").
			Distinct()
	}

	var consultants []model.Consultant
	if err := result.Find(&consultants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch consultants: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, consultants)
}

type createConsultantInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`

	model.EditableConsultantInfo
}

// CreateConsultant provisions a consultant account with its profile.
// @Summary Create a consultant account and profile
// @Description Only admin can access this endpoint. Password must be at least 8 characters long
// @Tags Consultant
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Consultant body createConsultantInfo true "Account and profile information"
// @Success 201 {object} model.Consultant "Successfully created consultant"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or username taken"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /consultants [post]
func (cc *ConsultantController) CreateConsultant(c *gin.Context) {
	var info createConsultantInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	var existing model.User
	err := cc.DB.Where("username = ?", info.Username).First(&existing).Error
	switch {
	case err == nil:
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	consultant := model.Consultant{
		User: model.User{
			Username: info.Username,
			Password: hashedPassword,
			Role:     model.RoleConsultant,
		},
		EditableConsultantInfo: info.EditableConsultantInfo,
	}
	if info.Email != "" {
		consultant.User.Email = &info.Email
	}

	if err := cc.DB.Create(&consultant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create consultant: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, consultant)
}

// GetConsultantByID fetches a single consultant profile.
// @Summary Get consultant profile by ID
// @Description Admin can access any profile, consultant only their own
// @Tags Consultant
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of desired consultant"
// @Success 200 {object} model.Consultant "Return the consultant with the specified ID"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or consultant id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Accessing another consultant's profile"
// @Failure 404 {object} utilities.ErrorResponse "Consultant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /consultants/{id} [get]
func (cc *ConsultantController) GetConsultantByID(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, ok := resolveConsultantID(c, user)
	if !ok {
		return
	}

	consultant, err := cc.DB.GetConsultant(id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve consultant: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, consultant)
}

// EditConsultantProfile applies non-empty fields of the request body onto the
// consultant profile.
// @Summary Edit consultant profile
// @Description Admin can edit any profile, consultant only their own. Empty fields keep their value
// @Tags Consultant
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Profile body model.EditableConsultantInfo true "Fields to update"
// @Param id path string true "ID of desired consultant"
// @Success 200 {object} model.Consultant "Successfully edited profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, consultant id or request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Editing another consultant's profile"
// @Failure 404 {object} utilities.ErrorResponse "Consultant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /consultants/{id} [patch]
func (cc *ConsultantController) EditConsultantProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, ok := resolveConsultantID(c, user)
	if !ok {
		return
	}

	var edit model.EditableConsultantInfo
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	consultant, err := cc.DB.GetConsultant(id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve consultant: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&consultant.EditableConsultantInfo, &edit)

	if err := cc.DB.Save(consultant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update consultant: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, consultant)
}

type availabilityInfo struct {
	AvailabilityStatus string `json:"availability_status" binding:"required"`
}

// SetAvailability updates the consultant availability status.
// @Summary Set consultant availability status
// @Description Status must be one of available, busy, unavailable
// @Tags Consultant
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Availability body availabilityInfo true "New availability status"
// @Param id path string true "ID of desired consultant"
// @Success 200 {object} model.Consultant "Successfully updated availability"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, consultant id or status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Editing another consultant's profile"
// @Failure 404 {object} utilities.ErrorResponse "Consultant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /consultants/{id}/availability [put]
func (cc *ConsultantController) SetAvailability(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, ok := resolveConsultantID(c, user)
	if !ok {
		return
	}

	var info availabilityInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if !utilities.Contains([]string{
		model.AvailabilityAvailable,
		model.AvailabilityBusy,
		model.AvailabilityUnavailable,
	}, info.AvailabilityStatus) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unknown availability status: %s", info.AvailabilityStatus),
		})
		return
	}

	consultant, err := cc.DB.GetConsultant(id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve consultant: %s", err.Error()),
		})
		return
	}

	consultant.AvailabilityStatus = info.AvailabilityStatus
	if err := cc.DB.Save(consultant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update consultant: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, consultant)
}
