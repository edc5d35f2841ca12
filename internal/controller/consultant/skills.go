package consultant

import (
	"benchtrack-backend/internal/model"
	"benchtrack-backend/internal/utilities"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type skillEntry struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Proficiency string `json:"proficiency"`
	Years       uint   `json:"years"`
	Confidence  uint   `json:"confidence"`
}

type replaceSkillsInfo struct {
	Skills []skillEntry `json:"skills" binding:"required"`
}

type skillVersionResponse struct {
	ConsultantID string        `json:"consultant_id"`
	SkillVersion int64         `json:"skill_version"`
	Skills       []model.Skill `json:"skills"`
}

func toModelSkills(entries []skillEntry, source string) []model.Skill {
	skills := make([]model.Skill, 0, len(entries))
	for _, e := range entries {
		s := model.Skill{
			Name:        e.Name,
			Category:    e.Category,
			Proficiency: e.Proficiency,
			Years:       e.Years,
			Source:      source,
			Confidence:  e.Confidence,
		}
		if s.Category == "" {
			s.Category = model.SkillCategoryTechnical
		}
		if s.Proficiency == "" {
			s.Proficiency = model.ProficiencyIntermediate
		}
		skills = append(skills, s)
	}
	return skills
}

// ReplaceSkills swaps the consultant skill set for the one in the request
// body and advances the skill version.
// @Summary Replace consultant skill set
// @Description The whole skill set is replaced in one step. The response carries the new skill version
// @Tags Consultant
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Skills body replaceSkillsInfo true "Full replacement skill set"
// @Param id path string true "ID of desired consultant"
// @Success 200 {object} skillVersionResponse "New skill set and version"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, consultant id or request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Editing another consultant's skills"
// @Failure 404 {object} utilities.ErrorResponse "Consultant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /consultants/{id}/skills [put]
func (cc *ConsultantController) ReplaceSkills(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, ok := resolveConsultantID(c, user)
	if !ok {
		return
	}

	var info replaceSkillsInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	skills := toModelSkills(info.Skills, model.SkillSourceManual)

	version, err := cc.Sync.UpdateSkills(c.Request.Context(), id, skills)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to replace skills: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, skillVersionResponse{
		ConsultantID: id.String(),
		SkillVersion: version,
		Skills:       skills,
	})
}

// IngestResumeSkills records skills extracted from an uploaded resume. The
// extraction itself happens upstream; this endpoint receives the result as an
// opaque list and replaces the consultant skill set with it.
// @Summary Ingest resume-extracted skills
// @Description Replaces the whole skill set with resume-sourced entries and marks the resume as uploaded
// @Tags Consultant
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Skills body replaceSkillsInfo true "Skills extracted from the resume"
// @Param id path string true "ID of desired consultant"
// @Success 200 {object} skillVersionResponse "New skill set and version"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, consultant id or request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Editing another consultant's skills"
// @Failure 404 {object} utilities.ErrorResponse "Consultant not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /consultants/{id}/resume-skills [post]
func (cc *ConsultantController) IngestResumeSkills(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, ok := resolveConsultantID(c, user)
	if !ok {
		return
	}

	var info replaceSkillsInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	skills := toModelSkills(info.Skills, model.SkillSourceResume)

	version, err := cc.Sync.UpdateSkills(c.Request.Context(), id, skills)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to ingest resume skills: %s", err.Error()),
		})
		return
	}

	if err := cc.DB.Model(&model.Consultant{}).
		Where("user_id = ?", id).
		Update("resume_uploaded", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to mark resume uploaded: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, skillVersionResponse{
		ConsultantID: id.String(),
		SkillVersion: version,
		Skills:       skills,
	})
}

type syncedSkillsResponse struct {
	ConsultantID string        `json:"consultant_id"`
	Consumer     string        `json:"consumer"`
	SkillVersion int64         `json:"skill_version"`
	Skills       []model.Skill `json:"skills"`
	Synced       bool          `json:"synced"`
}

// GetSyncedSkills reads the consultant skill set on behalf of a named
// consumer. When fresh data is unavailable the last cached snapshot is
// returned with synced set to false.
// @Summary Read consultant skills for a consumer
// @Description The consumer query names who is reading; the coordinator records the observed version per consumer
// @Tags Consultant
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of desired consultant"
// @Param consumer query string true "Name of the reading consumer"
// @Success 200 {object} syncedSkillsResponse "Skill snapshot with sync marker"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, consultant id or missing consumer"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Reading another consultant's skills"
// @Failure 404 {object} utilities.ErrorResponse "Consultant not found"
// @Router /consultants/{id}/skills/synced [get]
func (cc *ConsultantController) GetSyncedSkills(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, ok := resolveConsultantID(c, user)
	if !ok {
		return
	}

	consumer := c.Query("consumer")
	if consumer == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Consumer query parameter must be provided",
		})
		return
	}

	snapshot, synced, err := cc.Sync.ReadSynced(c.Request.Context(), id, consumer)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to read skills: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, syncedSkillsResponse{
		ConsultantID: id.String(),
		Consumer:     consumer,
		SkillVersion: snapshot.Version,
		Skills:       snapshot.Skills,
		Synced:       synced,
	})
}
