package model

import (
	"time"

	"github.com/lib/pq"
)

// Opportunity status constants
var (
	OpportunityStatusOpen       = "open"
	OpportunityStatusInProgress = "in_progress"
	OpportunityStatusFilled     = "filled"
	OpportunityStatusCancelled  = "cancelled"
	OpportunityStatusOnHold     = "on_hold"
)

// EditableOpportunityInfo is part of opportunity that is set at creation.
// Required skills are immutable afterwards; an edit upstream is treated as a
// new opportunity revision.
type EditableOpportunityInfo struct {
	Title           string         `gorm:"type:text" json:"title"`
	ClientName      string         `gorm:"type:text" json:"client_name"`
	Desc            string         `gorm:"type:text" json:"desc"`
	RequiredSkills  pq.StringArray `gorm:"type:text[]" json:"required_skills"`
	ExperienceLevel string         `gorm:"type:text" json:"experience_level"`
	Location        string         `gorm:"type:text" json:"location"`
	StartDate       *time.Time     `gorm:"type:timestamp" json:"start_date,omitempty"`

	// FillTarget is how many accepted applications close the opportunity.
	// Default 1 (single-fill).
	FillTarget uint `gorm:"default:1;check:fill_target >= 1" json:"fill_target"`
}

// Opportunity is gorm model for store client opportunity data in DB
type Opportunity struct {
	ID uint `gorm:"primaryKey;autoIncrement;->" json:"id"`

	EditableOpportunityInfo

	Status        string    `gorm:"type:text;default:'open'" json:"status"`
	AcceptedCount uint      `gorm:"default:0" json:"accepted_count"`
	CreatedAt     time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"created_at"`

	Applications []Application `gorm:"foreignKey:OpportunityID;constraint:OnDelete:CASCADE" json:"applications"`
}

// MultiFill reports whether the opportunity allows more than one accepted
// application.
func (o *Opportunity) MultiFill() bool {
	return o.FillTarget > 1
}

// AcceptsApplications reports whether new applications may be submitted.
// An in-progress opportunity keeps accepting only under a multi-fill target.
func (o *Opportunity) AcceptsApplications() bool {
	switch o.Status {
	case OpportunityStatusOpen:
		return true
	case OpportunityStatusInProgress:
		return o.MultiFill()
	default:
		return false
	}
}

// OpportunityResponse is the response struct for opportunity with
// per-consultant annotations
type OpportunityResponse struct {
	ID            uint      `json:"id"`
	Status        string    `json:"status"`
	AcceptedCount uint      `json:"accepted_count"`
	CreatedAt     time.Time `json:"created_at"`
	EditableOpportunityInfo

	ConsultantApplied bool `json:"consultant_applied"`

	// MatchScore is present only when the listing was requested for a
	// specific consultant.
	MatchScore *MatchSnapshot `json:"match_score,omitempty"`
}

// ToOpportunityResponse converts Opportunity to OpportunityResponse for the
// given consultant, without the score annotation.
func (o *Opportunity) ToOpportunityResponse(consultant *Consultant) OpportunityResponse {
	resp := OpportunityResponse{
		ID:                      o.ID,
		Status:                  o.Status,
		AcceptedCount:           o.AcceptedCount,
		CreatedAt:               o.CreatedAt,
		EditableOpportunityInfo: o.EditableOpportunityInfo,
	}

	if consultant != nil {
		for _, application := range o.Applications {
			if application.ConsultantID == consultant.UserID {
				resp.ConsultantApplied = true
				break
			}
		}
	}

	return resp
}
