package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Application status constants
var (
	// ApplicationStatusPending indicates that the application awaits a decision
	ApplicationStatusPending = "pending"
	// ApplicationStatusUnderReview indicates that an admin is reviewing the application
	ApplicationStatusUnderReview = "under_review"
	// ApplicationStatusAccepted indicates that the application has been accepted
	ApplicationStatusAccepted = "accepted"
	// ApplicationStatusDeclined indicates that the consultant (or the system,
	// when another application filled the opportunity) withdrew the application
	ApplicationStatusDeclined = "declined"
	// ApplicationStatusRejected indicates that an admin rejected the application
	ApplicationStatusRejected = "rejected"
)

// Transition action constants
var (
	ActionAccept  = "accept"
	ActionReview  = "review"
	ActionDecline = "decline"
	ActionReject  = "reject"
)

// Transition actor constants
var (
	ActorConsultant = "consultant"
	ActorAdmin      = "admin"
	ActorSystem     = "system"
)

// MatchSnapshot is the match score stamped onto an application. SkillVersion
// records which consultant skill version produced it, so later reads can tell
// whether it is stale.
type MatchSnapshot struct {
	Percentage   uint           `json:"percentage"`
	Matched      pq.StringArray `gorm:"type:text[]" json:"matched"`
	Gaps         pq.StringArray `gorm:"type:text[]" json:"gaps"`
	SkillVersion int64          `json:"skill_version"`
}

// Application represents a consultant application to an opportunity
type Application struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppliedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"applied_at"`
	Status    string    `gorm:"type:text;default:'pending'" json:"status"`

	// ConsultantID references Consultant.UserID (uuid)
	ConsultantID uuid.UUID  `gorm:"type:uuid;not null;index:idx_app_pair" json:"consultant_id"`
	Consultant   Consultant `gorm:"foreignKey:ConsultantID;references:UserID" json:"-"`

	// OpportunityID references Opportunity.ID
	OpportunityID uint        `gorm:"not null;index:idx_app_pair" json:"opportunity_id"`
	Opportunity   Opportunity `gorm:"foreignKey:OpportunityID;references:ID" json:"-"`

	CoverNote string `gorm:"type:text" json:"cover_note"`

	// DecidedBy records which actor moved the application into a terminal
	// state: consultant, admin, or system (single-fill cascade).
	DecidedBy *string    `gorm:"type:text" json:"decided_by,omitempty"`
	DecidedAt *time.Time `gorm:"type:timestamp" json:"decided_at,omitempty"`

	MatchSnapshot `gorm:"embedded;embeddedPrefix:match_" json:"match"`
}

// Active reports whether the application still awaits a decision.
func (a *Application) Active() bool {
	return a.Status == ApplicationStatusPending || a.Status == ApplicationStatusUnderReview
}

// Terminal reports whether the application reached a final state.
func (a *Application) Terminal() bool {
	switch a.Status {
	case ApplicationStatusAccepted, ApplicationStatusDeclined, ApplicationStatusRejected:
		return true
	}
	return false
}

// Transition moves the application along the lifecycle for the given action
// and actor. Consultants may accept or decline their own pending application;
// admins additionally move pending applications under review and accept or
// reject reviewed ones. The system actor only declines (single-fill cascade).
// Any transition out of a terminal state fails with ErrInvalidTransition.
func (a *Application) Transition(action string, actor string) error {
	if a.Terminal() {
		return fmt.Errorf("%w: application %d is already %s", ErrInvalidTransition, a.ID, a.Status)
	}

	next, err := a.nextStatus(action, actor)
	if err != nil {
		return err
	}

	a.Status = next
	if a.Terminal() {
		now := time.Now()
		a.DecidedBy = &actor
		a.DecidedAt = &now
	}
	return nil
}

func (a *Application) nextStatus(action string, actor string) (string, error) {
	switch actor {
	case ActorConsultant:
		if a.Status != ApplicationStatusPending {
			return "", fmt.Errorf("%w: consultant cannot %s a %s application", ErrInvalidTransition, action, a.Status)
		}
		switch action {
		case ActionAccept:
			return ApplicationStatusAccepted, nil
		case ActionDecline:
			return ApplicationStatusDeclined, nil
		}

	case ActorAdmin:
		switch action {
		case ActionReview:
			if a.Status == ApplicationStatusPending {
				return ApplicationStatusUnderReview, nil
			}
		case ActionAccept:
			return ApplicationStatusAccepted, nil
		case ActionReject:
			return ApplicationStatusRejected, nil
		}

	case ActorSystem:
		if action == ActionDecline {
			return ApplicationStatusDeclined, nil
		}
	}

	return "", fmt.Errorf("%w: %s cannot %s a %s application", ErrInvalidTransition, actor, action, a.Status)
}
