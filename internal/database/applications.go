package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"benchtrack-backend/internal/matching"
	"benchtrack-backend/internal/model"
)

// SubmitApplication creates a pending application for the (consultant,
// opportunity) pair inside one transaction, with the opportunity row locked.
// The match snapshot is stamped from the consultant's current skills. Fails
// with model.ErrDuplicateApplication when an active application for the pair
// already exists; the partial unique index catches submitters racing past the
// in-transaction check.
func (d *DBinstanceStruct) SubmitApplication(consultantID uuid.UUID, opportunityID uint, coverNote string) (*model.Application, error) {
	var created model.Application

	err := d.Transaction(func(tx *gorm.DB) error {
		var consultant model.Consultant
		if err := tx.Preload("Skills").Where("user_id = ?", consultantID).First(&consultant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: consultant %s", model.ErrNotFound, consultantID)
			}
			return err
		}

		var opportunity model.Opportunity
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", opportunityID).First(&opportunity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: opportunity %d", model.ErrNotFound, opportunityID)
			}
			return err
		}

		if !opportunity.AcceptsApplications() {
			return fmt.Errorf("%w: opportunity %d is %s", model.ErrInvalidTransition, opportunityID, opportunity.Status)
		}

		var active int64
		if err := tx.Model(&model.Application{}).
			Where("consultant_id = ? AND opportunity_id = ? AND status IN ?",
				consultantID, opportunityID, []string{model.ApplicationStatusPending, model.ApplicationStatusUnderReview}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: consultant %s already applied to opportunity %d",
				model.ErrDuplicateApplication, consultantID, opportunityID)
		}

		score := matching.Score(consultant.SkillNames(), opportunity.RequiredSkills)
		created = model.Application{
			ConsultantID:  consultantID,
			OpportunityID: opportunityID,
			Status:        model.ApplicationStatusPending,
			CoverNote:     coverNote,
			MatchSnapshot: model.MatchSnapshot{
				Percentage:   score.Percentage,
				Matched:      score.Matched,
				Gaps:         score.Gaps,
				SkillVersion: consultant.SkillVersion,
			},
		}
		return tx.Create(&created).Error
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique violation: lost the submission race
				return nil, fmt.Errorf("%w: consultant %s already applied to opportunity %d",
					model.ErrDuplicateApplication, consultantID, opportunityID)
			case "23503": // foreign key violation
				return nil, fmt.Errorf("%w: %s", model.ErrNotFound, pgErr.Detail)
			}
		}
		return nil, err
	}
	return &created, nil
}

// TransitionApplication applies a lifecycle action to an application inside
// one transaction. Accepting locks the opportunity row, bumps its accepted
// count, marks the consultant busy, and under the fill target declines every
// other active application and flips the opportunity to filled. The match
// snapshot is re-stamped only when the consultant's skill version advanced
// since it was taken.
func (d *DBinstanceStruct) TransitionApplication(applicationID uint, action string, actor string) (*model.Application, error) {
	var result model.Application

	err := d.Transaction(func(tx *gorm.DB) error {
		var application model.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", applicationID).First(&application).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: application %d", model.ErrNotFound, applicationID)
			}
			return err
		}

		var opportunity model.Opportunity
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", application.OpportunityID).First(&opportunity).Error; err != nil {
			return err
		}

		if err := application.Transition(action, actor); err != nil {
			return err
		}

		var consultant model.Consultant
		if err := tx.Preload("Skills").Where("user_id = ?", application.ConsultantID).First(&consultant).Error; err != nil {
			return err
		}
		restampIfStale(&application, &consultant, &opportunity)

		if err := tx.Save(&application).Error; err != nil {
			return err
		}

		if application.Status == model.ApplicationStatusAccepted {
			if err := acceptSideEffects(tx, &application, &opportunity, &consultant); err != nil {
				return err
			}
		}

		result = application
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// restampIfStale refreshes the application match snapshot when the consultant
// skills changed since it was stamped. Reads never refresh snapshots; only
// submission and transitions do.
func restampIfStale(application *model.Application, consultant *model.Consultant, opportunity *model.Opportunity) {
	if consultant.SkillVersion <= application.MatchSnapshot.SkillVersion {
		return
	}
	score := matching.Score(consultant.SkillNames(), opportunity.RequiredSkills)
	application.MatchSnapshot = model.MatchSnapshot{
		Percentage:   score.Percentage,
		Matched:      score.Matched,
		Gaps:         score.Gaps,
		SkillVersion: consultant.SkillVersion,
	}
}

func acceptSideEffects(tx *gorm.DB, application *model.Application, opportunity *model.Opportunity, consultant *model.Consultant) error {
	opportunity.AcceptedCount++
	if opportunity.AcceptedCount >= opportunity.FillTarget {
		opportunity.Status = model.OpportunityStatusFilled
	} else {
		opportunity.Status = model.OpportunityStatusInProgress
	}

	if err := tx.Model(&model.Consultant{}).
		Where("user_id = ?", consultant.UserID).
		Update("availability_status", model.AvailabilityBusy).Error; err != nil {
		return err
	}

	if opportunity.Status == model.OpportunityStatusFilled {
		if err := declineRemaining(tx, opportunity.ID, application.ID); err != nil {
			return err
		}
	}

	return tx.Save(opportunity).Error
}

// declineRemaining closes out every other active application once the
// opportunity is filled, attributed to the system actor.
func declineRemaining(tx *gorm.DB, opportunityID uint, acceptedID uint) error {
	var siblings []model.Application
	if err := tx.Where("opportunity_id = ? AND id <> ? AND status IN ?",
		opportunityID, acceptedID,
		[]string{model.ApplicationStatusPending, model.ApplicationStatusUnderReview}).
		Find(&siblings).Error; err != nil {
		return err
	}

	now := time.Now()
	for i := range siblings {
		siblings[i].Status = model.ApplicationStatusDeclined
		siblings[i].DecidedBy = &model.ActorSystem
		siblings[i].DecidedAt = &now
		if err := tx.Save(&siblings[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
