package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"benchtrack-backend/internal/model"
)

// ReplaceSkills swaps the consultant's entire skill set and bumps the skill
// version, in one transaction. Both manual profile edits and resume ingestion
// go through here; the returned version is what downstream caches key on.
func (d *DBinstanceStruct) ReplaceSkills(consultantID uuid.UUID, skills []model.Skill) (int64, error) {
	var newVersion int64

	err := d.Transaction(func(tx *gorm.DB) error {
		var consultant model.Consultant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", consultantID).First(&consultant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: consultant %s", model.ErrNotFound, consultantID)
			}
			return err
		}

		if err := tx.Where("consultant_id = ?", consultantID).Delete(&model.Skill{}).Error; err != nil {
			return err
		}

		for i := range skills {
			skills[i].ID = 0
			skills[i].ConsultantID = consultantID
		}
		if len(skills) > 0 {
			if err := tx.Create(&skills).Error; err != nil {
				return err
			}
		}

		newVersion = consultant.SkillVersion + 1
		return tx.Model(&model.Consultant{}).
			Where("user_id = ?", consultantID).
			Update("skill_version", newVersion).Error
	})

	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

// GetConsultant loads a consultant with skills, or model.ErrNotFound.
func (d *DBinstanceStruct) GetConsultant(consultantID uuid.UUID) (*model.Consultant, error) {
	var consultant model.Consultant
	if err := d.Preload("Skills").Preload("User").
		Where("user_id = ?", consultantID).First(&consultant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: consultant %s", model.ErrNotFound, consultantID)
		}
		return nil, err
	}
	return &consultant, nil
}
