package model

import (
	"time"

	"github.com/google/uuid"
)

// Availability status constants
var (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// Skill category constants
var (
	SkillCategoryTechnical = "technical"
	SkillCategorySoft      = "soft"
	SkillCategoryOther     = "other"
)

// Skill proficiency constants
var (
	ProficiencyBeginner     = "beginner"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
	ProficiencyExpert       = "expert"
)

// Skill source constants
var (
	SkillSourceManual         = "manual"
	SkillSourceResume         = "resume"
	SkillSourceResumeVerified = "resume_verified"
)

// EditableConsultantInfo is part of consultant profile that can be edited
type EditableConsultantInfo struct {
	Name            string  `gorm:"type:text" json:"name"`
	Department      string  `gorm:"type:text" json:"department"`
	Location        *string `gorm:"type:text" json:"location"`
	PrimarySkill    string  `gorm:"type:text" json:"primary_skill"`
	ExperienceYears uint    `json:"experience_years"`
}

// Consultant is gorm model for store bench consultant profile in DB
type Consultant struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"user"`

	EditableConsultantInfo

	AvailabilityStatus string `gorm:"type:text;default:'available'" json:"availability_status"`
	ResumeUploaded     bool   `gorm:"type:boolean;default:false" json:"resume_uploaded"`

	// SkillVersion increases by one on every skill mutation. Consumers compare
	// it against their last observed version to detect stale skill reads.
	SkillVersion int64 `gorm:"not null;default:0;->" json:"skill_version"`

	Skills []Skill `gorm:"foreignKey:ConsultantID;constraint:OnDelete:CASCADE" json:"skills"`
}

// Skill is gorm model for a single consultant skill.
// Skills belong to exactly one consultant and are replaced wholesale on
// profile edit or resume ingestion.
type Skill struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	ConsultantID uuid.UUID `gorm:"type:uuid;not null;index" json:"consultant_id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	Category    string `gorm:"type:text;default:'technical'" json:"category"`
	Proficiency string `gorm:"type:text;default:'intermediate'" json:"proficiency"`
	Years       uint   `json:"years"`
	Source      string `gorm:"type:text;default:'manual'" json:"source"`
	Confidence  uint   `gorm:"check:confidence <= 100" json:"confidence"`
}

// SkillNames returns just the names of the consultant skills.
func (c *Consultant) SkillNames() []string {
	names := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		names = append(names, s.Name)
	}
	return names
}

// SyncState records, per (consultant, consumer) pair, the skill version a
// read path last observed and when.
type SyncState struct {
	ID           uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	ConsultantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sync_consultant_consumer" json:"consultant_id"`
	Consumer     string    `gorm:"type:text;not null;uniqueIndex:idx_sync_consultant_consumer" json:"consumer"`

	ObservedVersion int64     `gorm:"not null" json:"observed_version"`
	UpdatedAt       time.Time `gorm:"type:timestamp" json:"updated_at"`
}
