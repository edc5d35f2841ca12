// Package skillsync keeps every read path on the same skill snapshot.
//
// Consultant skills change through profile edits and resume ingestion; match
// scores, reports and dashboards all derive from them. The coordinator stamps
// each read with the consultant's skill version, caches the last good
// snapshot, and invalidates version-keyed match results on every write, so a
// consumer either sees the current version (synced) or knowingly serves the
// last synced one. A silently stale mix is not possible.
package skillsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"benchtrack-backend/internal/cache"
	"benchtrack-backend/internal/database"
	"benchtrack-backend/internal/matching"
	"benchtrack-backend/internal/model"
)

// Snapshot is a version-tagged copy of a consultant's skills.
type Snapshot struct {
	ConsultantID uuid.UUID     `json:"consultant_id"`
	Version      int64         `json:"version"`
	Skills       []model.Skill `json:"skills"`
	TakenAt      time.Time     `json:"taken_at"`
}

// Coordinator mediates between the authoritative store and the cache.
type Coordinator struct {
	DB    *database.DBinstanceStruct
	Cache *cache.Redis
}

// NewCoordinator creates a Coordinator over the given store and cache.
func NewCoordinator(db *database.DBinstanceStruct, redis *cache.Redis) *Coordinator {
	return &Coordinator{DB: db, Cache: redis}
}

func snapshotKey(consultantID uuid.UUID) string {
	return "skills:snapshot:" + consultantID.String()
}

func matchKey(consultantID uuid.UUID, opportunityID uint, version int64) string {
	return fmt.Sprintf("match:%s:%d:v%d", consultantID, opportunityID, version)
}

func matchPattern(consultantID uuid.UUID) string {
	return fmt.Sprintf("match:%s:*", consultantID)
}

// ReadSynced returns the consultant's skill snapshot.
//
// When the authoritative store answers, the snapshot carries the current
// skill version, synced is true, and the caller's sync marker is recorded.
// When the store is unreachable the last successfully synced snapshot is
// served with synced=false; staleness is data, not failure. Only an unknown
// consultant id yields an error (model.ErrNotFound).
func (s *Coordinator) ReadSynced(ctx context.Context, consultantID uuid.UUID, consumer string) (Snapshot, bool, error) {
	consultant, err := s.DB.GetConsultant(consultantID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Snapshot{}, false, err
		}
		// Store unavailable: fall back to the last synced snapshot.
		var cached Snapshot
		if found, _ := s.Cache.GetJSON(ctx, snapshotKey(consultantID), &cached); found {
			return cached, false, nil
		}
		return Snapshot{ConsultantID: consultantID}, false, nil
	}

	snapshot := Snapshot{
		ConsultantID: consultantID,
		Version:      consultant.SkillVersion,
		Skills:       consultant.Skills,
		TakenAt:      time.Now(),
	}

	// Cache write and marker upsert are best-effort; the synced read itself
	// already succeeded.
	_ = s.Cache.SetJSON(ctx, snapshotKey(consultantID), snapshot, 24*time.Hour)
	s.recordObservation(consultantID, consumer, consultant.SkillVersion)

	return snapshot, true, nil
}

func (s *Coordinator) recordObservation(consultantID uuid.UUID, consumer string, version int64) {
	if consumer == "" {
		return
	}
	state := model.SyncState{
		ConsultantID:    consultantID,
		Consumer:        consumer,
		ObservedVersion: version,
		UpdatedAt:       time.Now(),
	}
	_ = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "consultant_id"}, {Name: "consumer"}},
		DoUpdates: clause.AssignmentColumns([]string{"observed_version", "updated_at"}),
	}).Create(&state).Error
}

// ComputeMatch scores the consultant against the opportunity. Results are
// cached under the consultant's current skill version, so a version bump can
// never serve a stale score: the old keys simply stop being looked up.
func (s *Coordinator) ComputeMatch(ctx context.Context, consultantID uuid.UUID, opportunityID uint) (*model.MatchSnapshot, error) {
	consultant, err := s.DB.GetConsultant(consultantID)
	if err != nil {
		return nil, err
	}

	var opportunity model.Opportunity
	if err := s.DB.Where("id = ?", opportunityID).First(&opportunity).Error; err != nil {
		return nil, fmt.Errorf("%w: opportunity %d", model.ErrNotFound, opportunityID)
	}

	key := matchKey(consultantID, opportunityID, consultant.SkillVersion)
	var cached model.MatchSnapshot
	if found, _ := s.Cache.GetJSON(ctx, key, &cached); found {
		return &cached, nil
	}

	score := matching.Score(consultant.SkillNames(), opportunity.RequiredSkills)
	result := model.MatchSnapshot{
		Percentage:   score.Percentage,
		Matched:      score.Matched,
		Gaps:         score.Gaps,
		SkillVersion: consultant.SkillVersion,
	}

	_ = s.Cache.SetJSON(ctx, key, result, time.Hour)
	return &result, nil
}

// UpdateSkills replaces the consultant's skill set and, before reporting
// success, invalidates every cached match result and refreshes the snapshot
// cache. Consumers comparing versions therefore recognize anything computed
// beforehand as stale.
func (s *Coordinator) UpdateSkills(ctx context.Context, consultantID uuid.UUID, skills []model.Skill) (int64, error) {
	version, err := s.DB.ReplaceSkills(consultantID, skills)
	if err != nil {
		return 0, err
	}

	_ = s.Cache.DeleteByPattern(ctx, matchPattern(consultantID))
	_ = s.Cache.SetJSON(ctx, snapshotKey(consultantID), Snapshot{
		ConsultantID: consultantID,
		Version:      version,
		Skills:       skills,
		TakenAt:      time.Now(),
	}, 24*time.Hour)

	return version, nil
}
