package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"benchtrack-backend/internal/model"
)

func opportunityWith(status string, skills ...string) model.Opportunity {
	o := model.Opportunity{Status: status}
	o.RequiredSkills = skills
	return o
}

func TestFillRate(t *testing.T) {
	assert.Equal(t, 0.0, FillRate(nil))

	opportunities := []model.Opportunity{
		opportunityWith(model.OpportunityStatusFilled),
		opportunityWith(model.OpportunityStatusOpen),
		opportunityWith(model.OpportunityStatusFilled),
		opportunityWith(model.OpportunityStatusCancelled),
	}
	assert.InDelta(t, 0.5, FillRate(opportunities), 1e-9)
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(nil))

	applications := []model.Application{
		{Status: model.ApplicationStatusAccepted},
		{Status: model.ApplicationStatusRejected},
		{Status: model.ApplicationStatusPending},
		{Status: model.ApplicationStatusDeclined},
	}
	assert.InDelta(t, 0.25, SuccessRate(applications), 1e-9)
}

func TestSkillsInDemand(t *testing.T) {
	opportunities := []model.Opportunity{
		opportunityWith(model.OpportunityStatusOpen, "Go", "AWS"),
		opportunityWith(model.OpportunityStatusOpen, "aws", "React"),
		opportunityWith(model.OpportunityStatusFilled, "Rust"), // not open, ignored
		opportunityWith(model.OpportunityStatusOpen, "go"),
	}

	demands := SkillsInDemand(opportunities)

	assert.Equal(t, []SkillDemand{
		{Skill: "go", Count: 2},
		{Skill: "aws", Count: 2},
		{Skill: "react", Count: 1},
	}, demands)
}

func TestSkillsInDemand_TieBreakFirstSeen(t *testing.T) {
	opportunities := []model.Opportunity{
		opportunityWith(model.OpportunityStatusOpen, "Kafka", "Spark", "Flink"),
	}

	demands := SkillsInDemand(opportunities)

	// All count 1: first-seen order wins.
	assert.Equal(t, "kafka", demands[0].Skill)
	assert.Equal(t, "spark", demands[1].Skill)
	assert.Equal(t, "flink", demands[2].Skill)
}
