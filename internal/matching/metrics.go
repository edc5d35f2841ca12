package matching

import (
	"sort"

	"benchtrack-backend/internal/model"
)

// SkillDemand is one entry of the skills-in-demand ranking.
type SkillDemand struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// FillRate is the share of opportunities that reached filled status.
// Zero when there are no opportunities, never NaN.
func FillRate(opportunities []model.Opportunity) float64 {
	if len(opportunities) == 0 {
		return 0
	}
	filled := 0
	for _, o := range opportunities {
		if o.Status == model.OpportunityStatusFilled {
			filled++
		}
	}
	return float64(filled) / float64(len(opportunities))
}

// SuccessRate is the share of applications that were accepted.
// Zero when there are no applications, never NaN.
func SuccessRate(applications []model.Application) float64 {
	if len(applications) == 0 {
		return 0
	}
	accepted := 0
	for _, a := range applications {
		if a.Status == model.ApplicationStatusAccepted {
			accepted++
		}
	}
	return float64(accepted) / float64(len(applications))
}

// SkillsInDemand counts normalized required skills across open opportunities,
// most demanded first. Ties keep first-seen order, so the ranking is
// deterministic for a given opportunity ordering.
func SkillsInDemand(opportunities []model.Opportunity) []SkillDemand {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	order := 0

	for _, o := range opportunities {
		if o.Status != model.OpportunityStatusOpen {
			continue
		}
		for _, raw := range o.RequiredSkills {
			skill := Normalize(raw)
			if skill == "" {
				continue
			}
			if _, seen := counts[skill]; !seen {
				firstSeen[skill] = order
				order++
			}
			counts[skill]++
		}
	}

	demands := make([]SkillDemand, 0, len(counts))
	for skill, count := range counts {
		demands = append(demands, SkillDemand{Skill: skill, Count: count})
	}

	sort.SliceStable(demands, func(i, j int) bool {
		if demands[i].Count != demands[j].Count {
			return demands[i].Count > demands[j].Count
		}
		return firstSeen[demands[i].Skill] < firstSeen[demands[j].Skill]
	})

	return demands
}
