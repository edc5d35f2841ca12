package matching

import (
	"sort"
	"strings"

	"benchtrack-backend/internal/model"
)

// Sort key constants for Filter.SortBy
var (
	SortByScore     = "score"
	SortByTitle     = "title"
	SortByStartDate = "start_date"
	SortByStatus    = "status"
)

// DefaultPageSize is used when Filter.PageSize is not positive.
const DefaultPageSize = 20

// Filter describes how to narrow, order and page an opportunity listing.
type Filter struct {
	Status string
	// Search matches case-insensitively against title, client name and
	// required skills.
	Search string
	SortBy string
	Desc   bool
	// Page is 1-based. A page beyond range yields an empty slice, not an
	// error.
	Page     int
	PageSize int
}

// Rank filters, orders and pages the given opportunity views. The sort is
// stable: equal keys keep their original relative order, so pagination is
// deterministic across pages. Returns the requested page and the total count
// after filtering.
func Rank(items []model.OpportunityResponse, f Filter) ([]model.OpportunityResponse, int) {
	filtered := make([]model.OpportunityResponse, 0, len(items))
	for _, item := range items {
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Search != "" && !matchesSearch(item, f.Search) {
			continue
		}
		filtered = append(filtered, item)
	}

	sortItems(filtered, f.SortBy, f.Desc)

	total := len(filtered)

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []model.OpportunityResponse{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

func matchesSearch(item model.OpportunityResponse, search string) bool {
	needle := Normalize(search)
	if strings.Contains(strings.ToLower(item.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(item.ClientName), needle) {
		return true
	}
	for _, skill := range item.RequiredSkills {
		if strings.Contains(Normalize(skill), needle) {
			return true
		}
	}
	return false
}

func sortItems(items []model.OpportunityResponse, sortBy string, desc bool) {
	var less func(i, j int) bool

	switch sortBy {
	case SortByScore:
		less = func(i, j int) bool { return scoreOf(items[i]) < scoreOf(items[j]) }
	case SortByTitle:
		less = func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		}
	case SortByStartDate:
		less = func(i, j int) bool {
			// Opportunities without a start date sort last.
			if items[i].StartDate == nil {
				return false
			}
			if items[j].StartDate == nil {
				return true
			}
			return items[i].StartDate.Before(*items[j].StartDate)
		}
	case SortByStatus:
		less = func(i, j int) bool { return items[i].Status < items[j].Status }
	default:
		return
	}

	if desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}

	sort.SliceStable(items, less)
}

func scoreOf(item model.OpportunityResponse) uint {
	if item.MatchScore == nil {
		return 0
	}
	return item.MatchScore.Percentage
}
