package reports

import (
	"sort"

	"reportdesk/internal/models"
)

// Summary is the overview shown on the user's home screen.
type Summary struct {
	Total    int                         `json:"total" yaml:"total"`
	ByStatus map[models.ReportStatus]int `json:"byStatus" yaml:"byStatus"`
	Recent   []models.Report             `json:"recent" yaml:"recent"`
}

// Summarize counts reports by status and keeps the newest n, most recent
// first. Reports without a creation time sort last.
func Summarize(list []models.Report, n int) Summary {
	s := Summary{Total: len(list), ByStatus: map[models.ReportStatus]int{}}
	for _, r := range list {
		s.ByStatus[r.Status]++
	}

	recent := append([]models.Report(nil), list...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt > recent[j].CreatedAt
	})
	if n >= 0 && len(recent) > n {
		recent = recent[:n]
	}
	s.Recent = recent
	return s
}
