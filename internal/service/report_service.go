package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	reportCacheKey = "reports:overview"
	dailyWindow    = 7
	dayFormat      = "2006-01-02"
)

// StatusCount is one bucket of the status histogram.
type StatusCount struct {
	Status domain.TicketStatus `json:"status"`
	Count  int                 `json:"count"`
}

// DepartmentCount is one bucket of the department histogram. Department
// is a free-text label, so cardinality is unbounded.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// DayCount is one bucket of the trailing daily histogram.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// ReportOverview aggregates the full ticket set for the reports view.
type ReportOverview struct {
	Total              int               `json:"total"`
	ByStatus           []StatusCount     `json:"by_status"`
	ByDepartment       []DepartmentCount `json:"by_department"`
	ByDay              []DayCount        `json:"by_day"`
	AvgResolutionHours float64           `json:"avg_resolution_hours"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// ReportService computes aggregate ticket reports. Snapshots are
// memoized in Redis under a short TTL; the cache is best-effort.
type ReportService struct {
	tickets repository.TicketRepository
	cache   *persistence.Redis
	ttl     time.Duration
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, cache *persistence.Redis, ttl time.Duration) *ReportService {
	return &ReportService{tickets: tickets, cache: cache, ttl: ttl}
}

// Overview loads all tickets and computes the report, anchored at now.
func (s *ReportService) Overview(ctx context.Context) (*ReportOverview, error) {
	if raw, ok := s.cache.GetString(ctx, reportCacheKey); ok {
		var cached ReportOverview
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	overview := &ReportOverview{
		Total:              len(tickets),
		ByStatus:           BuildStatusHistogram(tickets),
		ByDepartment:       BuildDepartmentHistogram(tickets),
		ByDay:              BuildDailyHistogram(tickets, now),
		AvgResolutionHours: AverageResolutionHours(tickets),
		GeneratedAt:        now,
	}

	if encoded, err := json.Marshal(overview); err == nil && s.ttl > 0 {
		s.cache.SetString(ctx, reportCacheKey, string(encoded), s.ttl)
	}
	return overview, nil
}

// BuildStatusHistogram counts tickets per status. Every status value
// appears, zero-filled, in display order.
func BuildStatusHistogram(tickets []domain.Ticket) []StatusCount {
	counts := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	for _, ticket := range tickets {
		counts[ticket.Status]++
	}
	result := make([]StatusCount, 0, len(domain.TicketStatuses))
	for _, status := range domain.TicketStatuses {
		result = append(result, StatusCount{Status: status, Count: counts[status]})
	}
	return result
}

// BuildDepartmentHistogram counts tickets per distinct department
// value, sorted by department name for stable output.
func BuildDepartmentHistogram(tickets []domain.Ticket) []DepartmentCount {
	counts := make(map[string]int)
	for _, ticket := range tickets {
		counts[ticket.Department]++
	}
	result := make([]DepartmentCount, 0, len(counts))
	for department, count := range counts {
		result = append(result, DepartmentCount{Department: department, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Department < result[j].Department
	})
	return result
}

// BuildDailyHistogram buckets tickets created during the trailing
// 7-day window by calendar day in local time, anchored at now. Days
// without tickets still appear with count 0.
func BuildDailyHistogram(tickets []domain.Ticket, now time.Time) []DayCount {
	counts := make(map[string]int, dailyWindow)
	days := make([]string, 0, dailyWindow)
	for i := dailyWindow - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format(dayFormat)
		days = append(days, day)
		counts[day] = 0
	}
	for _, ticket := range tickets {
		day := ticket.CreatedAt.Local().Format(dayFormat)
		if _, inWindow := counts[day]; inWindow {
			counts[day]++
		}
	}
	result := make([]DayCount, 0, dailyWindow)
	for _, day := range days {
		result = append(result, DayCount{Day: day, Count: counts[day]})
	}
	return result
}

// AverageResolutionHours is the mean of resolved_at minus created_at
// across tickets that have resolved, zero when none have.
func AverageResolutionHours(tickets []domain.Ticket) float64 {
	var total time.Duration
	var resolved int
	for _, ticket := range tickets {
		if ticket.ResolvedAt == nil {
			continue
		}
		total += ticket.ResolvedAt.Sub(ticket.CreatedAt)
		resolved++
	}
	if resolved == 0 {
		return 0
	}
	return total.Hours() / float64(resolved)
}
