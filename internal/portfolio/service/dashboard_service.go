package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
)

// DashboardService reconstructs time-windowed statistics from the entity
// tables and the change log.
type DashboardService struct {
	repos *repository.Repositories
}

func NewDashboardService(repos *repository.Repositories) *DashboardService {
	return &DashboardService{repos: repos}
}

type StageCount struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

type StageDuration struct {
	Stage           string  `json:"stage"`
	AvgDurationDays float64 `json:"avg_duration_days"`
}

// DashboardStats mirrors the shape the frontend consumes. TotalProjects is
// the overall catalog size while TotalRevenue is window-filtered; the
// asymmetry is inherited behavior, kept as-is for product owners to revisit.
type DashboardStats struct {
	TotalProjects  int64                 `json:"total_projects"`
	TotalRevenue   float64               `json:"total_revenue"`
	StageCounts    []StageCount          `json:"stage_counts"`
	ManagerCounts  []repository.GroupRow `json:"manager_counts"`
	SegmentCounts  []repository.GroupRow `json:"segment_counts"`
	ServiceCounts  []repository.GroupRow `json:"service_counts"`
	StageDurations []StageDuration       `json:"stage_durations"`
}

const hoursPerDay = 24.0

// Stats computes the dashboard aggregates for [start, end]. Zero times
// default to the trailing 30 days ending now.
func (s *DashboardService) Stats(ctx context.Context, start, end time.Time) (*DashboardStats, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.Add(-30 * 24 * time.Hour)
	}

	stats := &DashboardStats{}

	total, err := s.repos.Project.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	stats.TotalProjects = total

	revenue, err := s.repos.Revenue.SumCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	stats.TotalRevenue = revenue

	stages, err := s.stageItems(ctx)
	if err != nil {
		return nil, err
	}

	for _, stage := range stages {
		count, err := s.repos.Project.CountByStage(ctx, stage.ID)
		if err != nil {
			return nil, fmt.Errorf("count projects for stage %q: %w", stage.Value, err)
		}
		stats.StageCounts = append(stats.StageCounts, StageCount{Stage: stage.Value, Count: count})
	}

	for _, group := range []struct {
		column string
		dest   *[]repository.GroupRow
	}{
		{"manager", &stats.ManagerCounts},
		{"business_segment_id", &stats.SegmentCounts},
		{"service_id", &stats.ServiceCounts},
	} {
		rows, err := s.repos.Project.GroupBy(ctx, group.column)
		if err != nil {
			return nil, fmt.Errorf("group projects by %s: %w", group.column, err)
		}
		*group.dest = rows
	}

	durations, err := s.stageDurations(ctx, stages)
	if err != nil {
		return nil, err
	}
	stats.StageDurations = durations

	return stats, nil
}

func (s *DashboardService) stageItems(ctx context.Context) ([]entity.DictionaryItem, error) {
	stageType, err := s.repos.Dictionary.FindTypeByName(ctx, entity.DictTypeStage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("dictionary type %q: %w", entity.DictTypeStage, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve stage type: %w", err)
	}
	items, err := s.repos.Dictionary.ListItems(ctx, stageType.ID)
	if err != nil {
		return nil, fmt.Errorf("list stage items: %w", err)
	}
	return items, nil
}

// stageDurations averages, per stage, the time between entering that stage
// and the project's next stage transition. The change log is loaded once,
// ordered by (project, changed_at), so pairing a transition with its
// successor is a single linear scan; projects with skips and reversals need
// no ordering index. A project still sitting in a stage contributes no
// sample for it.
func (s *DashboardService) stageDurations(ctx context.Context, stages []entity.DictionaryItem) ([]StageDuration, error) {
	changes, err := s.repos.ChangeHistory.ListStageChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stage changes: %w", err)
	}

	type acc struct {
		totalDays float64
		samples   int
	}
	byStage := make(map[string]*acc)

	for i := 0; i < len(changes); i++ {
		cur := changes[i]
		if i+1 >= len(changes) || changes[i+1].ProjectID != cur.ProjectID {
			continue
		}
		next := changes[i+1]
		days := next.ChangedAt.Sub(cur.ChangedAt).Hours() / hoursPerDay
		a := byStage[cur.NewValue]
		if a == nil {
			a = &acc{}
			byStage[cur.NewValue] = a
		}
		a.totalDays += days
		a.samples++
	}

	durations := make([]StageDuration, 0, len(stages))
	for _, stage := range stages {
		d := StageDuration{Stage: stage.Value}
		if a := byStage[fmtUint(stage.ID)]; a != nil && a.samples > 0 {
			d.AvgDurationDays = a.totalDays / float64(a.samples)
		}
		durations = append(durations, d)
	}
	return durations, nil
}

type GanttStage struct {
	Stage string    `json:"stage"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type GanttPoint struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"`
}

type GanttData struct {
	Stages   []GanttStage `json:"stages"`
	Revenues []GanttPoint `json:"revenues"`
	Costs    []GanttPoint `json:"costs"`
}

// Gantt reconstructs one project's stage timeline from its change log plus
// its revenue/cost points. The interval for the current stage is open-ended
// and closed at now.
func (s *DashboardService) Gantt(ctx context.Context, projectID uint) (*GanttData, error) {
	if _, err := s.repos.Project.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("find project %d: %w", projectID, err)
	}

	stages, err := s.stageItems(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(stages))
	for _, stage := range stages {
		labels[fmtUint(stage.ID)] = stage.Value
	}

	changes, err := s.repos.ChangeHistory.ListStageChangesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load stage changes: %w", err)
	}

	data := &GanttData{}
	now := time.Now().UTC()
	for i, change := range changes {
		label := labels[change.NewValue]
		if label == "" {
			label = change.NewValue
		}
		interval := GanttStage{Stage: label, Start: change.ChangedAt, End: now}
		if i+1 < len(changes) {
			interval.End = changes[i+1].ChangedAt
		}
		data.Stages = append(data.Stages, interval)
	}

	revenues, err := s.repos.Revenue.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list revenues: %w", err)
	}
	for _, r := range revenues {
		point := GanttPoint{Amount: r.Amount}
		if r.Year != nil && r.Month != nil {
			point.Date = fmt.Sprintf("%04d-%02d-01", *r.Year, *r.Month)
		}
		data.Revenues = append(data.Revenues, point)
	}

	costs, err := s.repos.Cost.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	for _, c := range costs {
		point := GanttPoint{Amount: c.Amount}
		if c.Year != nil && c.Month != nil {
			point.Date = fmt.Sprintf("%04d-%02d-01", *c.Year, *c.Month)
		}
		data.Costs = append(data.Costs, point)
	}

	return data, nil
}
