package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"github.com/hifushiri/rostelecom-backend/internal/portfolio/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService builds ad-hoc projections over projects and their two fixed
// relations. Fields are whitelisted and filters follow an enumerated grammar,
// so nothing open-ended reaches storage.
type ReportService struct {
	repos *repository.Repositories
}

func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{repos: repos}
}

// projectFieldValues is the complete report whitelist for project columns,
// with one explicit extractor per field.
var projectFieldValues = map[string]func(p *entity.Project) interface{}{
	"id":                       func(p *entity.Project) interface{} { return p.ID },
	"org_name":                 func(p *entity.Project) interface{} { return p.OrgName },
	"org_inn":                  func(p *entity.Project) interface{} { return p.OrgINN },
	"project_name":             func(p *entity.Project) interface{} { return p.ProjectName },
	"service_id":               func(p *entity.Project) interface{} { return p.ServiceID },
	"payment_type_id":          func(p *entity.Project) interface{} { return p.PaymentTypeID },
	"stage_id":                 func(p *entity.Project) interface{} { return p.StageID },
	"probability":              func(p *entity.Project) interface{} { return p.Probability },
	"manager":                  func(p *entity.Project) interface{} { return p.Manager },
	"business_segment_id":      func(p *entity.Project) interface{} { return p.BusinessSegmentID },
	"realization_year":         func(p *entity.Project) interface{} { return p.RealizationYear },
	"industry_solution":        func(p *entity.Project) interface{} { return p.IndustrySolution },
	"forecast_accepted":        func(p *entity.Project) interface{} { return p.ForecastAccepted },
	"via_dzo":                  func(p *entity.Project) interface{} { return p.ViaDZO },
	"needs_leadership_control": func(p *entity.Project) interface{} { return p.NeedsLeadershipControl },
	"assessment_id":            func(p *entity.Project) interface{} { return p.AssessmentID },
	"industry_manager":         func(p *entity.Project) interface{} { return p.IndustryManager },
	"project_number":           func(p *entity.Project) interface{} { return p.ProjectNumber },
	"created_at":               func(p *entity.Project) interface{} { return p.CreatedAt },
	"updated_at":               func(p *entity.Project) interface{} { return p.UpdatedAt },
	"status":                   func(p *entity.Project) interface{} { return p.Status },
	"done_in_period":           func(p *entity.Project) interface{} { return p.DoneInPeriod },
	"plans_next_period":        func(p *entity.Project) interface{} { return p.PlansNextPeriod },
}

var revenueFieldValues = map[string]func(r *entity.Revenue) interface{}{
	"id":         func(r *entity.Revenue) interface{} { return r.ID },
	"project_id": func(r *entity.Revenue) interface{} { return r.ProjectID },
	"year":       func(r *entity.Revenue) interface{} { return r.Year },
	"month":      func(r *entity.Revenue) interface{} { return r.Month },
	"amount":     func(r *entity.Revenue) interface{} { return r.Amount },
	"status_id":  func(r *entity.Revenue) interface{} { return r.StatusID },
	"created_at": func(r *entity.Revenue) interface{} { return r.CreatedAt },
}

var costFieldValues = map[string]func(c *entity.Cost) interface{}{
	"id":           func(c *entity.Cost) interface{} { return c.ID },
	"project_id":   func(c *entity.Cost) interface{} { return c.ProjectID },
	"year":         func(c *entity.Cost) interface{} { return c.Year },
	"month":        func(c *entity.Cost) interface{} { return c.Month },
	"amount":       func(c *entity.Cost) interface{} { return c.Amount },
	"cost_type_id": func(c *entity.Cost) interface{} { return c.CostTypeID },
	"status_id":    func(c *entity.Cost) interface{} { return c.StatusID },
	"created_at":   func(c *entity.Cost) interface{} { return c.CreatedAt },
}

// ReportFilter is one condition of the enumerated filter grammar: a
// whitelisted project column, an operator and a value. "in" expects an array
// value.
type ReportFilter struct {
	Field string      `json:"field" binding:"required"`
	Op    string      `json:"op" binding:"required"`
	Value interface{} `json:"value"`
}

type ReportQuery struct {
	Fields  []string       `json:"fields" binding:"required"`
	Filters []ReportFilter `json:"filters"`
}

// Report is plain row data; serialization (JSON, XLSX) is the caller's
// concern. Fields preserves the requested column order since map iteration
// does not.
type Report struct {
	Fields []string                 `json:"fields"`
	Rows   []map[string]interface{} `json:"rows"`
}

var filterOps = map[string]string{
	"eq":  "=",
	"neq": "<>",
	"gte": ">=",
	"lte": "<=",
	"in":  "IN",
}

func buildFilterConds(filters []ReportFilter) ([]repository.FilterCond, error) {
	conds := make([]repository.FilterCond, 0, len(filters))
	for _, f := range filters {
		if _, ok := projectFieldValues[f.Field]; !ok {
			return nil, fmt.Errorf("filter field %q: %w", f.Field, ErrInvalidField)
		}
		op, ok := filterOps[f.Op]
		if !ok {
			return nil, fmt.Errorf("filter op %q: %w", f.Op, ErrInvalidField)
		}
		if f.Op == "in" {
			conds = append(conds, repository.FilterCond{
				Clause: f.Field + " IN ?",
				Args:   []interface{}{f.Value},
			})
			continue
		}
		conds = append(conds, repository.FilterCond{
			Clause: f.Field + " " + op + " ?",
			Args:   []interface{}{f.Value},
		})
	}
	return conds, nil
}

// GenerateReport produces one row per matching project. Dotted fields
// ("revenues.amount", "costs.status_id") project to one slice per row across
// the relation; they are never flattened.
func (s *ReportService) GenerateReport(ctx context.Context, query *ReportQuery) (*Report, error) {
	withRevenues := false
	withCosts := false
	for _, field := range query.Fields {
		switch {
		case strings.HasPrefix(field, "revenues."):
			sub := strings.TrimPrefix(field, "revenues.")
			if _, ok := revenueFieldValues[sub]; !ok {
				return nil, fmt.Errorf("field %q: %w", field, ErrInvalidField)
			}
			withRevenues = true
		case strings.HasPrefix(field, "costs."):
			sub := strings.TrimPrefix(field, "costs.")
			if _, ok := costFieldValues[sub]; !ok {
				return nil, fmt.Errorf("field %q: %w", field, ErrInvalidField)
			}
			withCosts = true
		default:
			if _, ok := projectFieldValues[field]; !ok {
				return nil, fmt.Errorf("field %q: %w", field, ErrInvalidField)
			}
		}
	}

	conds, err := buildFilterConds(query.Filters)
	if err != nil {
		return nil, err
	}

	projects, err := s.repos.Project.FindFiltered(ctx, conds, withRevenues, withCosts)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		row := make(map[string]interface{}, len(query.Fields))
		for _, field := range query.Fields {
			switch {
			case strings.HasPrefix(field, "revenues."):
				sub := strings.TrimPrefix(field, "revenues.")
				extract := revenueFieldValues[sub]
				values := make([]interface{}, 0, len(p.Revenues))
				for j := range p.Revenues {
					values = append(values, extract(&p.Revenues[j]))
				}
				row[field] = values
			case strings.HasPrefix(field, "costs."):
				sub := strings.TrimPrefix(field, "costs.")
				extract := costFieldValues[sub]
				values := make([]interface{}, 0, len(p.Costs))
				for j := range p.Costs {
					values = append(values, extract(&p.Costs[j]))
				}
				row[field] = values
			default:
				row[field] = projectFieldValues[field](p)
			}
		}
		rows = append(rows, row)
	}

	return &Report{Fields: query.Fields, Rows: rows}, nil
}

// cellValue unwraps the optional pointer fields so excelize sees scalars;
// nil optionals become empty cells.
func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *int:
		if t == nil {
			return ""
		}
		return *t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case *time.Time:
		if t == nil {
			return ""
		}
		return *t
	default:
		return v
	}
}

// ExportXLSX renders report rows into a single-sheet workbook. Dotted-field
// slices are joined into one cell.
func (s *ReportService) ExportXLSX(report *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, field := range report.Fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, field); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, row := range report.Rows {
		for col, field := range report.Fields {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			value := cellValue(row[field])
			if list, ok := value.([]interface{}); ok {
				parts := make([]string, 0, len(list))
				for _, v := range list {
					parts = append(parts, fmt.Sprintf("%v", cellValue(v)))
				}
				value = strings.Join(parts, ", ")
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
