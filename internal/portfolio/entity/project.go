package entity

import "time"

// Project is one tracked portfolio project. Probability is denormalized from
// the stage dictionary item and recomputed on every stage change; it is never
// settable on its own.
type Project struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrgName     string `json:"org_name" gorm:"size:255;not null"`
	OrgINN      string `json:"org_inn" gorm:"column:org_inn;size:12;not null"`
	ProjectName string `json:"project_name" gorm:"size:255;not null"`

	ServiceID         uint    `json:"service_id" gorm:"not null"`
	PaymentTypeID     uint    `json:"payment_type_id" gorm:"not null"`
	StageID           uint    `json:"stage_id" gorm:"not null;index"`
	Probability       float64 `json:"probability" gorm:"not null"`
	Manager           string  `json:"manager" gorm:"size:255;not null;index"`
	BusinessSegmentID uint    `json:"business_segment_id" gorm:"not null"`

	RealizationYear        *time.Time `json:"realization_year"`
	IndustrySolution       bool       `json:"industry_solution" gorm:"not null;default:false"`
	ForecastAccepted       bool       `json:"forecast_accepted" gorm:"not null;default:false"`
	ViaDZO                 bool       `json:"via_dzo" gorm:"column:via_dzo;not null;default:false"`
	NeedsLeadershipControl bool       `json:"needs_leadership_control" gorm:"not null;default:false"`

	AssessmentID    *int    `json:"assessment_id"`
	IndustryManager *string `json:"industry_manager" gorm:"size:255"`
	ProjectNumber   *string `json:"project_number" gorm:"size:100"`
	Status          *string `json:"status" gorm:"size:100"`
	DoneInPeriod    *string `json:"done_in_period" gorm:"type:text"`
	PlansNextPeriod *string `json:"plans_next_period" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Revenues []Revenue `json:"revenues,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Costs    []Cost    `json:"costs,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string {
	return "projects"
}
