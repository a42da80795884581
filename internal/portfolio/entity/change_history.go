package entity

import "time"

// Audit field names with lifecycle semantics. FieldStageID additionally drives
// the dashboard's stage dwell-time reconstruction; everything else is an opaque
// audit string.
const (
	FieldCreated        = "created"
	FieldStageID        = "stage_id"
	FieldRevenueAdded   = "revenue_added"
	FieldRevenueDeleted = "revenue_deleted"
	FieldCostAdded      = "cost_added"
	FieldCostDeleted    = "cost_deleted"
)

// ChangeHistory is one field-level audit entry for a project. Rows are
// append-only: never updated, never deleted. Old and new values are plain
// strings regardless of the source column type: this is a human-readable
// diff trail, not a typed replay log.
type ChangeHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"project_id" gorm:"not null;index:idx_change_project"`
	UserID    uint      `json:"user_id" gorm:"not null"`
	Field     string    `json:"field" gorm:"size:100;not null;index"`
	OldValue  string    `json:"old_value" gorm:"type:text"`
	NewValue  string    `json:"new_value" gorm:"type:text"`
	ChangedAt time.Time `json:"changed_at" gorm:"index:idx_change_project"`
}

func (ChangeHistory) TableName() string {
	return "change_history"
}
