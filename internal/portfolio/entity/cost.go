package entity

import "time"

// Cost is a cost line owned by one project. Both the cost type and the cost
// status reference dictionary items of their respective types.
type Cost struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ProjectID  uint      `json:"project_id" gorm:"not null;index"`
	Year       *int      `json:"year"`
	Month      *int      `json:"month"`
	Amount     float64   `json:"amount" gorm:"not null"`
	CostTypeID uint      `json:"cost_type_id" gorm:"not null"`
	StatusID   uint      `json:"status_id" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Cost) TableName() string {
	return "costs"
}
