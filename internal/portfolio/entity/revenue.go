package entity

import "time"

// Revenue is a planned or booked revenue line owned by one project.
// CreatedAt is what the dashboard windows total revenue on.
type Revenue struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProjectID uint      `json:"project_id" gorm:"not null;index"`
	Year      *int      `json:"year"`
	Month     *int      `json:"month"`
	Amount    float64   `json:"amount" gorm:"not null"`
	StatusID  uint      `json:"status_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Revenue) TableName() string {
	return "revenues"
}
