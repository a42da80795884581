package entity

import "time"

// User roles. Services never re-check the role; route middleware gates access
// and the services only use the user id for audit attribution.
const (
	RoleAdmin   = "ADMIN"
	RoleAnalyst = "ANALYST"
	RoleUser    = "USER"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Role         string    `json:"role" gorm:"size:20;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
