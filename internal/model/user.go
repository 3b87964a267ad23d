package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name          string    `gorm:"size:100;not null" json:"name"`
	Email         string    `gorm:"size:100;unique;not null" json:"email"`
	Mobile        string    `gorm:"size:20" json:"mobile"`
	Role          UserRole  `gorm:"type:varchar(10);default:'student'" json:"role"`
	FreeTestsUsed int       `gorm:"default:0" json:"freeTestsUsed"` // paid tests taken on free credits
	Disabled      bool      `gorm:"default:false" json:"disabled"`
	LastLogin     time.Time `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
