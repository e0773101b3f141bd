package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage string     `json:"profile_image" gorm:"default:''"`
	Name         string     `json:"name" gorm:"default:''"`
	Email        string     `json:"email" gorm:"unique;not null"`
	Password     string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"default:'LEARNER'"` // LEARNER, SUBADMIN, ADMIN
	Ministry     string     `json:"ministry" gorm:"default:''"`
	Designation  string     `json:"designation" gorm:"default:''"`
	LastLogin    *time.Time `json:"last_login"`
	IsDeleted    bool       `gorm:"default:false"`
}

// IsAdmin reports whether the user may perform catalog mutations
func (u *User) IsAdmin() bool {
	return u.Role == "ADMIN" || u.Role == "SUBADMIN"
}
