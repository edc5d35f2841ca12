// Package model contain gorm model for recording data to database
package model

import (
	"github.com/google/uuid"
)

var (
	// RoleConsultant is role of bench consultant user
	RoleConsultant = "consultant"
	// RoleAdmin is role of administrator user
	RoleAdmin = "admin"
)

// User is gorm model for store account data in DB
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username string    `gorm:"type:text;unique;not null" json:"username"`
	Email    *string   `gorm:"type:text" json:"email"`
	Password string    `gorm:"type:text" json:"-"`
	Role     string    `gorm:"type:text;not null" json:"role"`
}

// ConsultantResponse is the login/register response for consultant users
type ConsultantResponse struct {
	Consultant  Consultant `json:"consultant"`
	AccessToken string     `json:"access_token"`
}

// AdminResponse is the login response for admin users
type AdminResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
