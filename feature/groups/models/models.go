package models

import "time"

// Role is a locally persisted group from the external directory.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RoleID      string `gorm:"column:role_id;size:255;uniqueIndex" json:"role_id"`
	Name        string `gorm:"size:255" json:"name"`
	Description string `gorm:"size:1024" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the roles table name.
func (Role) TableName() string {
	return "roles"
}
