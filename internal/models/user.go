package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Role names as stored in the roles column.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents an account that owns mail records
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string    `gorm:"not null;size:255" json:"-"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Roles     RoleList  `gorm:"type:text" json:"roles"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	// Relationships
	Mails []Mail `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// RoleList is a set of role names persisted as a JSON text column
type RoleList []string

// NormalizeRoles guarantees ROLE_USER is always present and drops duplicates
func NormalizeRoles(roles []string) RoleList {
	seen := map[string]bool{RoleUser: true}
	out := RoleList{RoleUser}
	for _, r := range roles {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// Value implements driver.Valuer, serializing roles to JSON text
func (r RoleList) Value() (driver.Value, error) {
	if r == nil {
		r = RoleList{RoleUser}
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, reading roles from JSON text
func (r *RoleList) Scan(value interface{}) error {
	if value == nil {
		*r = RoleList{RoleUser}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	}
	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return err
	}
	*r = RoleList(roles)
	return nil
}
