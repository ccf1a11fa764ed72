// Package domain contains the portal account model and the one-time code
// used for the SME admin login challenge.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdminIT      = "admin_it"
	RoleSalesSupport = "sales_support"
	RoleSMEAdmin     = "sme_admin"
)

// User is a portal account. PasswordHash is bcrypt and never serialized.
type User struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Username     string       `json:"username" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"type:text;not null"`
	Role         string       `json:"role" gorm:"type:text;not null"`
	Phone        string       `json:"phone" gorm:"type:text"`
	CreatedAt    time.Time    `json:"createdAt" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updatedAt" gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// OTPCode is a pending one-time code keyed by phone number. Codes survive a
// process restart and expire after OTPTTL; consuming one deletes the row so
// it cannot be replayed.
type OTPCode struct {
	Phone     string    `json:"phone" gorm:"primaryKey;type:text"`
	Code      string    `json:"-" gorm:"type:text;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

// TableName sets the database table name.
func (OTPCode) TableName() string { return "otp_codes" }

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 5 * time.Minute

func ValidRole(role string) bool {
	switch role {
	case RoleAdminIT, RoleSalesSupport, RoleSMEAdmin:
		return true
	default:
		return false
	}
}
