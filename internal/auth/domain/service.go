package domain

import (
	"context"
	"errors"
	"regexp"
)

// Albanian mobile numbers only: +355 followed by nine digits.
var phonePattern = regexp.MustCompile(`^\+355\d{9}$`)

func ValidPhone(phone string) bool { return phonePattern.MatchString(phone) }

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult reports either a finished login or a pending OTP challenge
// for sme_admin accounts.
type LoginResult struct {
	User        *User  `json:"user,omitempty"`
	OTPRequired bool   `json:"otpRequired"`
	Phone       string `json:"phone,omitempty"`
}

type VerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, req VerifyRequest) (*User, error)
}

var (
	ErrUsernameTaken      = errors.New("username_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidPhone       = errors.New("invalid_phone")
	ErrInvalidOTP         = errors.New("invalid_otp")
	ErrOTPExpired         = errors.New("otp_expired")
)
