package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	authdomain "github.com/smetelco/portal/internal/auth/domain"
	"github.com/smetelco/portal/internal/clock"
	"github.com/smetelco/portal/internal/sms"
	"github.com/smetelco/portal/pkg/db"
	"github.com/smetelco/portal/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Audit auditdomain.Service
	SMS   sms.Sender
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	audit auditdomain.Service
	sms   sms.Sender
	users repository.Repository[authdomain.User]
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		audit: p.Audit,
		sms:   p.SMS,
		users: repository.ProvideStore[authdomain.User](p.DB),
	}
}

func (s *Service) Register(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, authdomain.ErrInvalidUsername
	}
	if req.Password == "" {
		return nil, authdomain.ErrInvalidPassword
	}
	if !authdomain.ValidRole(req.Role) {
		return nil, authdomain.ErrInvalidRole
	}
	phone := strings.TrimSpace(req.Phone)
	if phone != "" && !authdomain.ValidPhone(phone) {
		return nil, authdomain.ErrInvalidPhone
	}

	existing, err := s.users.FindOne(ctx, &authdomain.User{Username: username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, authdomain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// A concurrent register can slip past the lookup; the unique index on
	// username is the real guard.
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrUsernameTaken
		}
		return nil, err
	}

	_ = s.audit.Record(ctx, "User registered", username, map[string]any{
		"role": req.Role,
	})
	return user, nil
}

// Login checks username, password and role together; any mismatch is the
// same invalid_credentials error so the response does not leak which part
// was wrong. SME admin accounts with a phone on file get an OTP challenge
// instead of a finished session.
func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	user, err := s.users.FindOne(ctx, &authdomain.User{Username: username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, authdomain.ErrInvalidCredentials
	}
	if req.Role != "" && req.Role != user.Role {
		return nil, authdomain.ErrInvalidCredentials
	}

	_ = s.audit.Record(ctx, "User login", user.Username, map[string]any{
		"role": user.Role,
	})

	if user.Role == authdomain.RoleSMEAdmin && user.Phone != "" {
		if err := s.issueOTP(ctx, user.Phone); err != nil {
			return nil, err
		}
		return &authdomain.LoginResult{OTPRequired: true, Phone: user.Phone}, nil
	}
	return &authdomain.LoginResult{User: user}, nil
}

func (s *Service) RequestOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if !authdomain.ValidPhone(phone) {
		return authdomain.ErrInvalidPhone
	}
	return s.issueOTP(ctx, phone)
}

// VerifyOTP consumes a pending code. The row is deleted before the user
// lookup, so even a matching code can only be redeemed once.
func (s *Service) VerifyOTP(ctx context.Context, req authdomain.VerifyRequest) (*authdomain.User, error) {
	phone := strings.TrimSpace(req.Phone)
	code := strings.TrimSpace(req.Code)
	if !authdomain.ValidPhone(phone) {
		return nil, authdomain.ErrInvalidPhone
	}
	if code == "" {
		return nil, authdomain.ErrInvalidOTP
	}

	var stored authdomain.OTPCode
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&stored).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, authdomain.ErrInvalidOTP
		}
		return nil, err
	}
	if stored.Code != code {
		return nil, authdomain.ErrInvalidOTP
	}

	if err := s.db.WithContext(ctx).Where("phone = ?", phone).Delete(&authdomain.OTPCode{}).Error; err != nil {
		return nil, err
	}
	if s.clock.Now().After(stored.ExpiresAt) {
		return nil, authdomain.ErrOTPExpired
	}

	user, err := s.users.FindOne(ctx, &authdomain.User{Phone: phone})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Record(ctx, "OTP verified", userNameOrSystem(user), map[string]any{
		"phone": phone,
	})
	return user, nil
}

// issueOTP stores a fresh six-digit code, replacing any pending one for the
// phone, and sends it out of band.
func (s *Service) issueOTP(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	otp := authdomain.OTPCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(authdomain.OTPTTL),
		CreatedAt: now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		UpdateAll: true,
	}).Create(&otp).Error
	if err != nil {
		return err
	}

	if err := s.sms.Send(ctx, phone, fmt.Sprintf("Your verification code is %s", code)); err != nil {
		s.log.Warn("otp send failed", zap.String("phone", phone), zap.Error(err))
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func userNameOrSystem(user *authdomain.User) string {
	if user == nil {
		return "system"
	}
	return user.Username
}
