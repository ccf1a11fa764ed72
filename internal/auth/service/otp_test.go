package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	authdomain "github.com/smetelco/portal/internal/auth/domain"
	"github.com/smetelco/portal/internal/clock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type auditStub struct{}

func (auditStub) Record(ctx context.Context, action, user string, details map[string]any) error {
	return nil
}

func (auditStub) List(ctx context.Context, req auditdomain.ListRequest) (*auditdomain.ListResponse, error) {
	return &auditdomain.ListResponse{}, nil
}

type smsStub struct {
	sent []string
}

func (s *smsStub) Send(ctx context.Context, phone, body string) error {
	s.sent = append(s.sent, phone)
	return nil
}

type fixture struct {
	svc   authdomain.Service
	db    *gorm.DB
	clock *clock.FakeClock
	sms   *smsStub
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.OTPCode{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	fake := clock.NewFakeClock(time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC))
	sender := &smsStub{}

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Audit: auditStub{},
		SMS:   sender,
	})
	return &fixture{svc: svc, db: db, clock: fake, sms: sender}
}

func (f *fixture) storedCode(t *testing.T, phone string) string {
	t.Helper()
	var otp authdomain.OTPCode
	if err := f.db.First(&otp, "phone = ?", phone).Error; err != nil {
		t.Fatal(err)
	}
	return otp.Code
}

const testPhone = "+355691234567"

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t, "auth_duplicate")
	ctx := context.Background()

	req := authdomain.RegisterRequest{
		Username: "arben",
		Password: "secret",
		Role:     authdomain.RoleSMEAdmin,
		Phone:    testPhone,
	}
	if _, err := f.svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Register(ctx, req); err != authdomain.ErrUsernameTaken {
		t.Fatalf("expected username_taken, got %v", err)
	}
}

func TestRegister_PhoneValidation(t *testing.T) {
	f := newFixture(t, "auth_phone")

	_, err := f.svc.Register(context.Background(), authdomain.RegisterRequest{
		Username: "bad",
		Password: "secret",
		Role:     authdomain.RoleSMEAdmin,
		Phone:    "+49123456789",
	})
	if err != authdomain.ErrInvalidPhone {
		t.Fatalf("non-Albanian number must fail, got %v", err)
	}
}

func TestLogin_WrongRoleIsInvalidCredentials(t *testing.T) {
	f := newFixture(t, "auth_role")
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, authdomain.RegisterRequest{
		Username: "sales",
		Password: "secret",
		Role:     authdomain.RoleSalesSupport,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Login(ctx, authdomain.LoginRequest{
		Username: "sales",
		Password: "secret",
		Role:     authdomain.RoleAdminIT,
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("role mismatch must be invalid_credentials, got %v", err)
	}
}

func TestLogin_SMEAdminGetsOTPChallenge(t *testing.T) {
	f := newFixture(t, "auth_challenge")
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, authdomain.RegisterRequest{
		Username: "arben",
		Password: "secret",
		Role:     authdomain.RoleSMEAdmin,
		Phone:    testPhone,
	}); err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.Login(ctx, authdomain.LoginRequest{Username: "arben", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.OTPRequired || result.Phone != testPhone {
		t.Fatalf("expected OTP challenge for sme_admin, got %+v", result)
	}
	if len(f.sms.sent) != 1 || f.sms.sent[0] != testPhone {
		t.Fatalf("expected one code sent to %s, got %v", testPhone, f.sms.sent)
	}
}

func TestVerifyOTP_HappyPathAndSingleUse(t *testing.T) {
	f := newFixture(t, "auth_verify")
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, authdomain.RegisterRequest{
		Username: "arben",
		Password: "secret",
		Role:     authdomain.RoleSMEAdmin,
		Phone:    testPhone,
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.RequestOTP(ctx, testPhone); err != nil {
		t.Fatal(err)
	}
	code := f.storedCode(t, testPhone)

	user, err := f.svc.VerifyOTP(ctx, authdomain.VerifyRequest{Phone: testPhone, Code: code})
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || user.Username != "arben" {
		t.Fatalf("expected verified user, got %+v", user)
	}

	// A consumed code cannot be replayed.
	if _, err := f.svc.VerifyOTP(ctx, authdomain.VerifyRequest{Phone: testPhone, Code: code}); err != authdomain.ErrInvalidOTP {
		t.Fatalf("expected invalid_otp on replay, got %v", err)
	}
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	f := newFixture(t, "auth_wrong_code")
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, testPhone); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.VerifyOTP(ctx, authdomain.VerifyRequest{Phone: testPhone, Code: "000000"}); err != authdomain.ErrInvalidOTP {
		t.Fatalf("expected invalid_otp, got %v", err)
	}

	// The wrong attempt must not consume the pending code.
	code := f.storedCode(t, testPhone)
	if code == "" {
		t.Fatal("pending code missing after failed attempt")
	}
}

func TestVerifyOTP_Expiry(t *testing.T) {
	f := newFixture(t, "auth_expiry")
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, testPhone); err != nil {
		t.Fatal(err)
	}
	code := f.storedCode(t, testPhone)

	f.clock.Advance(authdomain.OTPTTL + time.Second)

	if _, err := f.svc.VerifyOTP(ctx, authdomain.VerifyRequest{Phone: testPhone, Code: code}); err != authdomain.ErrOTPExpired {
		t.Fatalf("expected otp_expired, got %v", err)
	}
}

func TestRequestOTP_ReplacesPendingCode(t *testing.T) {
	f := newFixture(t, "auth_reissue")
	ctx := context.Background()

	if err := f.svc.RequestOTP(ctx, testPhone); err != nil {
		t.Fatal(err)
	}

	// Advance so a lingering first code would already be near expiry.
	f.clock.Advance(4 * time.Minute)
	if err := f.svc.RequestOTP(ctx, testPhone); err != nil {
		t.Fatal(err)
	}

	var otp authdomain.OTPCode
	if err := f.db.First(&otp, "phone = ?", testPhone).Error; err != nil {
		t.Fatal(err)
	}
	if !otp.ExpiresAt.After(f.clock.Now().Add(4 * time.Minute)) {
		t.Fatalf("reissue must reset expiry, got %v", otp.ExpiresAt)
	}

	var count int64
	if err := f.db.Model(&authdomain.OTPCode{}).Where("phone = ?", testPhone).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected a single pending code per phone, got %d", count)
	}
}
