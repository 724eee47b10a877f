package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/crypto"
	"github.com/dineqr/dineqr/pkg/mail"
	"github.com/dineqr/dineqr/pkg/metrics"
)

const (
	defaultCodeExpiry = 10 * time.Minute
	codeDigits        = 6
)

// ErrCodeInvalid covers both a wrong and an expired code. Callers must not be
// able to distinguish the two cases.
var ErrCodeInvalid = errors.New("verification: invalid or expired code")

// VerificationOption customises the VerificationService.
type VerificationOption func(*VerificationService)

// WithCodeExpiry overrides the code lifetime.
func WithCodeExpiry(d time.Duration) VerificationOption {
	return func(s *VerificationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock func() time.Time) VerificationOption {
	return func(s *VerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// VerificationService issues and consumes the emailed one-time codes used for
// both login and registration.
type VerificationService struct {
	db     *gorm.DB
	mailer mail.Mailer
	expiry time.Duration
	now    func() time.Time
}

// NewVerificationService constructs a verification service with the provided dependencies.
func NewVerificationService(db *gorm.DB, mailer mail.Mailer, opts ...VerificationOption) (*VerificationService, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}

	service := &VerificationService{
		db:     db,
		mailer: mailer,
		expiry: defaultCodeExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// SendCode generates a fresh code for the email, replaces any prior codes, and
// dispatches it through the mailer. Mail transport failures never fail the
// call: the code is already durably stored, so the failure is reported as a
// warning string instead. The delete+insert runs in one transaction so two
// concurrent sends for the same email settle on exactly one live code.
func (s *VerificationService) SendCode(ctx context.Context, email string) (string, error) {
	ctx = ensuredContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", errors.New("verification service: email is required")
	}

	code, err := crypto.GenerateNumericCode(codeDigits)
	if err != nil {
		return "", fmt.Errorf("verification service: generate code: %w", err)
	}

	record := models.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(s.expiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).
			Delete(&models.VerificationCode{}).Error; err != nil {
			return fmt.Errorf("cleanup existing codes: %w", err)
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("store code: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("verification service: %w", err)
	}

	metrics.VerificationCodes.WithLabelValues("issued").Inc()

	if s.mailer == nil {
		return "Email service not configured. Please contact support.", nil
	}

	message := mail.Message{
		To:      []string{email},
		Subject: "Your Verification Code",
		Body:    verificationBody(code),
		HTML:    true,
	}
	if mailErr := s.mailer.Send(ctx, message); mailErr != nil {
		if errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return "Email service not configured. Please contact support.", nil
		}
		return "Email delivery failed. Please try again or contact support.", nil
	}

	return "", nil
}

// Consume validates and burns a one-time code. The lookup requires an exact
// email+code match that has not expired; a matched row is deleted so the code
// is single-use. Any miss reports ErrCodeInvalid.
func (s *VerificationService) Consume(ctx context.Context, email, code string) error {
	ctx = ensuredContext(ctx)

	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)

	var record models.VerificationCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ? AND expires_at > ?", email, code, s.now()).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.VerificationCodes.WithLabelValues("rejected").Inc()
			return ErrCodeInvalid
		}
		return fmt.Errorf("verification service: find code: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&record).Error; err != nil {
		return fmt.Errorf("verification service: consume code: %w", err)
	}

	metrics.VerificationCodes.WithLabelValues("consumed").Inc()
	return nil
}

// PurgeExpired removes codes past their expiry, returning how many were deleted.
func (s *VerificationService) PurgeExpired(ctx context.Context) (int64, error) {
	ctx = ensuredContext(ctx)

	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("verification service: purge expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func verificationBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verification Code</h2>
  <p>Your verification code is:</p>
  <div style="background-color: #f0f0f0; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">%s</div>
  <p>This code will expire in 10 minutes.</p>
  <p>If you didn't request this code, please ignore this email.</p>
</div>`, code)
}
