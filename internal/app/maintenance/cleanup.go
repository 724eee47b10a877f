package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/logger"
)

const defaultCodeSpec = "@hourly"

// Cleaner coordinates background maintenance, currently purging expired
// verification codes so abandoned login attempts do not accumulate.
type Cleaner struct {
	db   *gorm.DB
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	codeSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithCodeSchedule overrides the cron specification for verification code cleanup.
func WithCodeSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.codeSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:           db,
		now:          time.Now,
		codeSchedule: defaultCodeSpec,
		log:          logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.codeSchedule, func() {
		ctx := context.Background()
		if _, err := CleanupVerificationCodes(ctx, c.db, c.now()); err != nil {
			c.log.Warn("verification code cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.db != nil {
		if _, err := CleanupVerificationCodes(ctx, c.db, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// CleanupVerificationCodes removes codes past their expiry, returning the
// number of deleted rows.
func CleanupVerificationCodes(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup codes: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}
