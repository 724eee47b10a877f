package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/internal/database/testutil"
	"github.com/dineqr/dineqr/internal/models"
)

func TestCleanupVerificationCodes(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Now()

	expired := models.VerificationCode{Email: "old@example.com", Code: "111111", ExpiresAt: now.Add(-time.Minute)}
	live := models.VerificationCode{Email: "fresh@example.com", Code: "222222", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&live).Error)

	removed, err := CleanupVerificationCodes(context.Background(), db, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining models.VerificationCode
	require.NoError(t, db.First(&remaining).Error)
	require.Equal(t, "fresh@example.com", remaining.Email)
}

func TestCleanupVerificationCodesrequiresDB(t *testing.T) {
	_, err := CleanupVerificationCodes(context.Background(), nil, time.Now())
	require.Error(t, err)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Now()

	require.NoError(t, db.Create(&models.VerificationCode{
		Email: "old@example.com", Code: "111111", ExpiresAt: now.Add(-time.Minute),
	}).Error)

	cleaner := NewCleaner(db, WithNow(func() time.Time { return now }))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.VerificationCode{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCleanerStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	cleaner := NewCleaner(db, WithCodeSchedule("@every 1h"))
	require.NoError(t, cleaner.Start())
	<-cleaner.Stop().Done()
}
