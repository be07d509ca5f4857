package donations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

func setupDonationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:donations_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Donation{}))
	return db
}

func seedDonation(t *testing.T, db *gorm.DB, donorID uuid.UUID, amount string, status enums.DonationStatus, createdAt time.Time) models.Donation {
	t.Helper()

	sessionID := "cs_test_" + uuid.NewString()
	donation := models.Donation{
		DonorID:         donorID,
		Amount:          decimal.RequireFromString(amount),
		Currency:        enums.CurrencyCAD,
		Status:          status,
		DonationType:    enums.DonationTypePersonal,
		PaymentMethod:   "card",
		StripeSessionID: &sessionID,
		CreatedAt:       createdAt,
	}
	require.NoError(t, db.Create(&donation).Error)
	return donation
}

func TestRepositoryFindByStripeSessionID(t *testing.T) {
	db := setupDonationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedDonation(t, db, uuid.New(), "25.00", enums.DonationStatusPending, time.Now().UTC())

	found, err := repo.FindByStripeSessionID(ctx, *seeded.StripeSessionID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, seeded.ID, found.ID)
	assert.True(t, found.Amount.Equal(decimal.RequireFromString("25.00")))

	missing, err := repo.FindByStripeSessionID(ctx, "cs_test_unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryListByDonorNewestFirst(t *testing.T) {
	db := setupDonationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	donorID := uuid.New()
	base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	older := seedDonation(t, db, donorID, "10.00", enums.DonationStatusSucceeded, base)
	newer := seedDonation(t, db, donorID, "20.00", enums.DonationStatusSucceeded, base.Add(48*time.Hour))
	seedDonation(t, db, uuid.New(), "99.00", enums.DonationStatusSucceeded, base)

	rows, err := repo.ListByDonor(ctx, donorID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestRepositoryListSucceededByDonorExcludesOtherStatuses(t *testing.T) {
	db := setupDonationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	donorID := uuid.New()
	now := time.Now().UTC()
	succeeded := seedDonation(t, db, donorID, "50.00", enums.DonationStatusSucceeded, now)
	seedDonation(t, db, donorID, "30.00", enums.DonationStatusPending, now)
	seedDonation(t, db, donorID, "40.00", enums.DonationStatusFailed, now)

	rows, err := repo.ListSucceededByDonor(ctx, donorID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, succeeded.ID, rows[0].ID)
}

func TestRepositorySumSucceededIsExact(t *testing.T) {
	db := setupDonationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	total, err := repo.SumSucceeded(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	now := time.Now().UTC()
	seedDonation(t, db, uuid.New(), "0.10", enums.DonationStatusSucceeded, now)
	seedDonation(t, db, uuid.New(), "0.20", enums.DonationStatusSucceeded, now)
	seedDonation(t, db, uuid.New(), "100.01", enums.DonationStatusSucceeded, now)
	seedDonation(t, db, uuid.New(), "999.99", enums.DonationStatusFailed, now)

	total, err = repo.SumSucceeded(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("100.31")), "got %s", total)
}

func TestRepositoryListRecentHonorsLimit(t *testing.T) {
	db := setupDonationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedDonation(t, db, uuid.New(), "5.00", enums.DonationStatusSucceeded, base.Add(time.Duration(i)*time.Hour))
	}

	rows, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].CreatedAt.After(rows[2].CreatedAt))
}
