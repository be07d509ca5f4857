package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:analytics_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Profile{}, &models.Donation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedDonation(t *testing.T, db *gorm.DB, donorID uuid.UUID, amount string, status enums.DonationStatus, createdAt time.Time) {
	t.Helper()
	sessionID := "cs_test_" + uuid.NewString()[:8]
	donation := &models.Donation{
		DonorID:         donorID,
		Amount:          decimal.RequireFromString(amount),
		Status:          status,
		DonationType:    enums.DonationTypePersonal,
		StripeSessionID: &sessionID,
	}
	if err := db.Create(donation).Error; err != nil {
		t.Fatalf("seed donation: %v", err)
	}
	if err := db.Model(&models.Donation{}).Where("id = ?", donation.ID).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate donation: %v", err)
	}
}

func TestOverviewAggregatesSucceededOnly(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)

	alice := uuid.New()
	bob := uuid.New()
	seedDonation(t, db, alice, "100.00", enums.DonationStatusSucceeded, now.AddDate(0, 0, -1))
	seedDonation(t, db, alice, "50.50", enums.DonationStatusSucceeded, now.AddDate(0, 0, -1))
	seedDonation(t, db, bob, "25.00", enums.DonationStatusSucceeded, now.AddDate(0, 0, -3))
	seedDonation(t, db, bob, "999.00", enums.DonationStatusPending, now)
	seedDonation(t, db, bob, "999.00", enums.DonationStatusFailed, now)

	svc, err := NewService(NewRepository(db), func() time.Time { return now })
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if !overview.TotalRaised.Equal(decimal.RequireFromString("175.50")) {
		t.Fatalf("expected 175.50 raised, got %s", overview.TotalRaised)
	}
	if overview.DonationCount != 3 {
		t.Fatalf("expected 3 donations, got %d", overview.DonationCount)
	}
	if overview.DonorCount != 2 {
		t.Fatalf("expected 2 donors, got %d", overview.DonorCount)
	}
	if !overview.AverageDonation.Equal(decimal.RequireFromString("58.50")) {
		t.Fatalf("expected 58.50 average, got %s", overview.AverageDonation)
	}
	if len(overview.Recent) != 3 {
		t.Fatalf("expected 3 recent donations, got %d", len(overview.Recent))
	}
}

func TestOverviewGroupsByDayInOrder(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
	donor := uuid.New()

	dayOne := time.Date(2025, time.August, 10, 9, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2025, time.August, 12, 18, 30, 0, 0, time.UTC)
	seedDonation(t, db, donor, "10.00", enums.DonationStatusSucceeded, dayOne)
	seedDonation(t, db, donor, "15.00", enums.DonationStatusSucceeded, dayOne.Add(4*time.Hour))
	seedDonation(t, db, donor, "20.00", enums.DonationStatusSucceeded, dayTwo)

	svc, err := NewService(NewRepository(db), func() time.Time { return now })
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if len(overview.DonationsByDay) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(overview.DonationsByDay))
	}
	first, second := overview.DonationsByDay[0], overview.DonationsByDay[1]
	if !first.Day.Before(second.Day) {
		t.Fatalf("buckets must come back oldest first")
	}
	if first.Count != 2 || !first.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("unexpected first bucket: %+v", first)
	}
	if second.Count != 1 || !second.Total.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected second bucket: %+v", second)
	}
}

func TestOverviewEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if !overview.TotalRaised.IsZero() || overview.DonationCount != 0 || overview.DonorCount != 0 {
		t.Fatalf("expected zeroes, got %+v", overview)
	}
	if !overview.AverageDonation.IsZero() {
		t.Fatalf("average over nothing must be zero")
	}
	if len(overview.DonationsByDay) != 0 || len(overview.Recent) != 0 {
		t.Fatalf("expected empty series")
	}
}

func TestListDonorsIncludesProfilesWithoutDonations(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	donor := &models.Profile{Email: "donor@example.com", FirstName: "A", LastName: "B", PasswordHash: "x"}
	browser := &models.Profile{Email: "browser@example.com", FirstName: "C", LastName: "D", PasswordHash: "x"}
	for _, p := range []*models.Profile{donor, browser} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed profile: %v", err)
		}
	}
	seedDonation(t, db, donor.ID, "40.00", enums.DonationStatusSucceeded, now)
	seedDonation(t, db, donor.ID, "10.00", enums.DonationStatusSucceeded, now)
	seedDonation(t, db, donor.ID, "99.00", enums.DonationStatusFailed, now)

	svc, err := NewService(NewRepository(db), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	rows, err := svc.ListDonors(context.Background())
	if err != nil {
		t.Fatalf("list donors: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byEmail := make(map[string]DonorSummary, len(rows))
	for _, row := range rows {
		byEmail[row.Email] = row
	}
	if got := byEmail["donor@example.com"]; !got.TotalDonated.Equal(decimal.RequireFromString("50.00")) || got.DonationCount != 2 {
		t.Fatalf("unexpected donor aggregate: %+v", got)
	}
	if got := byEmail["browser@example.com"]; !got.TotalDonated.IsZero() || got.DonationCount != 0 {
		t.Fatalf("profiles without donations must report zero: %+v", got)
	}
}
