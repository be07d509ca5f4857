package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
)

// ProfileRepository handles donor profile persistence.
type ProfileRepository interface {
	WithTx(tx *gorm.DB) ProfileRepository
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context) ([]models.Profile, error)
	ListEmails(ctx context.Context) ([]string, error)
	ListDonorEmails(ctx context.Context) ([]string, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a profile repository bound to the provided database.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) WithTx(tx *gorm.DB) ProfileRepository {
	if tx == nil {
		return r
	}
	return &profileRepository{db: tx}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	profile.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_login_at": at,
			"updated_at":    at,
		}).Error
}

// Delete removes a profile row and reports how many rows matched.
func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Profile{})
	return res.RowsAffected, res.Error
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var rows []models.Profile
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *profileRepository) ListEmails(ctx context.Context) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Order("email ASC").
		Pluck("email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

// ListDonorEmails returns the addresses of profiles with at least one
// succeeded donation.
func (r *profileRepository) ListDonorEmails(ctx context.Context) ([]string, error) {
	var emails []string
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Joins("JOIN donations ON donations.donor_id = profiles.id").
		Where("donations.status = ?", "succeeded").
		Distinct("profiles.email").
		Order("profiles.email ASC").
		Pluck("profiles.email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}
