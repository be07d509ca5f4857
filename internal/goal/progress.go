package goal

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Progress is the public campaign goal snapshot.
type Progress struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	GoalAmount         decimal.Decimal `json:"goal_amount"`
	AmountRaised       decimal.Decimal `json:"amount_raised"`
	ProgressPercentage decimal.Decimal `json:"progress_percentage"`
}

// Compute derives the public progress numbers. The base percentage seeds the
// bar with pledges collected outside the platform; the result is clamped so
// the bar never exceeds 100%.
func Compute(settings models.DonationGoalSettings, succeededTotal decimal.Decimal) Progress {
	progress := Progress{
		Title:        settings.Title,
		Description:  settings.Description,
		GoalAmount:   settings.GoalAmount,
		AmountRaised: succeededTotal,
	}
	if !settings.GoalAmount.IsPositive() {
		progress.ProgressPercentage = decimal.Zero
		return progress
	}

	base := settings.GoalAmount.Mul(settings.BaseProgressPercentage).Div(hundred)
	raised := succeededTotal.Add(base)
	percentage := raised.Div(settings.GoalAmount).Mul(hundred)
	if percentage.GreaterThan(hundred) {
		percentage = hundred
	}
	if percentage.IsNegative() {
		percentage = decimal.Zero
	}
	progress.AmountRaised = raised
	progress.ProgressPercentage = percentage
	return progress
}

type succeededSummer interface {
	SumSucceeded(ctx context.Context) (decimal.Decimal, error)
}

// Service exposes the campaign goal snapshot.
type Service struct {
	settings  Repository
	donations succeededSummer
}

// NewService validates dependencies and builds the service.
func NewService(settings Repository, donations succeededSummer) (*Service, error) {
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "goal settings repo required")
	}
	if donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donation summer required")
	}
	return &Service{settings: settings, donations: donations}, nil
}

// Current returns the live goal progress.
func (s *Service) Current(ctx context.Context) (*Progress, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load goal settings")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goal settings not configured")
	}
	total, err := s.donations.SumSucceeded(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum donations")
	}
	progress := Compute(*settings, total)
	return &progress, nil
}

// UpdateRequest is the admin payload for the goal settings row.
type UpdateRequest struct {
	Title                  string          `json:"title" validate:"required"`
	Description            string          `json:"description"`
	GoalAmount             decimal.Decimal `json:"goal_amount"`
	BaseProgressPercentage decimal.Decimal `json:"base_progress_percentage"`
}

// Update overwrites the singleton goal settings row.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*models.DonationGoalSettings, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if req.GoalAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal amount must not be negative")
	}
	if req.BaseProgressPercentage.IsNegative() || req.BaseProgressPercentage.GreaterThan(hundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base progress percentage must be between 0 and 100")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load goal settings")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goal settings not configured")
	}

	settings.Title = strings.TrimSpace(req.Title)
	settings.Description = strings.TrimSpace(req.Description)
	settings.GoalAmount = req.GoalAmount
	settings.BaseProgressPercentage = req.BaseProgressPercentage
	if err := s.settings.Update(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update goal settings")
	}
	return settings, nil
}

// Settings returns the raw singleton row for the back office form.
func (s *Service) Settings(ctx context.Context) (*models.DonationGoalSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load goal settings")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goal settings not configured")
	}
	return settings, nil
}
