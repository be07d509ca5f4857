package mailing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
)

type recipientSource interface {
	ListEmails(ctx context.Context) ([]string, error)
	ListDonorEmails(ctx context.Context) ([]string, error)
}

// CreateCampaignRequest is the admin payload for one mailing batch.
type CreateCampaignRequest struct {
	Subject        string `json:"subject" validate:"required"`
	BodyHTML       string `json:"body_html" validate:"required"`
	RecipientGroup string `json:"recipient_group" validate:"required"`
}

// Service creates campaigns and drives their delivery.
type Service struct {
	campaigns CampaignRepository
	profiles  recipientSource
	sender    Sender
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams bundles the mailing service dependencies.
type ServiceParams struct {
	Campaigns CampaignRepository
	Profiles  recipientSource
	Sender    Sender
	Logger    *logger.Logger
	Now       func() time.Time
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Campaigns == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "campaign repo required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repo required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		campaigns: params.Campaigns,
		profiles:  params.Profiles,
		sender:    params.Sender,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// CreateAndSend records the campaign, resolves the audience at send time,
// snapshots it on the row, and delivers the batch. The stored recipient list
// is what was actually mailed, not what a later query would return.
func (s *Service) CreateAndSend(ctx context.Context, createdBy uuid.UUID, req CreateCampaignRequest) (*models.Campaign, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	if strings.TrimSpace(req.BodyHTML) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body_html is required")
	}
	group, err := enums.ParseRecipientGroup(req.RecipientGroup)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown recipient group")
	}

	recipients, err := s.resolveRecipients(ctx, group)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve recipients")
	}

	campaign := &models.Campaign{
		Subject:        subject,
		BodyHTML:       req.BodyHTML,
		RecipientGroup: group,
		Status:         enums.CampaignStatusSending,
		Recipients:     pq.StringArray(recipients),
		CreatedBy:      createdBy,
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create campaign")
	}

	if err := s.sender.Send(ctx, subject, req.BodyHTML, recipients); err != nil {
		s.logg.Error(ctx, "campaign delivery failed", err)
		campaign.Status = enums.CampaignStatusFailed
		campaign.RecipientCount = len(recipients)
		if markErr := s.campaigns.MarkOutcome(ctx, campaign.ID, enums.CampaignStatusFailed, len(recipients), nil); markErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, markErr, "mark campaign failed")
		}
		return campaign, nil
	}

	sentAt := s.now()
	campaign.Status = enums.CampaignStatusSent
	campaign.RecipientCount = len(recipients)
	campaign.SentAt = &sentAt
	if err := s.campaigns.MarkOutcome(ctx, campaign.ID, enums.CampaignStatusSent, len(recipients), &sentAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark campaign sent")
	}
	return campaign, nil
}

// List returns campaigns newest first.
func (s *Service) List(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.campaigns.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list campaigns")
	}
	return rows, nil
}

func (s *Service) resolveRecipients(ctx context.Context, group enums.RecipientGroup) ([]string, error) {
	switch group {
	case enums.RecipientGroupDonors:
		return s.profiles.ListDonorEmails(ctx)
	default:
		return s.profiles.ListEmails(ctx)
	}
}
