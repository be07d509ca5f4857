package messages

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// SubmitRequest is the public contact form payload.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// Service accepts public contact messages and serves the admin inbox.
type Service struct {
	messages Repository
}

// NewService validates dependencies and builds the service.
func NewService(messages Repository) (*Service, error) {
	if messages == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "message repo required")
	}
	return &Service{messages: messages}, nil
}

// Submit records an inbound message from the public contact form.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.ContactMessage, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if name == "" || email == "" || subject == "" || body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email, subject, and body are required")
	}

	message := &models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Body:    body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact message")
	}
	return message, nil
}

// List returns the admin inbox newest first.
func (s *Service) List(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := s.messages.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contact messages")
	}
	return rows, nil
}

// MarkRead flags a message as handled.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	affected, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark contact message read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "contact message not found")
	}
	return nil
}
