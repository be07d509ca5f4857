package mailing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wiibec/donations-backend/pkg/config"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// Sender delivers one campaign message to a batch of addresses.
type Sender interface {
	Send(ctx context.Context, subject, bodyHTML string, recipients []string) error
}

type sendgridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendgridSender builds the production sender from configuration.
func NewSendgridSender(cfg config.SendgridConfig) (Sender, error) {
	if cfg.APIKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sendgrid api key required")
	}
	if cfg.DefaultFrom == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sendgrid from address required")
	}
	return &sendgridSender{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		from:     cfg.DefaultFrom,
		fromName: cfg.FromName,
	}, nil
}

// Send delivers the message with every recipient on an individual
// personalization so addresses are not disclosed to each other.
func (s *sendgridSender) Send(ctx context.Context, subject, bodyHTML string, recipients []string) error {
	if len(recipients) == 0 {
		return nil
	}

	from := sgmail.NewEmail(s.fromName, s.from)
	message := sgmail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject
	message.AddContent(sgmail.NewContent("text/html", bodyHTML))
	for _, recipient := range recipients {
		personalization := sgmail.NewPersonalization()
		personalization.AddTos(sgmail.NewEmail("", recipient))
		message.AddPersonalizations(personalization)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sendgrid send")
	}
	if response.StatusCode >= http.StatusBadRequest {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid rejected the batch with status %d", response.StatusCode))
	}
	return nil
}
