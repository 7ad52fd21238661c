package notify

import (
	"context"
	"fmt"

	"github.com/sparkevents/spark-backend/internal/config"
	"github.com/sparkevents/spark-backend/internal/logging"
)

// Recipient is a member to be told their matches are out. Either contact
// field may be empty; whichever is present gets used.
type Recipient struct {
	MemberID int64
	Email    string
	Phone    string
}

// Service sends results-released notifications. Delivery is best effort:
// provider errors are logged and never propagate to the caller.
type Service interface {
	NotifyMatchesReady(ctx context.Context, eventName string, recipients []Recipient)
}

type service struct {
	email EmailProvider
	sms   SMSProvider
}

// NewService builds a notifier from the configured providers.
func NewService(cfg *config.Config) Service {
	var email EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		email = NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
	default:
		email = NewMockEmailProvider()
	}

	var sms SMSProvider
	switch cfg.SMSProvider {
	case "twilio":
		sms = NewTwilioSMSProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	default:
		sms = NewMockSMSProvider()
	}

	return &service{email: email, sms: sms}
}

// NewServiceWithProviders wires explicit providers, used by tests.
func NewServiceWithProviders(email EmailProvider, sms SMSProvider) Service {
	return &service{email: email, sms: sms}
}

func (s *service) NotifyMatchesReady(ctx context.Context, eventName string, recipients []Recipient) {
	subject := fmt.Sprintf("Your matches from %s are ready", eventName)
	body := fmt.Sprintf(
		"The results from %s are in! Log in to see who you matched with and the contact details they chose to share.",
		eventName,
	)

	for _, r := range recipients {
		if r.Email != "" {
			if err := s.email.SendEmail(ctx, &EmailMessage{To: r.Email, Subject: subject, Body: body}); err != nil {
				logging.Log.WithError(err).WithField("member_id", r.MemberID).Warn("match-ready email failed")
			}
			continue
		}
		if r.Phone != "" {
			if err := s.sms.SendSMS(ctx, &SMSMessage{To: r.Phone, Body: body}); err != nil {
				logging.Log.WithError(err).WithField("member_id", r.MemberID).Warn("match-ready SMS failed")
			}
		}
	}
}
