package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/sms"
	"github.com/jambotech/jambosms-backend/pkg/smsgateway"
)

// Compile-time check to ensure MessagingServiceImpl implements MessagingService
var _ MessagingService = (*MessagingServiceImpl)(nil)

// MessagingServiceImpl meters, debits and dispatches outbound sends. Debits
// happen synchronously so the caller sees insufficient-balance rejections;
// the gateway round-trips are queued on the dispatcher.
type MessagingServiceImpl struct {
	ledger          LedgerService
	sentMessageRepo repositories.SentMessageRepository
	smsGateway      smsgateway.Gateway
	emailGateway    smsgateway.EmailGateway
	dispatcher      *Dispatcher
	defaultSenderID string
}

// NewMessagingService creates a new MessagingServiceImpl
func NewMessagingService(
	ledger LedgerService,
	sentMessageRepo repositories.SentMessageRepository,
	smsGateway smsgateway.Gateway,
	emailGateway smsgateway.EmailGateway,
	dispatcher *Dispatcher,
	defaultSenderID string,
) *MessagingServiceImpl {
	return &MessagingServiceImpl{
		ledger:          ledger,
		sentMessageRepo: sentMessageRepo,
		smsGateway:      smsGateway,
		emailGateway:    emailGateway,
		dispatcher:      dispatcher,
		defaultSenderID: defaultSenderID,
	}
}

// SendBulk debits the cost of a uniform send and queues one gateway send per
// recipient.
func (s *MessagingServiceImpl) SendBulk(ctx context.Context, company *models.Company, message string, recipients []string) (int64, error) {
	if len(recipients) == 0 {
		return 0, errors.New("recipient list is empty")
	}

	cost := sms.CostSMS(message, len(recipients))
	if _, err := s.ledger.Debit(ctx, company.ID, models.ChannelSMS, cost); err != nil {
		return 0, err
	}

	units := sms.Segments(message)
	senderID := s.senderFor(company)
	for _, recipient := range recipients {
		s.enqueueSMS(company, recipient, message, senderID, units)
	}
	return cost, nil
}

// SendPersonalized debits the summed cost of every rendered message and queues
// the per-contact sends.
func (s *MessagingServiceImpl) SendPersonalized(ctx context.Context, company *models.Company, message, greeting string, contacts []sms.Contact) (int64, error) {
	if len(contacts) == 0 {
		return 0, errors.New("contact list is empty")
	}

	cost := sms.CostPersonalized(message, greeting, contacts)
	if _, err := s.ledger.Debit(ctx, company.ID, models.ChannelSMS, cost); err != nil {
		return 0, err
	}

	senderID := s.senderFor(company)
	for _, contact := range contacts {
		rendered := sms.Render(greeting, contact.FirstName, message)
		s.enqueueSMS(company, contact.Phone, rendered, senderID, sms.Segments(rendered))
	}
	return cost, nil
}

// SendEmail debits one unit per recipient and queues the email sends.
func (s *MessagingServiceImpl) SendEmail(ctx context.Context, company *models.Company, subject, body string, recipients []string) (int64, error) {
	if len(recipients) == 0 {
		return 0, errors.New("recipient list is empty")
	}

	cost := sms.CostEmail(len(recipients))
	if _, err := s.ledger.Debit(ctx, company.ID, models.ChannelEmail, cost); err != nil {
		return 0, err
	}

	companyID := company.ID
	for _, recipient := range recipients {
		recipient := recipient
		s.dispatcher.Enqueue(func(taskCtx context.Context) {
			entry := &models.SentMessage{
				CompanyID: companyID,
				Channel:   models.ChannelEmail,
				Recipient: recipient,
				Units:     1,
				Status:    "SENT",
			}
			messageID, err := s.emailGateway.SendEmail(recipient, subject, body)
			if err != nil {
				slog.Error("Email send failed", "error", err, "recipient", recipient)
				entry.Status = "FAILED"
			}
			entry.MessageID = messageID
			if err := s.sentMessageRepo.Create(taskCtx, entry); err != nil {
				slog.Error("Failed to log sent email", "error", err, "recipient", recipient)
			}
		})
	}
	return cost, nil
}

// Notify sends a system SMS without debiting any balance.
func (s *MessagingServiceImpl) Notify(phone, message string) {
	s.dispatcher.Enqueue(func(taskCtx context.Context) {
		messageID, err := s.smsGateway.SendSMS(phone, message, s.defaultSenderID)
		if err != nil {
			slog.Error("Notification send failed", "error", err, "phone", phone)
			return
		}
		entry := &models.SentMessage{
			Channel:   models.ChannelSMS,
			Recipient: phone,
			MessageID: messageID,
			Units:     sms.Segments(message),
			Status:    "SENT",
		}
		if err := s.sentMessageRepo.Create(taskCtx, entry); err != nil {
			slog.Error("Failed to log notification", "error", err, "phone", phone)
		}
	})
}

func (s *MessagingServiceImpl) enqueueSMS(company *models.Company, recipient, message, senderID string, units int64) {
	companyID := company.ID
	s.dispatcher.Enqueue(func(taskCtx context.Context) {
		entry := &models.SentMessage{
			CompanyID: companyID,
			Channel:   models.ChannelSMS,
			Recipient: recipient,
			Units:     units,
			Status:    "SENT",
		}
		messageID, err := s.smsGateway.SendSMS(recipient, message, senderID)
		if err != nil {
			slog.Error("SMS send failed", "error", err, "recipient", recipient)
			entry.Status = "FAILED"
		}
		entry.MessageID = messageID
		if err := s.sentMessageRepo.Create(taskCtx, entry); err != nil {
			slog.Error("Failed to log sent SMS", "error", err, "recipient", recipient)
		}
	})
}

// senderFor picks the company's brand name when it is approved and paid for,
// the platform default otherwise.
func (s *MessagingServiceImpl) senderFor(company *models.Company) string {
	if company.Brand != nil && company.Brand.IsActive && company.Brand.IsApproved {
		return company.Brand.Name
	}
	return s.defaultSenderID
}
