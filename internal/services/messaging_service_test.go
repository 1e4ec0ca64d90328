package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingSMSGateway struct {
	mu    sync.Mutex
	sends []recordedSend
}

type recordedSend struct {
	msisdn   string
	message  string
	senderID string
}

func (g *recordingSMSGateway) SendSMS(msisdn, message, senderID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, recordedSend{msisdn: msisdn, message: message, senderID: senderID})
	return "MSG-1", nil
}

type recordingEmailGateway struct {
	mu    sync.Mutex
	sends []string
}

func (g *recordingEmailGateway) SendEmail(to, subject, body string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, to)
	return "EMAIL-1", nil
}

type messagingFixture struct {
	service     *MessagingServiceImpl
	companyRepo *fakeCompanyRepo
	sentRepo    *fakeSentMessageRepo
	smsGateway  *recordingSMSGateway
	emailGw     *recordingEmailGateway
	dispatcher  *Dispatcher
	company     *models.Company
}

func newMessagingFixture(t *testing.T, smsBalance, emailBalance int64) *messagingFixture {
	t.Helper()
	company := &models.Company{
		ID:         primitive.NewObjectID(),
		Name:       "Acme",
		SMSCount:   smsBalance,
		EmailCount: emailBalance,
	}
	companyRepo := newFakeCompanyRepo(company)
	sentRepo := &fakeSentMessageRepo{}
	smsGateway := &recordingSMSGateway{}
	emailGw := &recordingEmailGateway{}
	dispatcher := NewDispatcher(2, 64)

	return &messagingFixture{
		service:     NewMessagingService(NewLedgerService(companyRepo), sentRepo, smsGateway, emailGw, dispatcher, "JamboSMS"),
		companyRepo: companyRepo,
		sentRepo:    sentRepo,
		smsGateway:  smsGateway,
		emailGw:     emailGw,
		dispatcher:  dispatcher,
		company:     company,
	}
}

func TestSendBulkDebitsAndDispatches(t *testing.T) {
	f := newMessagingFixture(t, 10, 0)

	cost, err := f.service.SendBulk(context.Background(), f.company, "hello", []string{"254700000001", "254700000002"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), cost)
	assert.Equal(t, int64(8), f.companyRepo.balance(f.company.ID, models.ChannelSMS))

	f.dispatcher.Stop()
	assert.Len(t, f.smsGateway.sends, 2)
	assert.Equal(t, "JamboSMS", f.smsGateway.sends[0].senderID)
	assert.Equal(t, 2, f.sentRepo.count())
}

func TestSendBulkMultiSegmentCost(t *testing.T) {
	f := newMessagingFixture(t, 10, 0)

	message := strings.Repeat("a", 161)
	cost, err := f.service.SendBulk(context.Background(), f.company, message, []string{"254700000001", "254700000002"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), cost)
	assert.Equal(t, int64(6), f.companyRepo.balance(f.company.ID, models.ChannelSMS))
	f.dispatcher.Stop()
}

func TestSendBulkInsufficientBalance(t *testing.T) {
	f := newMessagingFixture(t, 1, 0)

	_, err := f.service.SendBulk(context.Background(), f.company, "hello", []string{"254700000001", "254700000002"})

	var insufficient *repositories.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, models.ChannelSMS, insufficient.Channel)
	assert.Equal(t, int64(1), insufficient.Balance)

	// Nothing was debited and nothing was dispatched
	assert.Equal(t, int64(1), f.companyRepo.balance(f.company.ID, models.ChannelSMS))
	f.dispatcher.Stop()
	assert.Empty(t, f.smsGateway.sends)
}

func TestSendBulkEmptyRecipients(t *testing.T) {
	f := newMessagingFixture(t, 10, 0)
	defer f.dispatcher.Stop()

	_, err := f.service.SendBulk(context.Background(), f.company, "hello", nil)
	assert.Error(t, err)
}

func TestSendBulkUsesActiveBrandName(t *testing.T) {
	f := newMessagingFixture(t, 10, 0)
	f.company.Brand = &models.Brand{Name: "ACME", IsActive: true, IsApproved: true}

	_, err := f.service.SendBulk(context.Background(), f.company, "hello", []string{"254700000001"})
	require.NoError(t, err)

	f.dispatcher.Stop()
	require.Len(t, f.smsGateway.sends, 1)
	assert.Equal(t, "ACME", f.smsGateway.sends[0].senderID)
}

func TestSendBulkIgnoresUnapprovedBrand(t *testing.T) {
	f := newMessagingFixture(t, 10, 0)
	f.company.Brand = &models.Brand{Name: "ACME", IsActive: true, IsApproved: false}

	_, err := f.service.SendBulk(context.Background(), f.company, "hello", []string{"254700000001"})
	require.NoError(t, err)

	f.dispatcher.Stop()
	require.Len(t, f.smsGateway.sends, 1)
	assert.Equal(t, "JamboSMS", f.smsGateway.sends[0].senderID)
}

func TestSendPersonalizedRendersPerContact(t *testing.T) {
	f := newMessagingFixture(t, 10, 0)

	contacts := []sms.Contact{
		{FirstName: "John", Phone: "254700000001"},
		{FirstName: "Jane", Phone: "254700000002"},
	}
	cost, err := f.service.SendPersonalized(context.Background(), f.company, "your order is ready", "Dear", contacts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cost)

	f.dispatcher.Stop()
	require.Len(t, f.smsGateway.sends, 2)
	messages := []string{f.smsGateway.sends[0].message, f.smsGateway.sends[1].message}
	assert.Contains(t, messages, "Dear John, your order is ready")
	assert.Contains(t, messages, "Dear Jane, your order is ready")
}

func TestSendEmailDebitsPerRecipient(t *testing.T) {
	f := newMessagingFixture(t, 0, 5)

	cost, err := f.service.SendEmail(context.Background(), f.company, "Subject", "Body", []string{"a@example.com", "b@example.com", "c@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), cost)
	assert.Equal(t, int64(2), f.companyRepo.balance(f.company.ID, models.ChannelEmail))

	f.dispatcher.Stop()
	assert.Len(t, f.emailGw.sends, 3)
}

func TestSendEmailInsufficientBalance(t *testing.T) {
	f := newMessagingFixture(t, 0, 1)
	defer f.dispatcher.Stop()

	_, err := f.service.SendEmail(context.Background(), f.company, "Subject", "Body", []string{"a@example.com", "b@example.com"})

	var insufficient *repositories.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, models.ChannelEmail, insufficient.Channel)
}

func TestNotifyDoesNotDebit(t *testing.T) {
	f := newMessagingFixture(t, 3, 0)

	f.service.Notify("254708374149", "The recharge request was successful.")

	f.dispatcher.Stop()
	require.Len(t, f.smsGateway.sends, 1)
	assert.Equal(t, int64(3), f.companyRepo.balance(f.company.ID, models.ChannelSMS))
}
