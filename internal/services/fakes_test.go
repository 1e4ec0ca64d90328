package services

import (
	"context"
	"sort"
	"sync"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/sms"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository doubles used across the service tests.

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[primitive.ObjectID]*models.Company
}

func newFakeCompanyRepo(companies ...*models.Company) *fakeCompanyRepo {
	repo := &fakeCompanyRepo{companies: make(map[primitive.ObjectID]*models.Company)}
	for _, company := range companies {
		repo.companies[company.ID] = company
	}
	return repo
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if company.ID.IsZero() {
		company.ID = primitive.NewObjectID()
	}
	r.companies[company.ID] = company
	return nil
}

func (r *fakeCompanyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *company
	return &copied, nil
}

func (r *fakeCompanyRepo) CreditBalance(ctx context.Context, id primitive.ObjectID, channel models.Channel, units int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[id]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	if channel == models.ChannelEmail {
		company.EmailCount += units
		return company.EmailCount, nil
	}
	company.SMSCount += units
	return company.SMSCount, nil
}

func (r *fakeCompanyRepo) DebitBalance(ctx context.Context, id primitive.ObjectID, channel models.Channel, units int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[id]
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	balance := company.Balance(channel)
	if balance < units {
		return 0, &repositories.InsufficientBalanceError{Channel: channel, Balance: balance}
	}
	if channel == models.ChannelEmail {
		company.EmailCount -= units
		return company.EmailCount, nil
	}
	company.SMSCount -= units
	return company.SMSCount, nil
}

func (r *fakeCompanyRepo) ActivateBrand(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if company.Brand == nil {
		return mongo.ErrNoDocuments
	}
	company.Brand.IsActive = true
	return nil
}

func (r *fakeCompanyRepo) balance(id primitive.ObjectID, channel models.Channel) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.companies[id].Balance(channel)
}

type fakePlanRepo struct {
	plans []*models.RechargePlan
}

func (r *fakePlanRepo) Create(ctx context.Context, plan *models.RechargePlan) error {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	r.plans = append(r.plans, plan)
	return nil
}

func (r *fakePlanRepo) FindGlobal(ctx context.Context) ([]*models.RechargePlan, error) {
	var out []*models.RechargePlan
	for _, plan := range r.plans {
		if plan.CompanyID == nil {
			out = append(out, plan)
		}
	}
	sortPlans(out)
	return out, nil
}

func (r *fakePlanRepo) FindByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.RechargePlan, error) {
	var out []*models.RechargePlan
	for _, plan := range r.plans {
		if plan.CompanyID != nil && *plan.CompanyID == companyID {
			out = append(out, plan)
		}
	}
	sortPlans(out)
	return out, nil
}

func sortPlans(plans []*models.RechargePlan) {
	sort.Slice(plans, func(i, j int) bool { return plans[i].PriceLimit < plans[j].PriceLimit })
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests []*models.RechargeRequest
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *models.RechargeRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request.ID.IsZero() {
		request.ID = primitive.NewObjectID()
	}
	r.requests = append(r.requests, request)
	return nil
}

func (r *fakeRequestRepo) FindLatestOpenByPhone(ctx context.Context, phone string) (*models.RechargeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.RechargeRequest
	for _, request := range r.requests {
		if request.CustomerNumber != phone || request.Completed {
			continue
		}
		if latest == nil || request.CreatedAt.After(latest.CreatedAt) {
			latest = request
		}
	}
	if latest == nil {
		return nil, mongo.ErrNoDocuments
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeRequestRepo) FindByCheckoutID(ctx context.Context, checkoutID string) (*models.RechargeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.CheckoutRequestID == checkoutID {
			copied := *request
			return &copied, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeRequestRepo) Complete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.ID == id {
			if request.Completed {
				return repositories.ErrAlreadySettled
			}
			request.Completed = true
			return nil
		}
	}
	return repositories.ErrAlreadySettled
}

func (r *fakeRequestRepo) Reopen(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.ID == id {
			request.Completed = false
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (r *fakeRequestRepo) byID(id primitive.ObjectID) *models.RechargeRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.ID == id {
			return request
		}
	}
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	r.payments = append(r.payments, payment)
	return nil
}

func (r *fakePaymentRepo) FindByCompany(ctx context.Context, companyID primitive.ObjectID, page, limit int) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, payment := range r.payments {
		if payment.CompanyID == companyID {
			out = append(out, payment)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type fakeSentMessageRepo struct {
	mu       sync.Mutex
	messages []*models.SentMessage
}

func (r *fakeSentMessageRepo) Create(ctx context.Context, message *models.SentMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeSentMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeFeeRepo struct {
	fee string
	set bool
}

func (r *fakeFeeRepo) Get(ctx context.Context) (*models.BrandingFee, error) {
	if !r.set {
		return nil, mongo.ErrNoDocuments
	}
	return &models.BrandingFee{Fee: r.fee}, nil
}

func (r *fakeFeeRepo) Set(ctx context.Context, fee string) error {
	r.fee = fee
	r.set = true
	return nil
}

// fakeMessaging records notifications instead of touching any gateway.
type fakeMessaging struct {
	mu            sync.Mutex
	notifications []string
}

func (m *fakeMessaging) SendBulk(ctx context.Context, company *models.Company, message string, recipients []string) (int64, error) {
	return 0, nil
}

func (m *fakeMessaging) SendPersonalized(ctx context.Context, company *models.Company, message, greeting string, contacts []sms.Contact) (int64, error) {
	return 0, nil
}

func (m *fakeMessaging) SendEmail(ctx context.Context, company *models.Company, subject, body string, recipients []string) (int64, error) {
	return 0, nil
}

func (m *fakeMessaging) Notify(phone, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, phone+": "+message)
}

func (m *fakeMessaging) notificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

// fakeInitiator stands in for the payment gateway client.
type fakeInitiator struct {
	response *mpesa.STKPushResponse
	err      error
	calls    int
}

func (f *fakeInitiator) STKPush(ctx context.Context, phone, amount, transactionDesc string) (*mpesa.STKPushResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &mpesa.STKPushResponse{
		CheckoutRequestID: "ws_CO_TEST_0001",
		ResponseCode:      "0",
	}, nil
}
