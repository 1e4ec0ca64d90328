package services

import (
	"context"
	"log/slog"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure LedgerServiceImpl implements LedgerService
var _ LedgerService = (*LedgerServiceImpl)(nil)

// LedgerServiceImpl mediates all balance mutation through the company
// repository's atomic operations.
type LedgerServiceImpl struct {
	companyRepo repositories.CompanyRepository
}

// NewLedgerService creates a new LedgerServiceImpl
func NewLedgerService(companyRepo repositories.CompanyRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{companyRepo: companyRepo}
}

// Credit adds units to a company's channel balance
func (s *LedgerServiceImpl) Credit(ctx context.Context, companyID primitive.ObjectID, channel models.Channel, units int64) (int64, error) {
	balance, err := s.companyRepo.CreditBalance(ctx, companyID, channel, units)
	if err != nil {
		slog.Error("Failed to credit balance", "error", err, "companyId", companyID.Hex(), "channel", channel, "units", units)
		return 0, err
	}
	slog.Info("Balance credited", "companyId", companyID.Hex(), "channel", channel, "units", units, "newBalance", balance)
	return balance, nil
}

// Debit removes units from a company's channel balance. Insufficient balance
// is terminal and user-visible, never retried.
func (s *LedgerServiceImpl) Debit(ctx context.Context, companyID primitive.ObjectID, channel models.Channel, units int64) (int64, error) {
	balance, err := s.companyRepo.DebitBalance(ctx, companyID, channel, units)
	if err != nil {
		slog.Warn("Debit rejected", "error", err, "companyId", companyID.Hex(), "channel", channel, "units", units)
		return 0, err
	}
	return balance, nil
}
