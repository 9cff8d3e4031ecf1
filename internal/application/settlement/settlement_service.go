package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxRetries is the optimistic-lock retry budget for settlement
// units of work.
const DefaultMaxRetries = 3

// SettlementService owns receivables and payables: it opens them when a
// credit sale or deferred expense is recorded, applies payments, and
// cascades the sale status update when a receivable is fully settled. Every
// multi-record effect runs inside one transaction scope.
type SettlementService struct {
	scope       TransactionScope
	ledger      *treasury.LedgerDomainService
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
	maxRetries  int
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	scope TransactionScope,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		scope:       scope,
		ledger:      treasury.NewLedgerDomainService(),
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
		maxRetries:  DefaultMaxRetries,
	}
}

// WithMaxRetries overrides the optimistic-lock retry budget
func (s *SettlementService) WithMaxRetries(n int) *SettlementService {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

// OpenReceivableRequest describes a receivable to open for a credit sale.
// TotalWithFee is the financed total computed by the credit calculator at
// sale time; InitialPayment is the down payment collected when the sale was
// made.
type OpenReceivableRequest struct {
	SaleID         uuid.UUID
	ClientID       uuid.UUID
	TotalWithFee   valueobject.Money
	InitialPayment valueobject.Money
	Method         string // Payment method of the initial payment
	DueDate        *time.Time
	Actor          uuid.UUID
}

// OpenReceivableResult carries the opened receivable and, when an initial
// payment was collected, its payment record. LedgerSkipped reports the
// documented quirk: the payment was recorded but no cash account is mapped
// to the method, so no ledger movement was posted.
type OpenReceivableResult struct {
	Receivable           *settlement.Receivable
	InitialPaymentRecord *settlement.PaymentRecord
	LedgerSkipped        bool
}

// OpenReceivable opens a receivable and, if an initial payment was taken,
// records it and posts the cash effect in the same unit of work.
func (s *SettlementService) OpenReceivable(ctx context.Context, req OpenReceivableRequest) (*OpenReceivableResult, error) {
	if req.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}
	if req.InitialPayment.IsPositive() && req.Method == "" {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is required for an initial payment")
	}

	var result *OpenReceivableResult
	err := s.withOptimisticRetry(ctx, func() error {
		var err error
		result, err = s.openReceivableOnce(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.LedgerSkipped {
		s.logger.Warn("initial payment recorded without ledger movement: no account mapped to method",
			zap.String("method", req.Method),
			zap.String("sale_id", req.SaleID.String()),
		)
	}
	return result, nil
}

func (s *SettlementService) openReceivableOnce(ctx context.Context, req OpenReceivableRequest) (*OpenReceivableResult, error) {
	result := &OpenReceivableResult{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if existing, err := repos.Receivables().FindBySale(ctx, req.SaleID); err == nil && existing != nil {
			return shared.NewDomainError("RECEIVABLE_EXISTS", "A receivable is already open for this sale")
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		receivable, err := settlement.NewReceivable(req.SaleID, req.ClientID, req.TotalWithFee, req.InitialPayment, req.DueDate)
		if err != nil {
			return err
		}
		if err := repos.Receivables().Save(ctx, receivable); err != nil {
			return fmt.Errorf("failed to save receivable: %w", err)
		}
		result.Receivable = receivable

		if !req.InitialPayment.IsPositive() {
			return nil
		}

		record, err := settlement.NewPaymentRecord(settlement.SettlementTypeReceivable, receivable.ID,
			req.InitialPayment, normalizeMethod(req.Method), "Initial payment at sale", req.Actor)
		if err != nil {
			return err
		}

		account, skipped, err := s.resolveAccount(ctx, repos.Accounts(), req.Method, nil)
		if err != nil {
			return err
		}
		result.LedgerSkipped = skipped
		if !skipped {
			record.WithPaymentAccount(account.ID)
			_, err = s.ledger.Post(ctx, repos.Accounts(), repos.Movements(), treasury.PostParams{
				AccountID: account.ID,
				Kind:      treasury.MovementKindIn,
				Amount:    req.InitialPayment,
				Concept:   "Initial payment on credit sale",
				Reference: &treasury.Reference{Type: treasury.ReferenceTypeSale, ID: req.SaleID},
				Actor:     req.Actor,
			})
			if err != nil {
				return err
			}
		}

		if err := repos.PaymentRecords().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save payment record: %w", err)
		}
		result.InitialPaymentRecord = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OpenPayableRequest describes a payable to open for a deferred expense
type OpenPayableRequest struct {
	ExpenseID  uuid.UUID
	SupplierID uuid.UUID
	Total      valueobject.Money
	DueDate    *time.Time
	Actor      uuid.UUID
}

// OpenPayable opens a payable for a deferred-payment expense
func (s *SettlementService) OpenPayable(ctx context.Context, req OpenPayableRequest) (*settlement.Payable, error) {
	if req.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}

	var payable *settlement.Payable
	err := s.withOptimisticRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			if existing, err := repos.Payables().FindByExpense(ctx, req.ExpenseID); err == nil && existing != nil {
				return shared.NewDomainError("PAYABLE_EXISTS", "A payable is already open for this expense")
			} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}

			var err error
			payable, err = settlement.NewPayable(req.ExpenseID, req.SupplierID, req.Total, req.DueDate)
			if err != nil {
				return err
			}
			return repos.Payables().Save(ctx, payable)
		})
	})
	if err != nil {
		return nil, err
	}
	return payable, nil
}

// ApplyPaymentRequest describes a payment against a receivable or payable
type ApplyPaymentRequest struct {
	Type            settlement.SettlementType
	RecordID        uuid.UUID // Receivable or payable ID
	Amount          valueobject.Money
	Method          string
	PayingAccountID *uuid.UUID // Optional; resolved from Method when nil
	Notes           string
	Actor           uuid.UUID
	IdempotencyKey  string
}

// ApplyPaymentResult carries the committed payment and the state of the
// debt after application.
type ApplyPaymentResult struct {
	PaymentRecord   *settlement.PaymentRecord
	RemainingAmount valueobject.Money
	Status          settlement.DebtStatus
	LedgerSkipped   bool // True when no account maps to the method (documented quirk)
	SaleMarkedPaid  bool
}

// ApplyPayment applies a payment to a receivable or payable as one atomic
// unit: payment record insert, ledger movement on the paying account (in
// for receivables, out for payables), debt recomputation, and the cascading
// sale status update when a receivable reaches zero remaining.
func (s *SettlementService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT_TYPE", "Settlement type must be RECEIVABLE or PAYABLE")
	}
	if req.RecordID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Record ID cannot be empty")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.ErrInvalidPaymentAmount.Code, "Payment amount must be positive")
	}
	if req.Method == "" && req.PayingAccountID == nil {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method or paying account is required")
	}
	if req.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}

	// Claim the key before executing so two concurrent requests with the
	// same key resolve to exactly one applied payment. The key is not
	// released on failure; the TTL expiry permits a later retry.
	if req.IdempotencyKey != "" && s.idemConfig.Enabled {
		isNew, err := s.idempotency.MarkProcessed(ctx, paymentIdemKey(req.IdempotencyKey), s.idemConfig.TTL)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !isNew {
			return nil, shared.ErrDuplicateRequest
		}
	}

	var result *ApplyPaymentResult
	err := s.withOptimisticRetry(ctx, func() error {
		var err error
		result, err = s.applyPaymentOnce(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.LedgerSkipped {
		s.logger.Warn("payment recorded without ledger movement: no account mapped to method",
			zap.String("method", req.Method),
			zap.String("record_id", req.RecordID.String()),
		)
	}
	s.logger.Info("payment applied",
		zap.String("type", req.Type.String()),
		zap.String("record_id", req.RecordID.String()),
		zap.Int64("amount", req.Amount.MinorUnits()),
		zap.Int64("remaining", result.RemainingAmount.MinorUnits()),
		zap.String("status", result.Status.String()),
	)
	return result, nil
}

func (s *SettlementService) applyPaymentOnce(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	result := &ApplyPaymentResult{}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		account, skipped, err := s.resolveAccount(ctx, repos.Accounts(), req.Method, req.PayingAccountID)
		if err != nil {
			return err
		}
		result.LedgerSkipped = skipped

		// When the payment names an account instead of a method, record it
		// under the account's own method key.
		method := normalizeMethod(req.Method)
		if method == "" && account != nil {
			method = account.MethodKey
			if method == "" {
				method = "account"
			}
		}

		record, err := settlement.NewPaymentRecord(req.Type, req.RecordID, req.Amount, method, req.Notes, req.Actor)
		if err != nil {
			return err
		}

		// Receivable payments bring cash in; payable payments send cash out
		movementKind := treasury.MovementKindIn
		concept := "Payment received on receivable"
		if req.Type == settlement.SettlementTypePayable {
			movementKind = treasury.MovementKindOut
			concept = "Payment issued on payable"
		}

		switch req.Type {
		case settlement.SettlementTypeReceivable:
			receivable, err := repos.Receivables().FindByID(ctx, req.RecordID)
			if err != nil {
				return err
			}
			if err := receivable.ApplyPayment(req.Amount); err != nil {
				return err
			}
			if err := repos.Receivables().SaveWithLock(ctx, receivable); err != nil {
				return err
			}
			result.RemainingAmount = receivable.GetRemainingAmountMoney()
			result.Status = receivable.Status

			if receivable.IsPaid() {
				if err := repos.Sales().UpdateStatus(ctx, receivable.SaleID, settlement.SaleStatusPaid); err != nil {
					return fmt.Errorf("%w: failed to update sale status: %v", shared.ErrCollaboratorFailure, err)
				}
				result.SaleMarkedPaid = true
			}

		case settlement.SettlementTypePayable:
			payable, err := repos.Payables().FindByID(ctx, req.RecordID)
			if err != nil {
				return err
			}
			if err := payable.ApplyPayment(req.Amount); err != nil {
				return err
			}
			if err := repos.Payables().SaveWithLock(ctx, payable); err != nil {
				return err
			}
			result.RemainingAmount = payable.GetRemainingAmountMoney()
			result.Status = payable.Status
		}

		if !skipped {
			record.WithPaymentAccount(account.ID)
			_, err = s.ledger.Post(ctx, repos.Accounts(), repos.Movements(), treasury.PostParams{
				AccountID: account.ID,
				Kind:      movementKind,
				Amount:    req.Amount,
				Concept:   concept,
				Reference: &treasury.Reference{Type: treasury.ReferenceTypePayment, ID: record.ID},
				Actor:     req.Actor,
			})
			if err != nil {
				return err
			}
		}

		if err := repos.PaymentRecords().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save payment record: %w", err)
		}
		result.PaymentRecord = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AccountStatus summarizes a receivable or payable with its payment history
type AccountStatus struct {
	Type            settlement.SettlementType
	Receivable      *settlement.Receivable
	Payable         *settlement.Payable
	Payments        []settlement.PaymentRecord
	RemainingAmount valueobject.Money
	Status          settlement.DebtStatus
}

// GetAccountStatus returns the current state of a receivable or payable and
// the payment records applied to it. Read-only.
func (s *SettlementService) GetAccountStatus(ctx context.Context, settlementType settlement.SettlementType, recordID uuid.UUID) (*AccountStatus, error) {
	if !settlementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SETTLEMENT_TYPE", "Settlement type must be RECEIVABLE or PAYABLE")
	}

	status := &AccountStatus{Type: settlementType}
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		switch settlementType {
		case settlement.SettlementTypeReceivable:
			receivable, err := repos.Receivables().FindByID(ctx, recordID)
			if err != nil {
				return err
			}
			status.Receivable = receivable
			status.RemainingAmount = receivable.GetRemainingAmountMoney()
			status.Status = receivable.Status
		case settlement.SettlementTypePayable:
			payable, err := repos.Payables().FindByID(ctx, recordID)
			if err != nil {
				return err
			}
			status.Payable = payable
			status.RemainingAmount = payable.GetRemainingAmountMoney()
			status.Status = payable.Status
		}

		payments, err := repos.PaymentRecords().FindByReference(ctx, settlementType, recordID)
		if err != nil {
			return err
		}
		status.Payments = payments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// ListReceivablesByClient returns a client's receivables, optionally
// filtered by status. Read-only.
func (s *SettlementService) ListReceivablesByClient(ctx context.Context, clientID uuid.UUID, status *settlement.DebtStatus) ([]settlement.Receivable, error) {
	var receivables []settlement.Receivable
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		list, err := repos.Receivables().FindByClient(ctx, clientID, status)
		if err != nil {
			return err
		}
		receivables = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receivables, nil
}

// ListPayablesBySupplier returns a supplier's payables, optionally filtered
// by status. Read-only.
func (s *SettlementService) ListPayablesBySupplier(ctx context.Context, supplierID uuid.UUID, status *settlement.DebtStatus) ([]settlement.Payable, error) {
	var payables []settlement.Payable
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		list, err := repos.Payables().FindBySupplier(ctx, supplierID, status)
		if err != nil {
			return err
		}
		payables = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payables, nil
}

// resolveAccount resolves the cash account for a payment. An explicit
// account ID wins; otherwise the method name is looked up against the
// account mapping. A missing mapping is not an error: the payment proceeds
// without a ledger movement (surfaced to the caller as skipped).
func (s *SettlementService) resolveAccount(
	ctx context.Context,
	accounts treasury.AccountRepository,
	method string,
	explicit *uuid.UUID,
) (*treasury.Account, bool, error) {
	if explicit != nil {
		account, err := accounts.FindByID(ctx, *explicit)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, false, shared.ErrAccountNotFound
			}
			return nil, false, err
		}
		return account, false, nil
	}

	account, err := accounts.FindByMethodKey(ctx, normalizeMethod(method))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return account, false, nil
}

func (s *SettlementService) withOptimisticRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrentModification) {
			return err
		}
		s.logger.Debug("optimistic lock conflict, retrying settlement", zap.Int("attempt", attempt+1))
	}
	return shared.ErrConcurrentModification
}

func paymentIdemKey(key string) string {
	return "payment:" + key
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}
