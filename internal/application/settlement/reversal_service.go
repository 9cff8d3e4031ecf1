package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/comercia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReversalService processes sale returns: marking the sale returned,
// optionally restoring inventory through the inventory collaborator, and
// writing off the open receivable attached to the sale. The whole reversal
// is one unit of work; a collaborator failure aborts every local write.
type ReversalService struct {
	scope      TransactionScope
	inventory  InventoryService
	logger     *zap.Logger
	maxRetries int
}

// NewReversalService creates a new ReversalService
func NewReversalService(scope TransactionScope, inventory InventoryService, logger *zap.Logger) *ReversalService {
	return &ReversalService{
		scope:      scope,
		inventory:  inventory,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
	}
}

// WithMaxRetries overrides the optimistic-lock retry budget
func (s *ReversalService) WithMaxRetries(n int) *ReversalService {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

// ReturnItem identifies one product variant and quantity to restock
type ReturnItem struct {
	VariantID uuid.UUID
	Quantity  int
}

// ProcessReturnRequest describes a sale return
type ProcessReturnRequest struct {
	SaleID           uuid.UUID
	Items            []ReturnItem
	RestoreInventory bool
	Reason           string
	Actor            uuid.UUID
}

// ProcessReturnResult reports what the reversal touched
type ProcessReturnResult struct {
	SaleID             uuid.UUID
	ReceivableClosed   bool
	WrittenOffAmount   int64
	RestoredQuantities map[uuid.UUID]int // Variant ID to resulting stock level
}

// ProcessReturn reverses a sale. The sale moves to RETURNED, inventory is
// restored when requested, and an open receivable for the sale is closed as
// a write-off with no refund movement. Returning an already returned sale
// fails with ALREADY_RETURNED and changes nothing.
func (s *ReversalService) ProcessReturn(ctx context.Context, req ProcessReturnRequest) (*ProcessReturnResult, error) {
	if req.SaleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Sale ID cannot be empty")
	}
	if req.Actor == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}
	if req.RestoreInventory {
		for _, item := range req.Items {
			if item.VariantID == uuid.Nil || item.Quantity <= 0 {
				return nil, shared.NewDomainError("INVALID_RETURN_ITEM", "Return items need a variant and a positive quantity")
			}
		}
	}

	result := &ProcessReturnResult{
		SaleID:             req.SaleID,
		RestoredQuantities: make(map[uuid.UUID]int),
	}

	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = s.processReturnOnce(ctx, req, result)
		if err == nil || !errors.Is(err, shared.ErrConcurrentModification) {
			break
		}
		s.logger.Debug("optimistic lock conflict, retrying return", zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale return processed",
		zap.String("sale_id", req.SaleID.String()),
		zap.Bool("receivable_closed", result.ReceivableClosed),
		zap.Int64("written_off", result.WrittenOffAmount),
		zap.Bool("inventory_restored", req.RestoreInventory),
	)
	return result, nil
}

func (s *ReversalService) processReturnOnce(ctx context.Context, req ProcessReturnRequest, result *ProcessReturnResult) error {
	result.ReceivableClosed = false
	result.WrittenOffAmount = 0
	for k := range result.RestoredQuantities {
		delete(result.RestoredQuantities, k)
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Guarded transition: a concurrent return that committed first
		// makes this fail inside the transaction, before any stock is
		// restored.
		if err := repos.Sales().MarkReturned(ctx, req.SaleID); err != nil {
			return err
		}

		// Stock is restored before commit so a collaborator failure rolls
		// back the sale status change as well.
		if req.RestoreInventory {
			for _, item := range req.Items {
				newLevel, err := s.inventory.RestoreStock(ctx, item.VariantID, item.Quantity, req.Reason)
				if err != nil {
					return fmt.Errorf("%w: restoring stock for variant %s: %v",
						shared.ErrCollaboratorFailure, item.VariantID, err)
				}
				result.RestoredQuantities[item.VariantID] = newLevel
			}
		}

		receivable, err := repos.Receivables().FindBySale(ctx, req.SaleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil // Cash sale, nothing to write off
			}
			return err
		}

		writtenOff := receivable.GetRemainingAmountMoney()
		if err := receivable.CloseByReturn(req.Reason); err != nil {
			return err
		}
		if err := repos.Receivables().SaveWithLock(ctx, receivable); err != nil {
			return err
		}
		result.ReceivableClosed = true
		result.WrittenOffAmount = writtenOff.MinorUnits()
		return nil
	})
}
