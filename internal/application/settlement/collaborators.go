package settlement

import (
	"context"

	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/google/uuid"
)

// InventoryService is the external inventory collaborator. RestoreStock is
// invoked synchronously from the reversal unit of work; a failure aborts
// the whole reversal. Implementations must enforce a bounded timeout and
// surface failures rather than hang.
type InventoryService interface {
	// RestoreStock adds quantity back to a variant's stock and returns the
	// new stock level
	RestoreStock(ctx context.Context, variantID uuid.UUID, quantity int, reason string) (int, error)
}

// SaleStore is the sale record collaborator. It lives in the same backing
// store as the engine so cascading status writes (sale paid on full
// settlement, sale returned on reversal) commit inside the same unit of
// work.
type SaleStore interface {
	// GetStatus returns the sale's current status
	GetStatus(ctx context.Context, saleID uuid.UUID) (settlement.SaleStatus, error)

	// UpdateStatus sets the sale's status
	UpdateStatus(ctx context.Context, saleID uuid.UUID, status settlement.SaleStatus) error

	// MarkReturned moves the sale to RETURNED as a guarded transition:
	// it fails with ErrAlreadyReturned when the stored status is already
	// RETURNED, including when a concurrent return committed first.
	MarkReturned(ctx context.Context, saleID uuid.UUID) error
}
