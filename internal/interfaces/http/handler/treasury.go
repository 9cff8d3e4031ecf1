package handler

import (
	"strconv"
	"time"

	apptreasury "github.com/comercia/backend/internal/application/treasury"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/comercia/backend/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TreasuryHandler handles account and ledger endpoints
type TreasuryHandler struct {
	BaseHandler
	ledgerService   *apptreasury.LedgerService
	transferService *apptreasury.TransferService
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(ledgerService *apptreasury.LedgerService, transferService *apptreasury.TransferService) *TreasuryHandler {
	return &TreasuryHandler{
		ledgerService:   ledgerService,
		transferService: transferService,
	}
}

// RegisterRoutes registers the account, movement and transfer endpoints
func (h *TreasuryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("", h.ListAccounts)
		accounts.DELETE("/:id", h.DeactivateAccount)
		accounts.GET("/:id/balance", h.GetBalance)
		accounts.GET("/:id/audit", h.AuditAccount)
		accounts.POST("/:id/movements", h.PostMovement)
		accounts.GET("/:id/movements", h.ListMovements)
	}
	rg.POST("/transfers", h.Transfer)
}

// CreateAccountRequest represents a request to create a cash account
type CreateAccountRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=100"`
	Kind           string `json:"kind" binding:"required,oneof=CASH BANK WALLET"`
	MethodKey      string `json:"method_key" binding:"omitempty,max=50"`
	OpeningBalance int64  `json:"opening_balance" binding:"gte=0"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	MethodKey string    `json:"method_key,omitempty"`
	IsActive  bool      `json:"is_active"`
	Balance   int64     `json:"balance"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResponse(account *treasury.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID.String(),
		Name:      account.Name,
		Kind:      account.Kind.String(),
		MethodKey: account.MethodKey,
		IsActive:  account.IsActive,
		Balance:   account.Balance,
		Version:   account.Version,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID                    string    `json:"id"`
	AccountID             string    `json:"account_id"`
	Kind                  string    `json:"kind"`
	Amount                int64     `json:"amount"`
	PreviousBalance       int64     `json:"previous_balance"`
	NewBalance            int64     `json:"new_balance"`
	Concept               string    `json:"concept"`
	CounterpartyAccountID *string   `json:"counterparty_account_id,omitempty"`
	ReferenceType         *string   `json:"reference_type,omitempty"`
	ReferenceID           *string   `json:"reference_id,omitempty"`
	CreatedBy             string    `json:"created_by"`
	CreatedAt             time.Time `json:"created_at"`
}

func toMovementResponse(movement *treasury.Movement) MovementResponse {
	resp := MovementResponse{
		ID:              movement.ID.String(),
		AccountID:       movement.AccountID.String(),
		Kind:            movement.Kind.String(),
		Amount:          movement.Amount,
		PreviousBalance: movement.PreviousBalance,
		NewBalance:      movement.NewBalance,
		Concept:         movement.Concept,
		CreatedBy:       movement.CreatedBy.String(),
		CreatedAt:       movement.CreatedAt,
	}
	if movement.CounterpartyAccountID != nil {
		id := movement.CounterpartyAccountID.String()
		resp.CounterpartyAccountID = &id
	}
	if movement.Reference != nil {
		refType := movement.Reference.Type.String()
		refID := movement.Reference.ID.String()
		resp.ReferenceType = &refType
		resp.ReferenceID = &refID
	}
	return resp
}

// CreateAccount handles POST /accounts
func (h *TreasuryHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), apptreasury.CreateAccountRequest{
		Name:           req.Name,
		Kind:           treasury.AccountKind(req.Kind),
		MethodKey:      req.MethodKey,
		OpeningBalance: valueobject.NewMoney(req.OpeningBalance),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAccountResponse(account))
}

// ListAccounts handles GET /accounts
func (h *TreasuryHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.ledgerService.ListAccounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = toAccountResponse(&accounts[i])
	}
	h.Success(c, responses)
}

// DeactivateAccount handles DELETE /accounts/:id
func (h *TreasuryHandler) DeactivateAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	if err := h.ledgerService.DeactivateAccount(c.Request.Context(), accountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// BalanceResponse represents an account balance in API responses
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// GetBalance handles GET /accounts/:id/balance
func (h *TreasuryHandler) GetBalance(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceResponse{
		AccountID: accountID.String(),
		Balance:   balance.MinorUnits(),
	})
}

// BalanceAuditResponse reports the balance cross-check for an account
type BalanceAuditResponse struct {
	AccountID      string `json:"account_id"`
	Balance        int64  `json:"balance"`
	MovementSum    int64  `json:"movement_sum"`
	OpeningBalance int64  `json:"opening_balance"`
	Consistent     bool   `json:"consistent"`
}

// AuditAccount handles GET /accounts/:id/audit
func (h *TreasuryHandler) AuditAccount(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	audit, err := h.ledgerService.AuditAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, BalanceAuditResponse{
		AccountID:      audit.AccountID.String(),
		Balance:        audit.Balance,
		MovementSum:    audit.MovementSum,
		OpeningBalance: audit.OpeningBalance,
		Consistent:     audit.Consistent,
	})
}

// PostMovementRequest represents a request to post a ledger movement
type PostMovementRequest struct {
	Kind    string `json:"kind" binding:"required,oneof=IN OUT"`
	Amount  int64  `json:"amount" binding:"required,gt=0"`
	Concept string `json:"concept" binding:"required,min=1,max=255"`
}

// PostMovement handles POST /accounts/:id/movements
func (h *TreasuryHandler) PostMovement(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-User-ID header")
		return
	}

	var req PostMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	movement, err := h.ledgerService.PostMovement(c.Request.Context(), apptreasury.PostMovementRequest{
		AccountID: accountID,
		Kind:      treasury.MovementKind(req.Kind),
		Amount:    valueobject.NewMoney(req.Amount),
		Concept:   req.Concept,
		Actor:     actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMovementResponse(movement))
}

// ListMovements handles GET /accounts/:id/movements
func (h *TreasuryHandler) ListMovements(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	movements, err := h.ledgerService.ListMovements(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = toMovementResponse(&movements[i])
	}
	h.Success(c, responses)
}

// TransferRequest represents a request to move money between accounts
type TransferRequest struct {
	SourceID       string `json:"source_id" binding:"required,uuid"`
	DestinationID  string `json:"destination_id" binding:"required,uuid"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Concept        string `json:"concept" binding:"required,min=1,max=255"`
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,max=100"`
}

// TransferResponse carries the two committed legs of a transfer
type TransferResponse struct {
	OutMovement MovementResponse `json:"out_movement"`
	InMovement  MovementResponse `json:"in_movement"`
}

// Transfer handles POST /transfers
func (h *TreasuryHandler) Transfer(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-User-ID header")
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		h.BadRequest(c, "Invalid source account ID format")
		return
	}
	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		h.BadRequest(c, "Invalid destination account ID format")
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), apptreasury.TransferRequest{
		SourceID:       sourceID,
		DestinationID:  destinationID,
		Amount:         valueobject.NewMoney(req.Amount),
		Concept:        req.Concept,
		Actor:          actor,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, TransferResponse{
		OutMovement: toMovementResponse(result.OutMovement),
		InMovement:  toMovementResponse(result.InMovement),
	})
}
