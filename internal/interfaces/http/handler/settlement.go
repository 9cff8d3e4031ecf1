package handler

import (
	"time"

	appsettlement "github.com/comercia/backend/internal/application/settlement"
	"github.com/comercia/backend/internal/domain/settlement"
	"github.com/comercia/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementHandler handles receivable, payable and payment endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *appsettlement.SettlementService
	reversalService   *appsettlement.ReversalService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *appsettlement.SettlementService, reversalService *appsettlement.ReversalService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		reversalService:   reversalService,
	}
}

// RegisterRoutes registers the settlement endpoints
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receivables := rg.Group("/receivables")
	{
		receivables.POST("", h.OpenReceivable)
		receivables.GET("", h.ListReceivables)
		receivables.GET("/:id", h.GetReceivableStatus)
		receivables.POST("/:id/payments", h.PayReceivable)
	}
	payables := rg.Group("/payables")
	{
		payables.POST("", h.OpenPayable)
		payables.GET("", h.ListPayables)
		payables.GET("/:id", h.GetPayableStatus)
		payables.POST("/:id/payments", h.PayPayable)
	}
	rg.POST("/financing/calculate", h.CalculateFinancing)
	rg.POST("/sales/:id/return", h.ProcessReturn)
}

// ===================== Responses =====================

// DebtResponse represents a receivable or payable in API responses
type DebtResponse struct {
	ID              string     `json:"id"`
	SaleID          string     `json:"sale_id,omitempty"`
	ExpenseID       string     `json:"expense_id,omitempty"`
	PartyID         string     `json:"party_id"`
	TotalAmount     int64      `json:"total_amount"`
	PaidAmount      int64      `json:"paid_amount"`
	RemainingAmount int64      `json:"remaining_amount"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	ClosedByReturn  bool       `json:"closed_by_return,omitempty"`
	Version         int        `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toReceivableResponse(r *settlement.Receivable) DebtResponse {
	return DebtResponse{
		ID:              r.ID.String(),
		SaleID:          r.SaleID.String(),
		PartyID:         r.ClientID.String(),
		TotalAmount:     r.TotalAmount,
		PaidAmount:      r.PaidAmount,
		RemainingAmount: r.RemainingAmount,
		DueDate:         r.DueDate,
		Status:          r.Status.String(),
		Notes:           r.Notes,
		ClosedByReturn:  r.ClosedByReturn,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toPayableResponse(p *settlement.Payable) DebtResponse {
	return DebtResponse{
		ID:              p.ID.String(),
		ExpenseID:       p.ExpenseID.String(),
		PartyID:         p.SupplierID.String(),
		TotalAmount:     p.TotalAmount,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.RemainingAmount,
		DueDate:         p.DueDate,
		Status:          p.Status.String(),
		Notes:           p.Notes,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// PaymentRecordResponse represents a payment record in API responses
type PaymentRecordResponse struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	ReferenceID      string    `json:"reference_id"`
	Amount           int64     `json:"amount"`
	Method           string    `json:"method"`
	PaymentAccountID *string   `json:"payment_account_id,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	RegisteredBy     string    `json:"registered_by"`
	CreatedAt        time.Time `json:"created_at"`
}

func toPaymentRecordResponse(record *settlement.PaymentRecord) PaymentRecordResponse {
	resp := PaymentRecordResponse{
		ID:           record.ID.String(),
		Type:         record.Type.String(),
		ReferenceID:  record.ReferenceID.String(),
		Amount:       record.Amount,
		Method:       record.Method,
		Notes:        record.Notes,
		RegisteredBy: record.RegisteredBy.String(),
		CreatedAt:    record.CreatedAt,
	}
	if record.PaymentAccountID != nil {
		id := record.PaymentAccountID.String()
		resp.PaymentAccountID = &id
	}
	return resp
}

// ===================== Receivables =====================

// OpenReceivableRequest represents a request to open a receivable
type OpenReceivableRequest struct {
	SaleID         string     `json:"sale_id" binding:"required,uuid"`
	ClientID       string     `json:"client_id" binding:"required,uuid"`
	TotalWithFee   int64      `json:"total_with_fee" binding:"required,gt=0"`
	InitialPayment int64      `json:"initial_payment" binding:"gte=0"`
	Method         string     `json:"method" binding:"omitempty,max=50"`
	DueDate        *time.Time `json:"due_date"`
}

// OpenReceivableResponse carries the opened receivable and the initial
// payment outcome
type OpenReceivableResponse struct {
	Receivable     DebtResponse           `json:"receivable"`
	InitialPayment *PaymentRecordResponse `json:"initial_payment,omitempty"`
	LedgerSkipped  bool                   `json:"ledger_skipped"`
}

// OpenReceivable handles POST /receivables
func (h *SettlementHandler) OpenReceivable(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-User-ID header")
		return
	}

	var req OpenReceivableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	result, err := h.settlementService.OpenReceivable(c.Request.Context(), appsettlement.OpenReceivableRequest{
		SaleID:         saleID,
		ClientID:       clientID,
		TotalWithFee:   valueobject.NewMoney(req.TotalWithFee),
		InitialPayment: valueobject.NewMoney(req.InitialPayment),
		Method:         req.Method,
		DueDate:        req.DueDate,
		Actor:          actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := OpenReceivableResponse{
		Receivable:    toReceivableResponse(result.Receivable),
		LedgerSkipped: result.LedgerSkipped,
	}
	if result.InitialPaymentRecord != nil {
		record := toPaymentRecordResponse(result.InitialPaymentRecord)
		resp.InitialPayment = &record
	}
	h.Created(c, resp)
}

// ===================== Payables =====================

// OpenPayableRequest represents a request to open a payable
type OpenPayableRequest struct {
	ExpenseID  string     `json:"expense_id" binding:"required,uuid"`
	SupplierID string     `json:"supplier_id" binding:"required,uuid"`
	Total      int64      `json:"total" binding:"required,gt=0"`
	DueDate    *time.Time `json:"due_date"`
}

// OpenPayable handles POST /payables
func (h *SettlementHandler) OpenPayable(c *gin.Context) {
	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-User-ID header")
		return
	}

	var req OpenPayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	expenseID, err := uuid.Parse(req.ExpenseID)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID format")
		return
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	payable, err := h.settlementService.OpenPayable(c.Request.Context(), appsettlement.OpenPayableRequest{
		ExpenseID:  expenseID,
		SupplierID: supplierID,
		Total:      valueobject.NewMoney(req.Total),
		DueDate:    req.DueDate,
		Actor:      actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toPayableResponse(payable))
}

// ===================== Payments =====================

// ApplyPaymentRequest represents a payment against a receivable or payable
type ApplyPaymentRequest struct {
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	Method          string `json:"method" binding:"omitempty,max=50"`
	PayingAccountID string `json:"paying_account_id" binding:"omitempty,uuid"`
	Notes           string `json:"notes" binding:"omitempty,max=500"`
	IdempotencyKey  string `json:"idempotency_key" binding:"omitempty,max=100"`
}

// ApplyPaymentResponse carries the committed payment and the state of the
// debt after application
type ApplyPaymentResponse struct {
	Payment         PaymentRecordResponse `json:"payment"`
	RemainingAmount int64                 `json:"remaining_amount"`
	Status          string                `json:"status"`
	LedgerSkipped   bool                  `json:"ledger_skipped"`
	SaleMarkedPaid  bool                  `json:"sale_marked_paid,omitempty"`
}

func (h *SettlementHandler) applyPayment(c *gin.Context, settlementType settlement.SettlementType) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID format")
		return
	}

	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-User-ID header")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	var payingAccountID *uuid.UUID
	if req.PayingAccountID != "" {
		id, err := uuid.Parse(req.PayingAccountID)
		if err != nil {
			h.BadRequest(c, "Invalid paying account ID format")
			return
		}
		payingAccountID = &id
	}

	result, err := h.settlementService.ApplyPayment(c.Request.Context(), appsettlement.ApplyPaymentRequest{
		Type:            settlementType,
		RecordID:        recordID,
		Amount:          valueobject.NewMoney(req.Amount),
		Method:          req.Method,
		PayingAccountID: payingAccountID,
		Notes:           req.Notes,
		Actor:           actor,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ApplyPaymentResponse{
		Payment:         toPaymentRecordResponse(result.PaymentRecord),
		RemainingAmount: result.RemainingAmount.MinorUnits(),
		Status:          result.Status.String(),
		LedgerSkipped:   result.LedgerSkipped,
		SaleMarkedPaid:  result.SaleMarkedPaid,
	})
}

// PayReceivable handles POST /receivables/:id/payments
func (h *SettlementHandler) PayReceivable(c *gin.Context) {
	h.applyPayment(c, settlement.SettlementTypeReceivable)
}

// PayPayable handles POST /payables/:id/payments
func (h *SettlementHandler) PayPayable(c *gin.Context) {
	h.applyPayment(c, settlement.SettlementTypePayable)
}

// ===================== Account status =====================

// AccountStatusResponse summarizes a debt with its payment history
type AccountStatusResponse struct {
	Type            string                  `json:"type"`
	Debt            DebtResponse            `json:"debt"`
	Payments        []PaymentRecordResponse `json:"payments"`
	RemainingAmount int64                   `json:"remaining_amount"`
	Status          string                  `json:"status"`
}

func (h *SettlementHandler) getStatus(c *gin.Context, settlementType settlement.SettlementType) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid record ID format")
		return
	}

	status, err := h.settlementService.GetAccountStatus(c.Request.Context(), settlementType, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := AccountStatusResponse{
		Type:            status.Type.String(),
		RemainingAmount: status.RemainingAmount.MinorUnits(),
		Status:          status.Status.String(),
		Payments:        make([]PaymentRecordResponse, len(status.Payments)),
	}
	if status.Receivable != nil {
		resp.Debt = toReceivableResponse(status.Receivable)
	}
	if status.Payable != nil {
		resp.Debt = toPayableResponse(status.Payable)
	}
	for i := range status.Payments {
		resp.Payments[i] = toPaymentRecordResponse(&status.Payments[i])
	}
	h.Success(c, resp)
}

// GetReceivableStatus handles GET /receivables/:id
func (h *SettlementHandler) GetReceivableStatus(c *gin.Context) {
	h.getStatus(c, settlement.SettlementTypeReceivable)
}

// parseStatusFilter reads the optional status query parameter
func parseStatusFilter(c *gin.Context) (*settlement.DebtStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status := settlement.DebtStatus(raw)
	if !status.IsValid() {
		return nil, false
	}
	return &status, true
}

// ListReceivables handles GET /receivables?client_id=...&status=...
func (h *SettlementHandler) ListReceivables(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		h.BadRequest(c, "Missing or invalid client_id query parameter")
		return
	}
	status, ok := parseStatusFilter(c)
	if !ok {
		h.BadRequest(c, "Status must be one of PENDING, PARTIAL, PAID")
		return
	}

	receivables, err := h.settlementService.ListReceivablesByClient(c.Request.Context(), clientID, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]DebtResponse, len(receivables))
	for i := range receivables {
		resp[i] = toReceivableResponse(&receivables[i])
	}
	h.Success(c, resp)
}

// ListPayables handles GET /payables?supplier_id=...&status=...
func (h *SettlementHandler) ListPayables(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Query("supplier_id"))
	if err != nil {
		h.BadRequest(c, "Missing or invalid supplier_id query parameter")
		return
	}
	status, ok := parseStatusFilter(c)
	if !ok {
		h.BadRequest(c, "Status must be one of PENDING, PARTIAL, PAID")
		return
	}

	payables, err := h.settlementService.ListPayablesBySupplier(c.Request.Context(), supplierID, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]DebtResponse, len(payables))
	for i := range payables {
		resp[i] = toPayableResponse(&payables[i])
	}
	h.Success(c, resp)
}

// GetPayableStatus handles GET /payables/:id
func (h *SettlementHandler) GetPayableStatus(c *gin.Context) {
	h.getStatus(c, settlement.SettlementTypePayable)
}

// ===================== Financing =====================

// CalculateFinancingRequest represents a financing quote request
type CalculateFinancingRequest struct {
	Subtotal       int64  `json:"subtotal" binding:"required,gt=0"`
	FeePercentage  string `json:"fee_percentage" binding:"required"`
	Installments   int    `json:"installments" binding:"required,min=1,max=60"`
	InitialPayment int64  `json:"initial_payment" binding:"gte=0"`
}

// CalculateFinancingResponse carries the computed financing terms
type CalculateFinancingResponse struct {
	Subtotal        int64   `json:"subtotal"`
	FeePercentage   string  `json:"fee_percentage"`
	FeeAmount       int64   `json:"fee_amount"`
	TotalWithFee    int64   `json:"total_with_fee"`
	InitialPayment  int64   `json:"initial_payment"`
	AmountToFinance int64   `json:"amount_to_finance"`
	Installments    int     `json:"installments"`
	Schedule        []int64 `json:"schedule"`
}

// CalculateFinancing handles POST /financing/calculate. Pure computation,
// nothing is persisted.
func (h *SettlementHandler) CalculateFinancing(c *gin.Context) {
	var req CalculateFinancingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	feePercentage, err := decimal.NewFromString(req.FeePercentage)
	if err != nil {
		h.BadRequest(c, "Invalid fee percentage format")
		return
	}

	terms, err := settlement.NewCreditTerms(
		valueobject.NewMoney(req.Subtotal),
		feePercentage,
		req.Installments,
		valueobject.NewMoney(req.InitialPayment),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	toFinance := terms.GetTotalWithFeeMoney().Sub(terms.GetInitialPaymentMoney())
	schedule := settlement.ComputeInstallmentSchedule(toFinance, terms.Installments)
	scheduleAmounts := make([]int64, len(schedule))
	for i, installment := range schedule {
		scheduleAmounts[i] = installment.MinorUnits()
	}

	h.Success(c, CalculateFinancingResponse{
		Subtotal:        req.Subtotal,
		FeePercentage:   terms.FeePercentage.String(),
		FeeAmount:       terms.FeeAmount,
		TotalWithFee:    terms.TotalWithFee,
		InitialPayment:  terms.InitialPayment,
		AmountToFinance: toFinance.MinorUnits(),
		Installments:    terms.Installments,
		Schedule:        scheduleAmounts,
	})
}

// ===================== Returns =====================

// ReturnItemRequest represents one returned line item
type ReturnItemRequest struct {
	VariantID string `json:"variant_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// ProcessReturnRequest represents a sale return
type ProcessReturnRequest struct {
	Items            []ReturnItemRequest `json:"items" binding:"omitempty,dive"`
	RestoreInventory bool                `json:"restore_inventory"`
	Reason           string              `json:"reason" binding:"omitempty,max=255"`
}

// ProcessReturnResponse reports what the reversal touched
type ProcessReturnResponse struct {
	SaleID             string         `json:"sale_id"`
	ReceivableClosed   bool           `json:"receivable_closed"`
	WrittenOffAmount   int64          `json:"written_off_amount"`
	RestoredQuantities map[string]int `json:"restored_quantities,omitempty"`
}

// ProcessReturn handles POST /sales/:id/return
func (h *SettlementHandler) ProcessReturn(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	actor, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid X-User-ID header")
		return
	}

	var req ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	items := make([]appsettlement.ReturnItem, len(req.Items))
	for i, item := range req.Items {
		variantID, err := uuid.Parse(item.VariantID)
		if err != nil {
			h.BadRequest(c, "Invalid variant ID format")
			return
		}
		items[i] = appsettlement.ReturnItem{VariantID: variantID, Quantity: item.Quantity}
	}

	result, err := h.reversalService.ProcessReturn(c.Request.Context(), appsettlement.ProcessReturnRequest{
		SaleID:           saleID,
		Items:            items,
		RestoreInventory: req.RestoreInventory,
		Reason:           req.Reason,
		Actor:            actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ProcessReturnResponse{
		SaleID:           result.SaleID.String(),
		ReceivableClosed: result.ReceivableClosed,
		WrittenOffAmount: result.WrittenOffAmount,
	}
	if len(result.RestoredQuantities) > 0 {
		resp.RestoredQuantities = make(map[string]int, len(result.RestoredQuantities))
		for variantID, level := range result.RestoredQuantities {
			resp.RestoredQuantities[variantID.String()] = level
		}
	}
	h.Success(c, resp)
}
