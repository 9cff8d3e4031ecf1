package shared

// DomainError is the error type every business rule violation surfaces as.
// The code is stable and maps to an HTTP status at the interface layer.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a domain error with a stable code
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAccountNotFound        = NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState           = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientFunds      = NewDomainError("INSUFFICIENT_FUNDS", "Account balance is insufficient for this debit")
	ErrInvalidPaymentAmount   = NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount must be positive and not exceed the remaining amount")
	ErrAlreadyReturned        = NewDomainError("ALREADY_RETURNED", "Sale has already been returned")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Record was modified by another transaction and retries were exhausted")
	ErrCollaboratorFailure    = NewDomainError("EXTERNAL_COLLABORATOR_FAILURE", "An external collaborator call failed")
	ErrDuplicateRequest       = NewDomainError("DUPLICATE_REQUEST", "This idempotency key has already been processed")
)
