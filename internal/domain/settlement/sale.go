package settlement

// SaleStatus mirrors the states the surrounding sale store understands.
// The engine only ever drives two transitions: to PAID when a linked
// receivable reaches zero remaining, and to RETURNED when a return is
// processed.
type SaleStatus string

const (
	SaleStatusPending  SaleStatus = "PENDING"
	SaleStatusPaid     SaleStatus = "PAID"
	SaleStatusReturned SaleStatus = "RETURNED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusPaid, SaleStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}
