package shared

// BaseAggregateRoot extends BaseEntity with the version counter that drives
// optimistic locking. Every state-changing method on an aggregate calls
// IncrementVersion, and repositories persist the change only while the
// stored row still holds the version the aggregate was loaded with.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// IncrementVersion records one more mutation on the aggregate
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates an aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
