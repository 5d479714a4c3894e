package partner

import (
	"strings"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive        CustomerStatus = "active"
	CustomerStatusPendingDelete CustomerStatus = "pending_delete"
	CustomerStatusDeleted       CustomerStatus = "deleted"
)

// IsValid checks if the status is a valid CustomerStatus
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusPendingDelete, CustomerStatusDeleted:
		return true
	}
	return false
}

// CanTransitionTo checks the soft-delete workflow:
// active -> pending_delete -> (deleted | active)
func (s CustomerStatus) CanTransitionTo(target CustomerStatus) bool {
	switch s {
	case CustomerStatusActive:
		return target == CustomerStatusPendingDelete
	case CustomerStatusPendingDelete:
		return target == CustomerStatusActive || target == CustomerStatusDeleted
	}
	return false
}

// Customer is the owner of parts and purchase orders
type Customer struct {
	shared.BaseAggregateRoot
	Name        string
	Address     string
	ContactInfo string
	Status      CustomerStatus
}

// NewCustomer creates a new active customer
func NewCustomer(name, address, contactInfo string, now time.Time) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer name cannot exceed 200 characters")
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Name:              name,
		Address:           strings.TrimSpace(address),
		ContactInfo:       strings.TrimSpace(contactInfo),
		Status:            CustomerStatusActive,
	}, nil
}

// IsActive reports whether the customer may receive new POs, parts or items
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// EnsureActive returns ErrInactiveCustomer-coded error naming the customer
func (c *Customer) EnsureActive() error {
	if c.IsActive() {
		return nil
	}
	return shared.NewDomainError(shared.CodeInactiveCustomer,
		"Customer "+c.Name+" is not active ("+string(c.Status)+"), operation not allowed")
}

// Update changes the descriptive fields
func (c *Customer) Update(name, address, contactInfo string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Customer name cannot be empty")
	}
	c.Name = name
	c.Address = strings.TrimSpace(address)
	c.ContactInfo = strings.TrimSpace(contactInfo)
	c.Touch(now)
	c.IncrementVersion()
	return nil
}

// ChangeStatus moves the customer through the soft-delete workflow
func (c *Customer) ChangeStatus(target CustomerStatus, now time.Time) error {
	if !target.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidStatusRequest, "Unknown customer status: "+string(target))
	}
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			"Cannot change customer status from "+string(c.Status)+" to "+string(target))
	}
	c.Status = target
	c.Touch(now)
	c.IncrementVersion()
	return nil
}
