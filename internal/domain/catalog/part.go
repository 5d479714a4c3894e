package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

var partNoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// Part is a customer-owned part number that purchase orders and inventory
// items refer to.
type Part struct {
	shared.BaseAggregateRoot
	CustomerID     uuid.UUID
	InternalPartNo string
	Name           string
	SupplierInfo   string
	Specifications string
	// PONumber caches the most recently associated PO number. It is only
	// written by the PO and scan-in use cases inside their transactions.
	PONumber *string
}

// NewPart creates a new part for a customer
func NewPart(customerID uuid.UUID, internalPartNo, name string, now time.Time) (*Part, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Part must belong to a customer")
	}
	partNo, err := normalizePartNo(internalPartNo)
	if err != nil {
		return nil, err
	}
	if err := validatePartName(name); err != nil {
		return nil, err
	}
	return &Part{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		CustomerID:        customerID,
		InternalPartNo:    partNo,
		Name:              strings.TrimSpace(name),
	}, nil
}

// Update updates the descriptive fields of the part
func (p *Part) Update(name, supplierInfo, specifications string, now time.Time) error {
	if err := validatePartName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.SupplierInfo = strings.TrimSpace(supplierInfo)
	p.Specifications = specifications
	p.Touch(now)
	p.IncrementVersion()
	return nil
}

// SetDetails sets supplier info and specifications without bumping the version
// (used while building a new part)
func (p *Part) SetDetails(supplierInfo, specifications string) {
	p.SupplierInfo = strings.TrimSpace(supplierInfo)
	p.Specifications = specifications
}

// BelongsTo reports whether the part is owned by the customer
func (p *Part) BelongsTo(customerID uuid.UUID) bool {
	return p.CustomerID == customerID
}

// CurrentPONumber returns the cached PO number or empty
func (p *Part) CurrentPONumber() string {
	if p.PONumber == nil {
		return ""
	}
	return *p.PONumber
}

func normalizePartNo(partNo string) (string, error) {
	partNo = strings.TrimSpace(partNo)
	if partNo == "" {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Internal part number cannot be empty")
	}
	if len(partNo) > 64 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Internal part number cannot exceed 64 characters")
	}
	if !partNoPattern.MatchString(partNo) {
		return "", shared.NewDomainError(shared.CodeInvalidInput,
			"Internal part number can only contain letters, digits, '.', '_', '/' and '-'")
	}
	return strings.ToUpper(partNo), nil
}

func validatePartName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Part name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Part name cannot exceed 200 characters")
	}
	return nil
}
