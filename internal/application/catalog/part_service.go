package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// PartService handles part-related business operations
type PartService struct {
	partRepo     catalog.PartRepository
	customerRepo partner.CustomerRepository
	clock        shared.Clock
}

// NewPartService creates a new PartService
func NewPartService(partRepo catalog.PartRepository, customerRepo partner.CustomerRepository) *PartService {
	return &PartService{
		partRepo:     partRepo,
		customerRepo: customerRepo,
		clock:        shared.SystemClock{},
	}
}

// SetClock replaces the wall clock
func (s *PartService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// Create creates a new part for an active customer
func (s *PartService) Create(ctx context.Context, req CreatePartRequest) (*PartResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeCustomerNotFound,
				fmt.Sprintf("Customer %s not found", req.CustomerID))
		}
		return nil, err
	}
	if err := customer.EnsureActive(); err != nil {
		return nil, err
	}

	part, err := catalog.NewPart(customer.ID, req.InternalPartNo, req.Name, s.clock.Now())
	if err != nil {
		return nil, err
	}
	part.SetDetails(req.SupplierInfo, req.Specifications)

	exists, err := s.partRepo.ExistsByPartNo(ctx, customer.ID, part.InternalPartNo, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeDuplicateKey,
			fmt.Sprintf("Part %s already exists for customer %s", part.InternalPartNo, customer.Name))
	}

	if err := s.partRepo.Save(ctx, part); err != nil {
		return nil, err
	}

	response := ToPartResponse(part)
	return &response, nil
}

// GetByID retrieves a part by ID
func (s *PartService) GetByID(ctx context.Context, id uuid.UUID) (*PartResponse, error) {
	part, err := s.partRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToPartResponse(part)
	return &response, nil
}

// List retrieves a list of parts with filtering and pagination
func (s *PartService) List(ctx context.Context, filter PartListFilter) ([]PartResponse, int64, error) {
	domainFilter := filter.ToFilter()

	parts, err := s.partRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.partRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPartResponses(parts), total, nil
}

// Update updates a part's descriptive fields
func (s *PartService) Update(ctx context.Context, id uuid.UUID, req UpdatePartRequest) (*PartResponse, error) {
	part, err := s.partRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, supplier, specs := part.Name, part.SupplierInfo, part.Specifications
	if req.Name != nil {
		name = *req.Name
	}
	if req.SupplierInfo != nil {
		supplier = *req.SupplierInfo
	}
	if req.Specifications != nil {
		specs = *req.Specifications
	}

	if err := part.Update(name, supplier, specs, s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.partRepo.Save(ctx, part); err != nil {
		return nil, err
	}

	response := ToPartResponse(part)
	return &response, nil
}

// AuditRequest describes a part change for the audit log
func AuditRequest(action audit.Action, p *PartResponse) audit.Request {
	return audit.Request{
		Action:       action,
		Details:      fmt.Sprintf("Part %s (%s)", p.InternalPartNo, p.Name),
		ResourceType: audit.ResourcePart,
		ResourceID:   p.ID.String(),
	}
}
