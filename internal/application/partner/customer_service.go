package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	clock        shared.Clock
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		clock:        shared.SystemClock{},
	}
}

// SetClock replaces the wall clock
func (s *CustomerService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, req.Address, req.ContactInfo, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, customer.Name, nil); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a list of customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := filter.ToFilter()

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer's descriptive fields
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, address, contact := customer.Name, customer.Address, customer.ContactInfo
	if req.Name != nil {
		name = *req.Name
	}
	if req.Address != nil {
		address = *req.Address
	}
	if req.ContactInfo != nil {
		contact = *req.ContactInfo
	}

	if err := customer.Update(name, address, contact, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, customer.Name, &customer.ID); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// ChangeStatus moves a customer through active -> pending_delete -> deleted
func (s *CustomerService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeCustomerStatusRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := customer.ChangeStatus(partner.CustomerStatus(req.Status), s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

func (s *CustomerService) ensureUniqueName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.customerRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeDuplicateKey,
			fmt.Sprintf("Customer with name %q already exists", name))
	}
	return nil
}

// AuditRequest describes a customer change for the audit log
func AuditRequest(action audit.Action, c *CustomerResponse) audit.Request {
	details := fmt.Sprintf("Customer %s", c.Name)
	if action == audit.ActionCustomerStatus {
		details = fmt.Sprintf("Customer %s status changed to %s", c.Name, c.Status)
	}
	return audit.Request{
		Action:       action,
		Details:      details,
		ResourceType: audit.ResourceCustomer,
		ResourceID:   c.ID.String(),
	}
}
