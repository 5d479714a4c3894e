package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Address     string `json:"address" binding:"max=500"`
	ContactInfo string `json:"contact_info" binding:"max=200"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	ContactInfo *string `json:"contact_info" binding:"omitempty,max=200"`
}

// ChangeCustomerStatusRequest moves a customer through the soft-delete workflow
type ChangeCustomerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active pending_delete deleted"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	ContactInfo string    `json:"contact_info"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active pending_delete deleted"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the list filter to a repository filter
func (f CustomerListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.OrderBy == "" {
		filter.OrderBy = "name"
		if f.OrderDir == "" {
			filter.OrderDir = "asc"
		}
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter.Normalize()
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Address:     c.Address,
		ContactInfo: c.ContactInfo,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}
