package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/shared"
)

// CreatePartRequest represents a request to create a new part
type CreatePartRequest struct {
	CustomerID     uuid.UUID `json:"customer_id" binding:"required"`
	InternalPartNo string    `json:"internal_part_no" binding:"required,min=1,max=64"`
	Name           string    `json:"name" binding:"required,min=1,max=200"`
	SupplierInfo   string    `json:"supplier_info" binding:"max=500"`
	Specifications string    `json:"specifications" binding:"max=2000"`
}

// UpdatePartRequest represents a request to update a part.
// The customer and part number are immutable.
type UpdatePartRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=200"`
	SupplierInfo   *string `json:"supplier_info" binding:"omitempty,max=500"`
	Specifications *string `json:"specifications" binding:"omitempty,max=2000"`
}

// PartResponse represents a part in API responses
type PartResponse struct {
	ID             uuid.UUID `json:"id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	InternalPartNo string    `json:"internal_part_no"`
	Name           string    `json:"name"`
	SupplierInfo   string    `json:"supplier_info"`
	Specifications string    `json:"specifications"`
	PONumber       *string   `json:"po_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// PartListFilter represents filter options for the part list
type PartListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToFilter converts the list filter to a repository filter
func (f PartListFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]interface{}{},
	}
	if f.CustomerID != nil {
		filter.Filters["customer_id"] = *f.CustomerID
	}
	return filter.Normalize()
}

// ToPartResponse converts a domain Part to PartResponse
func ToPartResponse(p *catalog.Part) PartResponse {
	return PartResponse{
		ID:             p.ID,
		CustomerID:     p.CustomerID,
		InternalPartNo: p.InternalPartNo,
		Name:           p.Name,
		SupplierInfo:   p.SupplierInfo,
		Specifications: p.Specifications,
		PONumber:       p.PONumber,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToPartResponses converts a slice of domain Parts
func ToPartResponses(parts []catalog.Part) []PartResponse {
	responses := make([]PartResponse, len(parts))
	for i := range parts {
		responses[i] = ToPartResponse(&parts[i])
	}
	return responses
}
