package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/wms/backend/internal/application/partner"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	svc *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(svc *partnerapp.CustomerService, audit AuditRecorder) *CustomerHandler {
	return &CustomerHandler{BaseHandler: BaseHandler{audit: audit}, svc: svc}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, partnerapp.AuditRequest(audit.ActionCustomerCreate, customer))
	h.Created(c, customer)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	customer, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customers, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	f := filter.ToFilter()
	h.SuccessWithMeta(c, customers, total, f.Page, f.PageSize)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, partnerapp.AuditRequest(audit.ActionCustomerUpdate, customer))
	h.Success(c, customer)
}

// ChangeStatus handles PUT /customers/:id/status
func (h *CustomerHandler) ChangeStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.ChangeCustomerStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.svc.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, partnerapp.AuditRequest(audit.ActionCustomerStatus, customer))
	h.Success(c, customer)
}

// CustomerRoutes returns the customer routes
func CustomerRoutes(h *CustomerHandler) *router.DomainGroup {
	return router.NewDomainGroup("customers", "/customers").
		POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		PUT("/:id/status", h.ChangeStatus)
}
