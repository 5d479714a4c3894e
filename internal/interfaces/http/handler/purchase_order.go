package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/wms/backend/internal/application/trade"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	svc *tradeapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(svc *tradeapp.PurchaseOrderService, audit AuditRecorder) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: BaseHandler{audit: audit}, svc: svc}
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, tradeapp.AuditRequest(audit.ActionPOCreate, order))
	h.Created(c, order)
}

// GetByID handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetByNumber handles GET /purchase-orders/number/:po_number
func (h *PurchaseOrderHandler) GetByNumber(c *gin.Context) {
	order, err := h.svc.GetByNumber(c.Request.Context(), c.Param("po_number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter tradeapp.PurchaseOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	orders, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	f := filter.ToFilter()
	h.SuccessWithMeta(c, orders, total, f.Page, f.PageSize)
}

// Summary handles GET /purchase-orders/summary
func (h *PurchaseOrderHandler) Summary(c *gin.Context) {
	summary, err := h.svc.GetStatusSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, tradeapp.AuditRequest(audit.ActionPOUpdate, order))
	h.Success(c, order)
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelPurchaseOrderRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, tradeapp.AuditRequest(audit.ActionPOCancel, order))
	h.Success(c, order)
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, tradeapp.AuditRequest(audit.ActionPODelete, order))
	h.Success(c, order)
}

// PurchaseOrderRoutes returns the purchase order routes
func PurchaseOrderRoutes(h *PurchaseOrderHandler) *router.DomainGroup {
	return router.NewDomainGroup("purchase-orders", "/purchase-orders").
		POST("", h.Create).
		GET("", h.List).
		GET("/summary", h.Summary).
		GET("/number/:po_number", h.GetByNumber).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		POST("/:id/cancel", h.Cancel).
		DELETE("/:id", h.Delete)
}
