package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// InventoryHandler serves the scan stations and the item lifecycle
type InventoryHandler struct {
	BaseHandler
	svc *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(svc *inventoryapp.InventoryService, audit AuditRecorder) *InventoryHandler {
	return &InventoryHandler{BaseHandler: BaseHandler{audit: audit}, svc: svc}
}

// ScanIn handles POST /scan/in
func (h *InventoryHandler) ScanIn(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.ScanInRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.ScanIn(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, result.Audit)
	h.Created(c, result)
}

// ScanOut handles POST /scan/out
func (h *InventoryHandler) ScanOut(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.ScanOutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.ScanOut(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, result.Audit)
	h.Success(c, result)
}

// PreviewScanOut handles GET /scan/preview?code=
func (h *InventoryHandler) PreviewScanOut(c *gin.Context) {
	code, ok := h.scanCode(c)
	if !ok {
		return
	}
	preview, err := h.svc.PreviewScanOut(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// ListItems handles GET /items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var filter inventoryapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.svc.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	f := filter.ToFilter()
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// ListPendingDeletes handles GET /items/delete-requests
func (h *InventoryHandler) ListPendingDeletes(c *gin.Context) {
	var filter inventoryapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.svc.ListPendingDeletes(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	f := filter.ToFilter()
	h.SuccessWithMeta(c, items, total, f.Page, f.PageSize)
}

// GetItem handles GET /items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// GetHistory handles GET /items/:id/history
func (h *InventoryHandler) GetHistory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	history, err := h.svc.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// LookupItem handles GET /items/lookup?code=
func (h *InventoryHandler) LookupItem(c *gin.Context) {
	code, ok := h.scanCode(c)
	if !ok {
		return
	}
	item, err := h.svc.LookupByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// RequestDelete handles POST /items/:id/delete-request
func (h *InventoryHandler) RequestDelete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.DeleteRequestInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RequestDelete(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, result.Audit)
	h.Success(c, result)
}

// ApproveDelete handles POST /items/:id/delete-request/approve
func (h *InventoryHandler) ApproveDelete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ApproveDelete(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, result.Audit)
	h.Success(c, result)
}

// RejectDelete handles POST /items/:id/delete-request/reject. The body is
// optional.
func (h *InventoryHandler) RejectDelete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.RejectDeleteInput
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.RejectDelete(c.Request.Context(), id, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, result.Audit)
	h.Success(c, result)
}

// MarkDamaged handles POST /items/damaged. Per-item failures are reported in
// the outcomes of a 200 response.
func (h *InventoryHandler) MarkDamaged(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req inventoryapp.MarkDamagedRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.svc.MarkDamaged(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, result.Audit...)
	h.Success(c, result)
}

func (h *InventoryHandler) scanCode(c *gin.Context) (string, bool) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		h.BadRequest(c, "Query parameter code is required")
		return "", false
	}
	return code, true
}

// ScanRoutes returns the scan station routes
func ScanRoutes(h *InventoryHandler) *router.DomainGroup {
	return router.NewDomainGroup("scan", "/scan").
		POST("/in", h.ScanIn).
		POST("/out", h.ScanOut).
		GET("/preview", h.PreviewScanOut)
}

// ItemRoutes returns the inventory item routes
func ItemRoutes(h *InventoryHandler) *router.DomainGroup {
	return router.NewDomainGroup("items", "/items").
		GET("", h.ListItems).
		GET("/lookup", h.LookupItem).
		GET("/delete-requests", h.ListPendingDeletes).
		POST("/damaged", h.MarkDamaged).
		GET("/:id", h.GetItem).
		GET("/:id/history", h.GetHistory).
		POST("/:id/delete-request", h.RequestDelete).
		POST("/:id/delete-request/approve", h.ApproveDelete).
		POST("/:id/delete-request/reject", h.RejectDelete)
}
