package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/wms/backend/internal/application/catalog"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// PartHandler handles part endpoints
type PartHandler struct {
	BaseHandler
	svc *catalogapp.PartService
}

// NewPartHandler creates a new PartHandler
func NewPartHandler(svc *catalogapp.PartService, audit AuditRecorder) *PartHandler {
	return &PartHandler{BaseHandler: BaseHandler{audit: audit}, svc: svc}
}

// Create handles POST /parts
func (h *PartHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req catalogapp.CreatePartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	part, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, catalogapp.AuditRequest(audit.ActionPartCreate, part))
	h.Created(c, part)
}

// GetByID handles GET /parts/:id
func (h *PartHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	part, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, part)
}

// List handles GET /parts
func (h *PartHandler) List(c *gin.Context) {
	var filter catalogapp.PartListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	parts, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	f := filter.ToFilter()
	h.SuccessWithMeta(c, parts, total, f.Page, f.PageSize)
}

// Update handles PUT /parts/:id
func (h *PartHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdatePartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	part, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.record(c, actor, catalogapp.AuditRequest(audit.ActionPartUpdate, part))
	h.Success(c, part)
}

// PartRoutes returns the part routes
func PartRoutes(h *PartHandler) *router.DomainGroup {
	return router.NewDomainGroup("parts", "/parts").
		POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update)
}
