package handler

import (
	"github.com/gin-gonic/gin"
	auditapp "github.com/wms/backend/internal/application/audit"
	reportapp "github.com/wms/backend/internal/application/report"
	"github.com/wms/backend/internal/interfaces/http/router"
)

// ReportHandler serves the dashboard reports and the audit log
type ReportHandler struct {
	BaseHandler
	reports *reportapp.ReportService
	audits  *auditapp.AuditService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.ReportService, audits *auditapp.AuditService) *ReportHandler {
	return &ReportHandler{reports: reports, audits: audits}
}

// Today handles GET /reports/today
func (h *ReportHandler) Today(c *gin.Context) {
	summary, err := h.reports.Today(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Activity handles GET /reports/activity?granularity=&from=&to=
func (h *ReportHandler) Activity(c *gin.Context) {
	var q reportapp.ActivityQuery
	if !h.bindQuery(c, &q) {
		return
	}
	report, err := h.reports.Activity(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// AuditLogs handles GET /audit-logs
func (h *ReportHandler) AuditLogs(c *gin.Context) {
	var filter auditapp.AuditLogFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.audits.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	f := filter.ToFilter()
	h.SuccessWithMeta(c, entries, total, f.Page, f.PageSize)
}

// ReportRoutes returns the report routes
func ReportRoutes(h *ReportHandler) *router.DomainGroup {
	return router.NewDomainGroup("reports", "/reports").
		GET("/today", h.Today).
		GET("/activity", h.Activity)
}

// AuditLogRoutes returns the audit log routes
func AuditLogRoutes(h *ReportHandler) *router.DomainGroup {
	return router.NewDomainGroup("audit-logs", "/audit-logs").
		GET("", h.AuditLogs)
}
