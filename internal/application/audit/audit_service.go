package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditService records and lists audit log entries. Use cases hand back
// audit.Request values; the caller records them here after the use case
// succeeded.
type AuditService struct {
	repo   audit.Repository
	clock  shared.Clock
	logger *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo audit.Repository) *AuditService {
	return &AuditService{
		repo:   repo,
		clock:  shared.SystemClock{},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *AuditService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetClock replaces the wall clock
func (s *AuditService) SetClock(clock shared.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// Record stamps the requests with the actor and appends them in one batch.
// Requests with an empty action are skipped.
func (s *AuditService) Record(ctx context.Context, actor shared.Actor, requests ...audit.Request) error {
	now := s.clock.Now()
	entries := make([]*audit.Entry, 0, len(requests))
	for _, req := range requests {
		if req.Action == "" {
			continue
		}
		entries = append(entries, audit.NewEntry(req, actor, now))
	}
	if len(entries) == 0 {
		return nil
	}
	if err := s.repo.Append(ctx, entries...); err != nil {
		s.logger.Error("failed to record audit entries",
			zap.Int("count", len(entries)),
			zap.String("user_id", actor.UserID),
			zap.Error(err))
		return err
	}
	return nil
}

// AuditLogFilter represents filter options for the audit log
type AuditLogFilter struct {
	Action       string `form:"action"`
	ResourceType string `form:"resource_type"`
	ResourceID   string `form:"resource_id"`
	UserID       string `form:"user_id"`
	Page         int    `form:"page" binding:"min=0"`
	PageSize     int    `form:"page_size" binding:"min=0,max=100"`
}

// ToFilter converts the list filter to a repository filter, newest first
func (f AuditLogFilter) ToFilter() shared.Filter {
	filter := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "timestamp",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
	if f.Action != "" {
		filter.Filters["action"] = f.Action
	}
	if f.ResourceType != "" {
		filter.Filters["resource_type"] = f.ResourceType
	}
	if f.ResourceID != "" {
		filter.Filters["resource_id"] = f.ResourceID
	}
	if f.UserID != "" {
		filter.Filters["user_id"] = f.UserID
	}
	return filter.Normalize()
}

// AuditLogResponse represents an audit entry in API responses
type AuditLogResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Action       string    `json:"action"`
	Details      string    `json:"details"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// List returns audit entries, newest first
func (s *AuditService) List(ctx context.Context, filter AuditLogFilter) ([]AuditLogResponse, int64, error) {
	domainFilter := filter.ToFilter()

	entries, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AuditLogResponse, len(entries))
	for i, e := range entries {
		responses[i] = AuditLogResponse{
			ID:           e.ID,
			UserID:       e.UserID,
			Username:     e.Username,
			Action:       string(e.Action),
			Details:      e.Details,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Timestamp:    e.Timestamp,
		}
	}
	return responses, total, nil
}
