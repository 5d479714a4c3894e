package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/testutil"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (*AuditService, *testutil.MockAuditRepository) {
	repo := new(testutil.MockAuditRepository)
	svc := NewAuditService(repo)
	svc.SetClock(testutil.FixedClock{At: testutil.TestNow})
	svc.SetLogger(zaptest.NewLogger(t))
	return svc, repo
}

func TestAuditService_Record(t *testing.T) {
	t.Run("stamps actor and time", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.On("Append", mock.Anything, mock.MatchedBy(func(entries []*audit.Entry) bool {
			if len(entries) != 2 {
				return false
			}
			for _, e := range entries {
				if e.UserID != "u-7" || e.Username != "alice" || !e.Timestamp.Equal(testutil.TestNow) {
					return false
				}
			}
			return entries[0].Action == audit.ActionMarkDamaged
		})).Return(nil)

		err := svc.Record(context.Background(), testutil.TestActor,
			audit.Request{Action: audit.ActionMarkDamaged, ResourceType: audit.ResourceInventoryItem, ResourceID: "a"},
			audit.Request{},
			audit.Request{Action: audit.ActionMarkDamaged, ResourceType: audit.ResourceInventoryItem, ResourceID: "b"},
		)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("nothing to record", func(t *testing.T) {
		svc, repo := newTestService(t)

		require.NoError(t, svc.Record(context.Background(), testutil.TestActor))
		repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		svc, repo := newTestService(t)
		storageErr := &shared.StorageError{Op: "append audit", Err: errors.New("disk full")}
		repo.On("Append", mock.Anything, mock.Anything).Return(storageErr)

		err := svc.Record(context.Background(), testutil.TestActor, audit.Request{Action: audit.ActionScanIn})

		assert.ErrorIs(t, err, storageErr)
	})
}

func TestAuditService_List(t *testing.T) {
	svc, repo := newTestService(t)
	entry := audit.NewEntry(audit.Request{
		Action: audit.ActionScanOut, Details: "Scanned out", ResourceType: audit.ResourceInventoryItem, ResourceID: "x",
	}, testutil.TestActor, testutil.TestNow)
	byResource := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["resource_type"] == audit.ResourceInventoryItem && f.OrderBy == "timestamp"
	})
	repo.On("FindAll", mock.Anything, byResource).Return([]audit.Entry{*entry}, nil)
	repo.On("Count", mock.Anything, byResource).Return(int64(1), nil)

	logs, total, err := svc.List(context.Background(), AuditLogFilter{ResourceType: audit.ResourceInventoryItem})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "SCAN_OUT", logs[0].Action)
	assert.Equal(t, "alice", logs[0].Username)
}
