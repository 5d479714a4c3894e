package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wms/backend/internal/domain/shared"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	req := Request{
		Action:       ActionScanOut,
		Details:      "Scanned out WH-261015-00042-3",
		ResourceType: ResourceInventoryItem,
		ResourceID:   "item-1",
	}

	entry := NewEntry(req, shared.Actor{UserID: "u-1", Username: "dina"}, now)

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, "u-1", entry.UserID)
	assert.Equal(t, "dina", entry.Username)
	assert.Equal(t, ActionScanOut, entry.Action)
	assert.Equal(t, ResourceInventoryItem, entry.ResourceType)
	assert.Equal(t, now, entry.Timestamp)
}
