package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appinv "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/partner"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/testutil"
)

var testNow = testutil.TestNow

type poHarness struct {
	orderRepo    *testutil.MockPurchaseOrderRepository
	partRepo     *testutil.MockPartRepository
	customerRepo *testutil.MockCustomerRepository
	itemRepo     *testutil.MockInventoryItemRepository
	service      *PurchaseOrderService
	customer     *partner.Customer
	part         *catalog.Part
}

func newPOHarness(t *testing.T) *poHarness {
	t.Helper()
	h := &poHarness{
		orderRepo:    new(testutil.MockPurchaseOrderRepository),
		partRepo:     new(testutil.MockPartRepository),
		customerRepo: new(testutil.MockCustomerRepository),
		itemRepo:     new(testutil.MockInventoryItemRepository),
	}
	scope := appinv.NewNoOpTransactionScope(h.itemRepo, h.orderRepo, h.partRepo)
	h.service = NewPurchaseOrderService(h.orderRepo, h.partRepo, h.customerRepo, scope)
	h.service.SetClock(testutil.FixedClock{At: testNow})

	var err error
	h.customer, err = partner.NewCustomer("Acme", "", "", testNow)
	require.NoError(t, err)
	h.part, err = catalog.NewPart(h.customer.ID, "BR-100", "Bracket", testNow)
	require.NoError(t, err)
	return h
}

func (h *poHarness) expectLinkage() {
	h.customerRepo.On("FindByID", mock.Anything, h.customer.ID).Return(h.customer, nil)
	h.partRepo.On("FindByID", mock.Anything, h.part.ID).Return(h.part, nil)
}

func poNumberIs(n string) interface{} {
	return mock.MatchedBy(func(p *string) bool { return p != nil && *p == n })
}

func TestPurchaseOrderService_Create(t *testing.T) {
	t.Run("creates open order and caches its number on the part", func(t *testing.T) {
		h := newPOHarness(t)
		h.expectLinkage()
		h.orderRepo.On("ExistsByNumber", mock.Anything, "PO-9", (*uuid.UUID)(nil)).Return(false, nil)
		h.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil)
		h.partRepo.On("SetPONumber", mock.Anything, h.part.ID, poNumberIs("PO-9")).Return(nil)

		resp, err := h.service.Create(context.Background(), CreatePurchaseOrderRequest{
			PONumber: " PO-9 ", CustomerID: h.customer.ID, PartID: h.part.ID, TotalQuantity: 100,
		})

		require.NoError(t, err)
		assert.Equal(t, "PO-9", resp.PONumber)
		assert.Equal(t, "open", resp.Status)
		assert.Equal(t, 0, resp.DeliveredQuantity)
		assert.Equal(t, 100, resp.RemainingQuantity)
		assert.Equal(t, "0", resp.FulfillmentPercent.String())
		h.partRepo.AssertExpectations(t)
	})

	t.Run("inactive customer", func(t *testing.T) {
		h := newPOHarness(t)
		require.NoError(t, h.customer.ChangeStatus(partner.CustomerStatusPendingDelete, testNow))
		h.customerRepo.On("FindByID", mock.Anything, h.customer.ID).Return(h.customer, nil)

		_, err := h.service.Create(context.Background(), CreatePurchaseOrderRequest{
			PONumber: "PO-9", CustomerID: h.customer.ID, PartID: h.part.ID, TotalQuantity: 10,
		})

		assert.True(t, errors.Is(err, shared.ErrInactiveCustomer))
		h.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("part of another customer", func(t *testing.T) {
		h := newPOHarness(t)
		h.part.CustomerID = uuid.New()
		h.expectLinkage()

		_, err := h.service.Create(context.Background(), CreatePurchaseOrderRequest{
			PONumber: "PO-9", CustomerID: h.customer.ID, PartID: h.part.ID, TotalQuantity: 10,
		})

		assert.True(t, errors.Is(err, shared.ErrPOPartMismatch))
	})

	t.Run("duplicate number", func(t *testing.T) {
		h := newPOHarness(t)
		h.expectLinkage()
		h.orderRepo.On("ExistsByNumber", mock.Anything, "PO-9", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := h.service.Create(context.Background(), CreatePurchaseOrderRequest{
			PONumber: "PO-9", CustomerID: h.customer.ID, PartID: h.part.ID, TotalQuantity: 10,
		})

		assert.True(t, errors.Is(err, shared.ErrDuplicateKey))
	})

	t.Run("non-positive total", func(t *testing.T) {
		h := newPOHarness(t)
		h.expectLinkage()

		_, err := h.service.Create(context.Background(), CreatePurchaseOrderRequest{
			PONumber: "PO-9", CustomerID: h.customer.ID, PartID: h.part.ID, TotalQuantity: 0,
		})

		assert.True(t, errors.Is(err, shared.ErrInvalidQuantity))
	})
}

func TestPurchaseOrderService_Update(t *testing.T) {
	t.Run("lowering the total recomputes status", func(t *testing.T) {
		h := newPOHarness(t)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, h.part.ID, 100, testNow)
		order.DeliveredQuantity = 40
		order.Status = trade.PurchaseOrderStatusPartial
		total := 40
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		h.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

		resp, err := h.service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{TotalQuantity: &total})

		require.NoError(t, err)
		assert.Equal(t, "completed", resp.Status)
		assert.Equal(t, "100", resp.FulfillmentPercent.String())
		h.partRepo.AssertNotCalled(t, "SetPONumber", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moving to another part refreshes both caches", func(t *testing.T) {
		h := newPOHarness(t)
		oldPart, _ := catalog.NewPart(h.customer.ID, "BR-050", "Old bracket", testNow)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, oldPart.ID, 100, testNow)
		older, _ := trade.NewPurchaseOrder("PO-3", h.customer.ID, oldPart.ID, 10, testNow)
		h.expectLinkage()
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		h.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)
		h.orderRepo.On("FindLatestForPart", mock.Anything, oldPart.ID).Return(older, nil)
		h.partRepo.On("SetPONumber", mock.Anything, h.part.ID, poNumberIs("PO-9")).Return(nil)
		h.partRepo.On("SetPONumber", mock.Anything, oldPart.ID, poNumberIs("PO-3")).Return(nil)

		resp, err := h.service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{PartID: &h.part.ID})

		require.NoError(t, err)
		assert.Equal(t, h.part.ID, resp.PartID)
		h.partRepo.AssertExpectations(t)
	})

	t.Run("cannot relink after deliveries", func(t *testing.T) {
		h := newPOHarness(t)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, uuid.New(), 100, testNow)
		order.DeliveredQuantity = 5
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := h.service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{PartID: &h.part.ID})

		assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
		h.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("renaming checks uniqueness", func(t *testing.T) {
		h := newPOHarness(t)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, h.part.ID, 100, testNow)
		number := "PO-10"
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		h.orderRepo.On("ExistsByNumber", mock.Anything, number, &order.ID).Return(true, nil)

		_, err := h.service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{PONumber: &number})

		assert.True(t, errors.Is(err, shared.ErrDuplicateKey))
	})

	t.Run("cancelled orders are read-only", func(t *testing.T) {
		h := newPOHarness(t)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, h.part.ID, 100, testNow)
		require.NoError(t, order.Cancel("customer withdrew", testNow))
		total := 50
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := h.service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{TotalQuantity: &total})

		assert.True(t, errors.Is(err, shared.ErrPOCancelled))
	})
}

func TestPurchaseOrderService_Cancel(t *testing.T) {
	h := newPOHarness(t)
	order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, h.part.ID, 100, testNow)
	h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	h.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil).Once()
	h.orderRepo.On("FindLatestForPart", mock.Anything, h.part.ID).Return(nil, nil).Once()
	h.partRepo.On("SetPONumber", mock.Anything, h.part.ID, (*string)(nil)).Return(nil).Once()

	resp, err := h.service.Cancel(context.Background(), order.ID, CancelPurchaseOrderRequest{Reason: "withdrawn"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.Equal(t, "withdrawn", resp.CancelReason)
	require.NotNil(t, resp.CancelledAt)

	h.partRepo.AssertExpectations(t)

	_, err = h.service.Cancel(context.Background(), order.ID, CancelPurchaseOrderRequest{})
	assert.True(t, errors.Is(err, shared.ErrPOCancelled))
}

func TestPurchaseOrderService_Delete(t *testing.T) {
	t.Run("removes unreferenced order and clears cache", func(t *testing.T) {
		h := newPOHarness(t)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, h.part.ID, 100, testNow)
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		h.itemRepo.On("CountByPO", mock.Anything, order.ID).Return(int64(0), nil)
		h.orderRepo.On("Delete", mock.Anything, order.ID).Return(nil)
		h.orderRepo.On("FindLatestForPart", mock.Anything, h.part.ID).Return(nil, shared.ErrPONotFound)
		h.partRepo.On("SetPONumber", mock.Anything, h.part.ID, (*string)(nil)).Return(nil)

		resp, err := h.service.Delete(context.Background(), order.ID)

		require.NoError(t, err)
		assert.Equal(t, "PO-9", resp.PONumber)
		h.partRepo.AssertExpectations(t)
	})

	t.Run("referenced order is in use", func(t *testing.T) {
		h := newPOHarness(t)
		order, _ := trade.NewPurchaseOrder("PO-9", h.customer.ID, h.part.ID, 100, testNow)
		h.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		h.itemRepo.On("CountByPO", mock.Anything, order.ID).Return(int64(3), nil)

		_, err := h.service.Delete(context.Background(), order.ID)

		assert.True(t, errors.Is(err, shared.ErrPOInUse))
		assert.Contains(t, err.Error(), "3 inventory items")
		h.orderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPurchaseOrderService_GetStatusSummary(t *testing.T) {
	h := newPOHarness(t)
	h.orderRepo.On("CountByStatus", mock.Anything).Return(map[trade.PurchaseOrderStatus]int64{
		trade.PurchaseOrderStatusOpen:      2,
		trade.PurchaseOrderStatusPartial:   3,
		trade.PurchaseOrderStatusCompleted: 4,
	}, nil)

	summary, err := h.service.GetStatusSummary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(9), summary.Total)
	assert.Equal(t, int64(0), summary.Cancelled)
}
