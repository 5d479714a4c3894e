//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appinv "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/testutil"
	"go.uber.org/zap/zaptest"
)

func TestPostgres_ConcurrentDeliveries(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedOrder(t, tdb.DB, "PO-9001", 1000)
	repo := NewGormPurchaseOrderRepository(tdb.DB)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyDelivery(ctx, s.order.ID, 3, trade.DeliveryPolicy{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	order, err := repo.FindByID(ctx, s.order.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*3, order.DeliveredQuantity)
	assert.Equal(t, trade.PurchaseOrderStatusPartial, order.Status)
	assert.Equal(t, workers+1, order.Version)
}

func TestPostgres_StrictDeliveriesStopAtTotal(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedOrder(t, tdb.DB, "PO-9002", 10)
	repo := NewGormPurchaseOrderRepository(tdb.DB)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.ApplyDelivery(ctx, s.order.ID, 1, trade.DeliveryPolicy{AllowOverDelivery: false})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			assert.True(t, shared.IsCode(err, shared.CodeOverDelivery), err)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, accepted)
	assert.Equal(t, 15, rejected)

	order, err := repo.FindByID(ctx, s.order.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, order.DeliveredQuantity)
	assert.Equal(t, trade.PurchaseOrderStatusCompleted, order.Status)
}

func TestPostgres_ScanTransactionAndConstraints(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	ctx := context.Background()
	s := seedOrder(t, tdb.DB, "PO-9003", 20)
	scope := NewGormTransactionScope(tdb.DB, DefaultRetryConfig(), zaptest.NewLogger(t))

	item, err := inventory.NewInventoryItem(inventory.NewItemParams{
		PartID: s.part.ID, POID: s.order.ID, CustomerID: s.customer.ID, Quantity: 5,
	}, inventory.Codes{UniqueID: "WH-261015-00001-8"}, testActor, testNow)
	require.NoError(t, err)

	t.Run("item and delivery commit together", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.ItemRepo().Create(ctx, item); err != nil {
				return err
			}
			_, err := repos.PurchaseOrderRepo().ApplyDelivery(ctx, s.order.ID, item.Quantity, trade.DeliveryPolicy{})
			return err
		})
		require.NoError(t, err)

		order, err := NewGormPurchaseOrderRepository(tdb.DB).FindByID(ctx, s.order.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, order.DeliveredQuantity)
	})

	t.Run("a failed delivery rolls the item back", func(t *testing.T) {
		other, err := inventory.NewInventoryItem(inventory.NewItemParams{
			PartID: s.part.ID, POID: s.order.ID, CustomerID: s.customer.ID, Quantity: 50,
		}, inventory.Codes{UniqueID: "WH-261015-00002-6"}, testActor, testNow)
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			if err := repos.ItemRepo().Create(ctx, other); err != nil {
				return err
			}
			_, err := repos.PurchaseOrderRepo().ApplyDelivery(ctx, s.order.ID, other.Quantity, trade.DeliveryPolicy{})
			return err
		})
		assert.True(t, shared.IsCode(err, shared.CodeOverDelivery))

		exists, err := NewGormInventoryItemRepository(tdb.DB).ExistsByUniqueID(ctx, "WH-261015-00002-6")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("referenced purchase orders cannot be deleted", func(t *testing.T) {
		err := NewGormPurchaseOrderRepository(tdb.DB).Delete(ctx, s.order.ID)
		assert.True(t, shared.IsCode(err, shared.CodePOInUse))
	})

	t.Run("approved delete cascades to history", func(t *testing.T) {
		repo := NewGormInventoryItemRepository(tdb.DB)
		tr, err := item.RequestDelete(testActor, "mislabelled", testNow.Add(time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.ApplyTransition(ctx, tr))
		require.NoError(t, repo.DeleteIfStatus(ctx, item.ID, inventory.ItemStatusPendingDelete))

		history, err := repo.FindHistory(ctx, item.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
		require.NoError(t, NewGormPurchaseOrderRepository(tdb.DB).Delete(ctx, s.order.ID))
	})

	t.Run("customer names are unique while live", func(t *testing.T) {
		dup := *s.customer
		dup.ID = uuid.New()
		dup.Name = "ACME LOGISTICS PO-9003"
		err := NewGormCustomerRepository(tdb.DB).Save(ctx, &dup)
		assert.True(t, shared.IsCode(err, shared.CodeDuplicateKey))
	})
}
