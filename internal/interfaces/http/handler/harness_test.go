package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	auditapp "github.com/wms/backend/internal/application/audit"
	catalogapp "github.com/wms/backend/internal/application/catalog"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	partnerapp "github.com/wms/backend/internal/application/partner"
	reportapp "github.com/wms/backend/internal/application/report"
	tradeapp "github.com/wms/backend/internal/application/trade"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/idgen"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
	"github.com/wms/backend/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testAPI is the full HTTP stack over an in-memory SQLite database
type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
}

type apiOption func(*inventoryapp.Options)

func strictDelivery() apiOption {
	return func(o *inventoryapp.Options) { o.AllowOverDelivery = false }
}

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	clock := testutil.FixedClock{At: testutil.TestNow}
	log := zap.NewNop()

	customerRepo := persistence.NewGormCustomerRepository(db)
	partRepo := persistence.NewGormPartRepository(db)
	poRepo := persistence.NewGormPurchaseOrderRepository(db)
	itemRepo := persistence.NewGormInventoryItemRepository(db)
	auditRepo := persistence.NewGormAuditRepository(db)
	txScope := persistence.NewGormTransactionScope(db, persistence.DefaultRetryConfig(), log)

	generator := idgen.NewGenerator(cache.NewInMemorySequenceStore(), itemRepo, idgen.Config{
		Prefix:      "WH",
		MaxAttempts: 5,
		Location:    time.UTC,
	}, log)

	options := inventoryapp.DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	inventorySvc := inventoryapp.NewInventoryService(customerRepo, partRepo, poRepo, itemRepo, txScope, generator, options)
	inventorySvc.SetClock(clock)
	customerSvc := partnerapp.NewCustomerService(customerRepo)
	customerSvc.SetClock(clock)
	partSvc := catalogapp.NewPartService(partRepo, customerRepo)
	partSvc.SetClock(clock)
	poSvc := tradeapp.NewPurchaseOrderService(poRepo, partRepo, customerRepo, txScope)
	poSvc.SetClock(clock)
	reportSvc := reportapp.NewReportService(itemRepo, poRepo, time.UTC)
	reportSvc.SetClock(clock)
	auditSvc := auditapp.NewAuditService(auditRepo)
	auditSvc.SetClock(clock)

	handlers := Handlers{
		System:        NewSystemHandler(nil, "WMS Backend", "test"),
		Customer:      NewCustomerHandler(customerSvc, auditSvc),
		Part:          NewPartHandler(partSvc, auditSvc),
		PurchaseOrder: NewPurchaseOrderHandler(poSvc, auditSvc),
		Inventory:     NewInventoryHandler(inventorySvc, auditSvc),
		Report:        NewReportHandler(reportSvc, auditSvc),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine, router.WithMiddleware(middleware.Actor(middleware.ActorConfig{
		DevHeaders: true,
		SkipPaths:  []string{"/api/v1/health", "/api/v1/system/info"},
	}))).Register(handlers.Routes()...).Setup()

	return &testAPI{engine: engine, db: db}
}

var actorHeaders = map[string]string{
	middleware.DevUserIDHeader:   testutil.TestActor.UserID,
	middleware.DevUsernameHeader: testutil.TestActor.Username,
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, a.engine, method, path, body, actorHeaders)
}

// mustData performs a request expecting status and returns the data payload
func (a *testAPI) mustData(t *testing.T, method, path string, body any, status int) map[string]any {
	t.Helper()
	w := a.do(t, method, path, body)
	require.Equal(t, status, w.Code, w.Body.String())
	data, _ := testutil.AssertSuccess(t, w)["data"].(map[string]any)
	return data
}

// seedLedger creates a customer, a part and a PO of total units through the API
func (a *testAPI) seedLedger(t *testing.T, poNumber string, total int) (customerID, partID, poID string) {
	t.Helper()

	customer := a.mustData(t, http.MethodPost, "/api/v1/customers", map[string]any{
		"name":         "Acme Industrial " + poNumber,
		"address":      "12 Harbour Rd",
		"contact_info": "ops@acme.test",
	}, http.StatusCreated)
	customerID = customer["id"].(string)

	part := a.mustData(t, http.MethodPost, "/api/v1/parts", map[string]any{
		"customer_id":      customerID,
		"internal_part_no": "BRK-" + poNumber,
		"name":             "Brake caliper",
	}, http.StatusCreated)
	partID = part["id"].(string)

	po := a.mustData(t, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"po_number":      poNumber,
		"customer_id":    customerID,
		"part_id":        partID,
		"total_quantity": total,
	}, http.StatusCreated)
	poID = po["id"].(string)
	return customerID, partID, poID
}

func (a *testAPI) scanIn(t *testing.T, partID, poID string, quantity int) map[string]any {
	t.Helper()
	return a.mustData(t, http.MethodPost, "/api/v1/scan/in", map[string]any{
		"part_id":  partID,
		"po_id":    poID,
		"quantity": quantity,
		"lot_id":   "LOT-1",
		"gate_id":  "G2",
	}, http.StatusCreated)
}

// fieldValues collects one string field from a list payload
func fieldValues(data any, field string) []string {
	list, _ := data.([]any)
	values := make([]string, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			values = append(values, fmt.Sprint(m[field]))
		}
	}
	return values
}
