package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/testutil"
)

func TestInventoryHandler_ScanInFillsPurchaseOrder(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-2026-001", 100)

	first := api.scanIn(t, partID, poID, 40)
	po := first["purchase_order"].(map[string]any)
	assert.Equal(t, float64(40), po["delivered_quantity"])
	assert.Equal(t, float64(60), po["remaining_quantity"])
	assert.Equal(t, "partial", po["status"])

	item := first["item"].(map[string]any)
	assert.Equal(t, "IN", item["status"])
	assert.Regexp(t, `^WH-261015-\d{5}-\d$`, item["unique_id"])
	assert.Equal(t, testutil.TestActor.UserID, item["created_by"])
	assert.Len(t, first["labels"], 1)

	second := api.scanIn(t, partID, poID, 60)
	po = second["purchase_order"].(map[string]any)
	assert.Equal(t, float64(100), po["delivered_quantity"])
	assert.Equal(t, float64(0), po["remaining_quantity"])
	assert.Equal(t, "completed", po["status"])
	assert.NotEqual(t, item["unique_id"], second["item"].(map[string]any)["unique_id"])

	order := api.mustData(t, http.MethodGet, "/api/v1/purchase-orders/"+poID, nil, http.StatusOK)
	assert.Equal(t, float64(100), order["delivered_quantity"])
	assert.Equal(t, "completed", order["status"])

	part := api.mustData(t, http.MethodGet, "/api/v1/parts/"+partID, nil, http.StatusOK)
	assert.Equal(t, "PO-2026-001", part["po_number"])
}

func TestInventoryHandler_ScanInOverDelivery(t *testing.T) {
	t.Run("permissive by default", func(t *testing.T) {
		api := newTestAPI(t)
		_, partID, poID := api.seedLedger(t, "PO-OVER-1", 10)

		data := api.scanIn(t, partID, poID, 15)
		po := data["purchase_order"].(map[string]any)
		assert.Equal(t, float64(15), po["delivered_quantity"])
		assert.Equal(t, "completed", po["status"])
	})

	t.Run("strict rejects without mutation", func(t *testing.T) {
		api := newTestAPI(t, strictDelivery())
		_, partID, poID := api.seedLedger(t, "PO-OVER-2", 10)
		api.scanIn(t, partID, poID, 8)

		w := api.do(t, http.MethodPost, "/api/v1/scan/in", map[string]any{
			"part_id": partID, "po_id": poID, "quantity": 3,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		testutil.AssertErrorCode(t, w, shared.CodeOverDelivery)

		order := api.mustData(t, http.MethodGet, "/api/v1/purchase-orders/"+poID, nil, http.StatusOK)
		assert.Equal(t, float64(8), order["delivered_quantity"])
	})
}

func TestInventoryHandler_ScanInRejections(t *testing.T) {
	api := newTestAPI(t)
	customerID, partID, poID := api.seedLedger(t, "PO-REJ-1", 50)
	_, otherPartID, _ := api.seedLedger(t, "PO-REJ-2", 50)
	cancelled := api.mustData(t, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"po_number": "PO-REJ-3", "customer_id": customerID, "part_id": partID, "total_quantity": 5,
	}, http.StatusCreated)["id"].(string)
	api.mustData(t, http.MethodPost, "/api/v1/purchase-orders/"+cancelled+"/cancel",
		map[string]any{"reason": "supplier withdrew"}, http.StatusOK)

	testutil.RunHTTPTestCases(t, api.engine, []testutil.HTTPTestCase{
		{
			Name:           "zero quantity",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": poID, "quantity": 0},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodeInvalidQuantity,
		},
		{
			Name:           "negative quantity",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": poID, "quantity": -4},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodeInvalidQuantity,
		},
		{
			Name:           "non-numeric quantity",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": poID, "quantity": "abc"},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodeInvalidQuantity,
		},
		{
			Name:           "fractional quantity",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": poID, "quantity": 1.5},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodeInvalidQuantity,
		},
		{
			Name:           "part mismatch is reported before a bad quantity",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": otherPartID, "po_id": poID, "quantity": "abc"},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodePOPartMismatch,
		},
		{
			Name:           "part of another purchase order",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": otherPartID, "po_id": poID, "quantity": 1},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodePOPartMismatch,
		},
		{
			Name:           "cancelled purchase order",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": cancelled, "quantity": 1},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusUnprocessableEntity,
			ExpectedCode:   shared.CodePOCancelled,
		},
		{
			Name:           "unknown part",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": testutil.NewTestUUID("ghost").String(), "po_id": poID, "quantity": 1},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   shared.CodePartNotFound,
		},
		{
			Name:           "too many label copies",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": poID, "quantity": 1, "copies": 500},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodeInvalidInput,
		},
		{
			Name:           "missing ids",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"quantity": 1},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   dto.ErrCodeValidation,
		},
		{
			Name:           "no actor",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/in",
			Body:           map[string]any{"part_id": partID, "po_id": poID, "quantity": 1},
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   shared.CodeUnauthorized,
		},
	})

	order := api.mustData(t, http.MethodGet, "/api/v1/purchase-orders/"+poID, nil, http.StatusOK)
	assert.Equal(t, float64(0), order["delivered_quantity"])
	assert.Equal(t, "open", order["status"])

	items := testutil.JSONBodyAs[dto.Response](t, api.do(t, http.MethodGet, "/api/v1/items", nil))
	require.NotNil(t, items.Meta)
	assert.Equal(t, int64(0), items.Meta.Total)
}

func TestInventoryHandler_ScanInInactiveCustomer(t *testing.T) {
	api := newTestAPI(t)
	customerID, partID, poID := api.seedLedger(t, "PO-INACT-1", 20)

	api.mustData(t, http.MethodPut, "/api/v1/customers/"+customerID+"/status",
		map[string]any{"status": "pending_delete"}, http.StatusOK)

	w := api.do(t, http.MethodPost, "/api/v1/scan/in", map[string]any{
		"part_id": partID, "po_id": poID, "quantity": 5,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	testutil.AssertErrorCode(t, w, shared.CodeInactiveCustomer)

	order := api.mustData(t, http.MethodGet, "/api/v1/purchase-orders/"+poID, nil, http.StatusOK)
	assert.Equal(t, float64(0), order["delivered_quantity"])

	var count int64
	require.NoError(t, api.db.Table("inventory_items").Count(&count).Error)
	assert.Zero(t, count)
}

func TestInventoryHandler_ScanOut(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-OUT-1", 10)
	item := api.scanIn(t, partID, poID, 10)["item"].(map[string]any)
	uniqueID := item["unique_id"].(string)

	preview := api.mustData(t, http.MethodGet, "/api/v1/scan/preview?code="+url.QueryEscape(uniqueID), nil, http.StatusOK)
	assert.Equal(t, true, preview["can_scan_out"])

	// the QR payload resolves to the same item
	out := api.mustData(t, http.MethodPost, "/api/v1/scan/out", map[string]any{
		"scan_code": item["qr_code_data"],
	}, http.StatusOK)
	assert.Equal(t, "OUT", out["item"].(map[string]any)["status"])

	w := api.do(t, http.MethodPost, "/api/v1/scan/out", map[string]any{"scan_code": uniqueID})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorCode(t, w, shared.CodeInvalidScanOutState)

	preview = api.mustData(t, http.MethodGet, "/api/v1/scan/preview?code="+url.QueryEscape(uniqueID), nil, http.StatusOK)
	assert.Equal(t, false, preview["can_scan_out"])
	assert.NotEmpty(t, preview["reason"])

	history := testutil.JSONBodyAs[dto.Response](t, api.do(t, http.MethodGet, "/api/v1/items/"+item["id"].(string)+"/history", nil))
	assert.ElementsMatch(t, []string{"SCAN_IN", "SCAN_OUT"}, fieldValues(history.Data, "action"))
}

func TestInventoryHandler_ScanOutUnknownCodes(t *testing.T) {
	api := newTestAPI(t)

	testutil.RunHTTPTestCases(t, api.engine, []testutil.HTTPTestCase{
		{
			Name:           "unknown unique id",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/out",
			Body:           map[string]any{"scan_code": inventory.FormatUniqueID("WH", testutil.TestNow, 99)},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   shared.CodeItemNotFound,
		},
		{
			Name:           "garbage code",
			Method:         http.MethodPost,
			Path:           "/api/v1/scan/out",
			Body:           map[string]any{"scan_code": "{not json"},
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   shared.CodeInvalidScanCode,
		},
		{
			Name:           "preview without code",
			Path:           "/api/v1/scan/preview",
			Headers:        actorHeaders,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   shared.CodeInvalidInput,
		},
	})
}

func TestInventoryHandler_DeleteRequestWorkflow(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-DEL-1", 30)
	item := api.scanIn(t, partID, poID, 30)["item"].(map[string]any)
	itemPath := "/api/v1/items/" + item["id"].(string)

	w := api.do(t, http.MethodPost, itemPath+"/delete-request", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	requested := api.mustData(t, http.MethodPost, itemPath+"/delete-request",
		map[string]any{"reason": "mislabelled"}, http.StatusOK)
	assert.Equal(t, "PENDING_DELETE", requested["item"].(map[string]any)["status"])

	pending := testutil.JSONBodyAs[dto.Response](t, api.do(t, http.MethodGet, "/api/v1/items/delete-requests", nil))
	require.NotNil(t, pending.Meta)
	assert.Equal(t, int64(1), pending.Meta.Total)

	w = api.do(t, http.MethodPost, "/api/v1/scan/out", map[string]any{"scan_code": item["unique_id"]})
	testutil.AssertErrorCode(t, w, shared.CodeInvalidScanOutState)

	rejected := api.mustData(t, http.MethodPost, itemPath+"/delete-request/reject", nil, http.StatusOK)
	assert.Equal(t, "IN", rejected["item"].(map[string]any)["status"])
	assert.Nil(t, rejected["item"].(map[string]any)["delete_request"])

	w = api.do(t, http.MethodPost, itemPath+"/delete-request/approve", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorCode(t, w, shared.CodeInvalidTransition)

	api.mustData(t, http.MethodPost, itemPath+"/delete-request",
		map[string]any{"reason": "duplicate label"}, http.StatusOK)
	approved := api.mustData(t, http.MethodPost, itemPath+"/delete-request/approve", nil, http.StatusOK)
	assert.Equal(t, item["unique_id"], approved["unique_id"])

	w = api.do(t, http.MethodGet, itemPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	testutil.AssertErrorCode(t, w, shared.CodeItemNotFound)

	// delivered quantity is not reverted
	order := api.mustData(t, http.MethodGet, "/api/v1/purchase-orders/"+poID, nil, http.StatusOK)
	assert.Equal(t, float64(30), order["delivered_quantity"])

	logs := testutil.JSONBodyAs[dto.Response](t, api.do(t, http.MethodGet,
		"/api/v1/audit-logs?resource_id="+item["id"].(string), nil))
	require.NotNil(t, logs.Meta)
	assert.Equal(t, int64(5), logs.Meta.Total)
	assert.ElementsMatch(t,
		[]string{"SCAN_IN", "DELETE_REQUEST", "DELETE_REJECT", "DELETE_REQUEST", "DELETE_APPROVE"},
		fieldValues(logs.Data, "action"))
	assert.Equal(t, testutil.TestActor.Username, logs.Data.([]any)[0].(map[string]any)["username"])
}

func TestInventoryHandler_MarkDamaged(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-DMG-1", 20)
	first := api.scanIn(t, partID, poID, 10)["item"].(map[string]any)
	second := api.scanIn(t, partID, poID, 10)["item"].(map[string]any)
	api.mustData(t, http.MethodPost, "/api/v1/scan/out", map[string]any{"scan_code": second["unique_id"]}, http.StatusOK)

	data := api.mustData(t, http.MethodPost, "/api/v1/items/damaged", map[string]any{
		"item_ids": []string{first["id"].(string), second["id"].(string), testutil.NewTestUUID("missing").String()},
		"notes":    "forklift",
	}, http.StatusOK)

	assert.Equal(t, float64(1), data["succeeded"])
	assert.Equal(t, float64(2), data["failed"])
	outcomes := data["outcomes"].([]any)
	require.Len(t, outcomes, 3)
	assert.Equal(t, true, outcomes[0].(map[string]any)["success"])
	assert.Equal(t, shared.CodeInvalidTransition, outcomes[1].(map[string]any)["error_code"])
	assert.Equal(t, shared.CodeItemNotFound, outcomes[2].(map[string]any)["error_code"])

	item := api.mustData(t, http.MethodGet, "/api/v1/items/"+first["id"].(string), nil, http.StatusOK)
	assert.Equal(t, "DAMAGED", item["status"])

	w := api.do(t, http.MethodPost, "/api/v1/items/damaged", map[string]any{"item_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryHandler_ListAndLookup(t *testing.T) {
	api := newTestAPI(t)
	_, partID, poID := api.seedLedger(t, "PO-LIST-1", 50)
	first := api.scanIn(t, partID, poID, 20)["item"].(map[string]any)
	api.scanIn(t, partID, poID, 30)
	api.mustData(t, http.MethodPost, "/api/v1/scan/out", map[string]any{"scan_code": first["unique_id"]}, http.StatusOK)

	var w *httptest.ResponseRecorder
	w = api.do(t, http.MethodGet, "/api/v1/items?status=IN", nil)
	resp := testutil.JSONBodyAs[dto.Response](t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)

	w = api.do(t, http.MethodGet, "/api/v1/items?po_id="+poID+"&page_size=1", nil)
	resp = testutil.JSONBodyAs[dto.Response](t, w)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Len(t, resp.Data, 1)

	w = api.do(t, http.MethodGet, "/api/v1/items?order_dir=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	found := api.mustData(t, http.MethodGet, "/api/v1/items/lookup?code="+url.QueryEscape(first["barcode"].(string)), nil, http.StatusOK)
	assert.Equal(t, first["id"], found["id"])
	assert.Equal(t, "OUT", found["status"])
	assert.NotNil(t, found["part"])
	assert.NotNil(t, found["purchase_order"])

	w = api.do(t, http.MethodGet, "/api/v1/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
