package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeCustomerNotFound, http.StatusNotFound},
		{shared.CodePartNotFound, http.StatusNotFound},
		{shared.CodePONotFound, http.StatusNotFound},
		{shared.CodeItemNotFound, http.StatusNotFound},
		{shared.CodeInvalidScanCode, http.StatusNotFound},
		{shared.CodeInactiveCustomer, http.StatusForbidden},
		{shared.CodeInvalidQuantity, http.StatusBadRequest},
		{shared.CodeInvalidInput, http.StatusBadRequest},
		{shared.CodePOPartMismatch, http.StatusBadRequest},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{shared.CodeDuplicateKey, http.StatusConflict},
		{shared.CodePOInUse, http.StatusConflict},
		{shared.CodeConcurrencyConflict, http.StatusConflict},
		{shared.CodePOCancelled, http.StatusUnprocessableEntity},
		{shared.CodeOverDelivery, http.StatusUnprocessableEntity},
		{shared.CodeInvalidTransition, http.StatusUnprocessableEntity},
		{shared.CodeInvalidScanOutState, http.StatusUnprocessableEntity},
		{shared.CodeGenerationExhausted, http.StatusServiceUnavailable},
		{shared.CodeStorage, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)

	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta([]string{}, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "po_id", Message: "This field is required"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewErrorResponse(shared.CodeOverDelivery, "Purchase order PO-1 would exceed its total"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")
	assert.NotContains(t, decoded, "meta")
	errObj := decoded["error"].(map[string]interface{})
	assert.Equal(t, "OVER_DELIVERY", errObj["code"])
	assert.NotContains(t, errObj, "request_id")
}
